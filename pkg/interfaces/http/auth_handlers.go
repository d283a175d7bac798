package httpserver

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/cmrp/pkg/application/dto"
)

// nextCookie remembers the page an anonymous visitor asked for
const nextCookie = "cmrp_next"

type credentials struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeBody(r, &req); err != nil || req.Username == nil || req.Password == nil {
		writeError(w, http.StatusBadRequest, "Missing username or password")
		return
	}

	session, err := s.svc.Auth.Login(r.Context(), *req.Username, *req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   s.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	redirect := "/"
	if c, err := r.Cookie(nextCookie); err == nil && safeNext(c.Value) {
		redirect = c.Value
	}
	s.forgetNext(w)

	writeJSON(w, http.StatusOK, map[string]string{
		"message":      fmt.Sprintf("Login successful! Welcome %s.", session.Username),
		"redirect_url": redirect,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	if err := s.svc.Auth.Logout(r.Context(), session.Token); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.clearSessionCookie(w)
	s.logger.Info("user logged out", zap.String("username", session.Username))
	writeMessage(w, http.StatusOK, "Logout successful.")
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, dto.UserProfile{
		UserID:   session.UserID,
		Username: session.Username,
		Role:     session.Role,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeBody(r, &req); err != nil || req.Username == nil || req.Password == nil || req.Role == nil {
		writeError(w, http.StatusBadRequest, "Missing username, password, or role")
		return
	}
	if _, err := s.svc.Auth.Register(r.Context(), *req.Username, *req.Password, *req.Role); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Account created successfully. You can now log in.")
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) rememberNext(w http.ResponseWriter, uri string) {
	if !safeNext(uri) {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     nextCookie,
		Value:    uri,
		Path:     "/",
		Expires:  time.Now().Add(time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) forgetNext(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: nextCookie, Value: "", Path: "/", MaxAge: -1})
}

// safeNext accepts local paths only
func safeNext(uri string) bool {
	return strings.HasPrefix(uri, "/") && !strings.HasPrefix(uri, "//") && !strings.HasPrefix(uri, "/\\")
}
