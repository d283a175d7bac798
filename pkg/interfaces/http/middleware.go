package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	requestInfoKey
)

// requestInfo is shared by the middleware chain of one request
type requestInfo struct {
	id   string
	user string
}

const requestIDHeader = "X-Request-ID"

// sessionFrom returns the session loaded for the request, if any
func sessionFrom(ctx context.Context) *entities.Session {
	session, _ := ctx.Value(sessionKey).(*entities.Session)
	return session
}

func requestInfoFrom(ctx context.Context) *requestInfo {
	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok {
		return info
	}
	return &requestInfo{}
}

// requestID propagates the caller's request ID or assigns a new one
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		info := &requestInfo{id: id}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestInfoKey, info)))
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("panic serving request",
					zap.String("path", r.URL.Path),
					zap.String("request_id", requestInfoFrom(r.Context()).id),
					zap.Any("panic", rec),
					zap.Stack("stack"))
				writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		info := requestInfoFrom(r.Context())
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", info.id),
		}
		if info.user != "" {
			fields = append(fields, zap.String("user", info.user))
		}
		s.logger.Info("request", fields...)
	})
}

// loadSession resolves the session cookie. Requests without a valid
// session continue anonymously.
func (s *Server) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.opts.CookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		session, err := s.svc.Auth.Authenticate(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, repositories.ErrNotFound) {
				s.logger.Warn("session lookup failed", zap.Error(err))
			}
			s.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}
		requestInfoFrom(r.Context()).user = session.Username
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, session)))
	})
}

// require gates a handler on the session role. API calls get JSON errors;
// page loads are redirected.
func (s *Server) require(roles []entities.Role, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api := strings.HasPrefix(r.URL.Path, "/api/")
		session := sessionFrom(r.Context())
		if session == nil {
			if api {
				writeError(w, http.StatusUnauthorized, "Authentication required. Please log in.")
				return
			}
			s.rememberNext(w, r.URL.RequestURI())
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		if !session.Role.In(roles...) {
			if api {
				writeError(w, http.StatusForbidden, fmt.Sprintf("Forbidden: Your role ('%s') does not have permission.", session.Role))
				return
			}
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		h(w, r)
	})
}
