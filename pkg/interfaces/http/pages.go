package httpserver

import (
	"embed"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

//go:embed static/placeholder.html
var assets embed.FS

var placeholder = template.Must(template.ParseFS(assets, "static/placeholder.html"))

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sessionFrom(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.servePage("login.html")(w, r)
}

// servePage serves a file from the static directory, falling back to an
// embedded placeholder when the file is missing
func (s *Server) servePage(file string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(s.opts.StaticDir, file)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}

		title := strings.ReplaceAll(strings.TrimSuffix(file, ".html"), "_", " ")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err := placeholder.Execute(w, struct{ Title, File string }{Title: title, File: file})
		if err != nil {
			s.logger.Warn("failed to render placeholder", zap.String("file", file), zap.Error(err))
		}
	}
}
