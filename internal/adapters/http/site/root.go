// Package site serves the dashboard's embedded static assets.
package site

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Register mounts the embedded assets under /static/.
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Handle("/static/*", http.StripPrefix("/static/", Handler()))
}

// Handler serves files from the embedded static directory. Directory
// listings are not served.
func Handler() http.Handler {
	files := http.FileServer(FS())
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}
