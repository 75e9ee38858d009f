package server

import (
	"io/fs"
	"net/http"
	"strings"
)

// spaFileServer serves static files from assets, falling back to index.html
// for any GET path that doesn't match a real file so client-side routing
// handles /login, /products, etc. Other methods get the 404 hint.
func spaFileServer(assets fs.FS) http.Handler {
	fileServer := http.FileServerFS(assets)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			routeHint(w, r)
			return
		}

		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == "" {
			path = "index.html"
		}

		if _, err := fs.Stat(assets, path); err != nil {
			r.URL.Path = "/"
		}

		fileServer.ServeHTTP(w, r)
	})
}
