package strato

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// staticRenderer is the default Renderer: it serves files from a directory
// at a URL prefix. Directory listings are disabled; a request for a
// directory serves its index.html if present.
type staticRenderer struct {
	dir    string
	prefix string
}

// newStaticRenderer creates a renderer over dir, served at prefix.
func newStaticRenderer(dir, prefix string) *staticRenderer {
	if prefix == "" {
		prefix = "/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &staticRenderer{dir: dir, prefix: prefix}
}

// Ready always succeeds: a missing static directory is not an error, the
// app may rely entirely on mounted routes.
func (s *staticRenderer) Ready(ctx context.Context) error {
	return nil
}

func (s *staticRenderer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	rel := strings.TrimPrefix(r.URL.Path, strings.TrimSuffix(s.prefix, "/"))
	rel = strings.TrimPrefix(rel, "/")

	// Normalize and refuse anything escaping the static root.
	clean := filepath.Clean("/" + filepath.FromSlash(rel))
	full := filepath.Join(s.dir, clean)
	if !strings.HasPrefix(full, filepath.Clean(s.dir)) {
		http.NotFound(w, r)
		return
	}

	info, err := os.Stat(full)
	if err == nil && info.IsDir() {
		full = filepath.Join(full, "index.html")
		info, err = os.Stat(full)
	}
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, full)
}
