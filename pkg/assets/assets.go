// Package assets defines the contract for publishing build artifacts and
// static files to external storage (CDN origin buckets and the like).
package assets

import (
	"context"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
)

// Publisher uploads assets to a storage backend and returns addressable
// URLs. Implementations must be safe for concurrent use.
type Publisher interface {
	// Publish stores the asset under key and returns a URL it can be
	// fetched from.
	Publish(ctx context.Context, key, contentType string, body io.Reader) (string, error)

	// Remove deletes the asset stored under key. Removing a missing key
	// is not an error.
	Remove(ctx context.Context, key string) error
}

// SyncDir publishes every regular file under dir, keyed by its
// slash-separated path relative to dir, and returns a Manifest mapping
// each key to its published URL. Content types derive from file
// extensions. The first failure aborts the walk.
func SyncDir(ctx context.Context, pub Publisher, dir string) (*Manifest, error) {
	manifest := NewManifest()

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)

		contentType := mime.TypeByExtension(filepath.Ext(path))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		url, err := pub.Publish(ctx, key, contentType, f)
		if err != nil {
			return err
		}
		manifest.Set(key, url)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return manifest, nil
}
