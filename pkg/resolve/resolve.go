package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NotFoundError reports that a path did not resolve to an existing file,
// even after extension probing. It carries both the caller's original path
// and the alias-resolved candidate.
type NotFoundError struct {
	// Path is the path as passed by the caller.
	Path string

	// Resolved is the absolute candidate after alias resolution.
	Resolved string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("path not found: %q (resolved to %q)", e.Path, e.Resolved)
}

// Resolver resolves aliased paths against a project's directory layout.
// The zero value is not usable; fill in at least RootDir and SrcDir.
type Resolver struct {
	// RootDir is the absolute project root ("@@" / "~~" aliases).
	RootDir string

	// SrcDir is the absolute source directory ("@" / "~" aliases and the
	// base for plain relative paths).
	SrcDir string

	// ModuleDirs are installed-package roots searched before alias
	// interpretation, in order.
	ModuleDirs []string

	// Extensions are probed in order when the exact resolved path does not
	// exist. Entries may be given with or without a leading dot.
	Extensions []string
}

// ResolveAlias maps a logical path to an absolute path, without checking
// that the final result exists. Resolution order:
//
//  1. An existing entry under a module directory wins.
//  2. "@@" / "~~" prefix: remainder joined to RootDir.
//  3. "@" / "~" prefix: remainder joined to SrcDir.
//  4. Anything else: joined to SrcDir (absolute paths pass through).
func (r *Resolver) ResolveAlias(path string) string {
	if p, ok := r.lookupModuleDirs(path); ok {
		return p
	}

	switch {
	case strings.HasPrefix(path, "@@"), strings.HasPrefix(path, "~~"):
		return filepath.Join(r.RootDir, path[2:])
	case strings.HasPrefix(path, "@"), strings.HasPrefix(path, "~"):
		return filepath.Join(r.SrcDir, path[1:])
	case filepath.IsAbs(path):
		return filepath.Clean(path)
	default:
		return filepath.Join(r.SrcDir, path)
	}
}

// ResolvePath resolves the alias and verifies the result exists on disk.
// When the exact path is missing, each configured extension is probed in
// order ("path.ext"). The first existing candidate wins. When nothing
// exists the returned error is a *NotFoundError.
func (r *Resolver) ResolvePath(path string) (string, error) {
	resolved := r.ResolveAlias(path)

	if exists(resolved) {
		return resolved, nil
	}

	for _, ext := range r.Extensions {
		candidate := resolved + "." + strings.TrimPrefix(ext, ".")
		if exists(candidate) {
			return candidate, nil
		}
	}

	return "", &NotFoundError{Path: path, Resolved: resolved}
}

// lookupModuleDirs checks whether path names an entry installed under one
// of the module directories.
func (r *Resolver) lookupModuleDirs(path string) (string, bool) {
	if path == "" || filepath.IsAbs(path) {
		return "", false
	}
	for _, dir := range r.ModuleDirs {
		candidate := filepath.Join(dir, path)
		if exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
