package strato

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/strato-web/strato/internal/errors"
	"github.com/strato-web/strato/pkg/hooks"
)

// =============================================================================
// Configuration Types
// =============================================================================

// Options is the main application configuration.
// This is the user-friendly entry point for configuring a Strato app.
// Zero-value fields are filled with defaults by New.
type Options struct {
	// RootDir is the project root directory. The `@@` and `~~` aliases
	// resolve into it. Relative paths are made absolute against the
	// working directory. Default: the working directory.
	RootDir string

	// SrcDir is the application source directory. The `@` and `~` aliases
	// and plain relative paths resolve into it. Relative values are joined
	// to RootDir. Default: RootDir.
	SrcDir string

	// ModuleDirs are installed-package roots searched before alias
	// interpretation when resolving paths. Relative values are joined to
	// RootDir.
	ModuleDirs []string

	// Extensions are probed, in order, when a resolved path does not exist
	// as-is. Default: html, gohtml, tmpl, json.
	Extensions []string

	// Modules are installed during Ready, in order, before the renderer is
	// consulted. Each module's Setup may register hooks, middleware, and
	// routes.
	Modules []Module

	// ModuleNames are looked up in the Registry and installed after
	// Modules. Unknown names fail Ready.
	ModuleNames []string

	// Registry resolves ModuleNames. If nil, NewRegistry() is used, which
	// knows the built-in "dev", "metrics", and "tracing" modules.
	Registry *Registry

	// Hooks are registered on the dispatcher before modules load, so they
	// observe every lifecycle event including module installation.
	Hooks hooks.Map

	// ConfigureHooks, when set, is called with the dispatcher during New,
	// after Hooks are registered. Useful when registration needs logic.
	ConfigureHooks func(hooks.Registrar)

	// Renderer produces responses for requests no mounted route claimed.
	// If nil, a static file renderer over Static.Dir is used.
	Renderer Renderer

	// Static configures the default static renderer. Ignored when Renderer
	// is set.
	Static StaticOptions

	// Server configures HTTP server timeouts.
	Server ServerOptions

	// DevMode enables development behavior (hot reload module support,
	// verbose errors).
	DevMode bool

	// Logger is the structured logger for the application.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// StaticOptions configures the built-in static renderer.
type StaticOptions struct {
	// Dir is the directory containing static files (e.g., "public").
	// Relative values are joined to RootDir. Default: "public".
	Dir string

	// Prefix is the URL path prefix for static files. Default: "/".
	Prefix string
}

// ServerOptions configures HTTP server timeouts.
type ServerOptions struct {
	// ReadHeaderTimeout bounds reading request headers. Default: 10s.
	ReadHeaderTimeout time.Duration

	// ReadTimeout bounds reading the full request. Default: 30s.
	ReadTimeout time.Duration

	// WriteTimeout bounds writing the response. Default: 30s.
	WriteTimeout time.Duration

	// IdleTimeout bounds keep-alive idle connections. Default: 120s.
	IdleTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown in Run. Default: 10s.
	ShutdownTimeout time.Duration
}

// Settings is the normalized form of Options: every path absolute, every
// zero value replaced with its default. Settings is what the rest of the
// application reads.
type Settings struct {
	RootDir    string
	SrcDir     string
	ModuleDirs []string
	Extensions []string
	Static     StaticOptions
	Server     ServerOptions
	DevMode    bool
}

// DefaultExtensions are probed when a resolved path has no match as-is.
var DefaultExtensions = []string{"html", "gohtml", "tmpl", "json"}

// =============================================================================
// Normalization
// =============================================================================

// normalizeOptions validates opts and produces the derived Settings.
func normalizeOptions(opts Options) (Settings, error) {
	var s Settings

	root := opts.RootDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return s, errors.New("E001").
				WithDetail("Cannot determine working directory: " + err.Error())
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return s, errors.New("E001").
			WithDetail("Invalid RootDir " + opts.RootDir + ": " + err.Error())
	}
	s.RootDir = root

	src := opts.SrcDir
	switch {
	case src == "":
		src = root
	case !filepath.IsAbs(src):
		src = filepath.Join(root, src)
	}
	s.SrcDir = filepath.Clean(src)

	for _, dir := range opts.ModuleDirs {
		if dir == "" {
			continue
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		s.ModuleDirs = append(s.ModuleDirs, filepath.Clean(dir))
	}

	// Copied, not aliased: mutating the Options slice after New must not
	// reach the settled configuration.
	s.Extensions = append([]string(nil), opts.Extensions...)
	if len(s.Extensions) == 0 {
		s.Extensions = append(s.Extensions, DefaultExtensions...)
	}
	for _, ext := range s.Extensions {
		if ext == "" || ext == "." {
			return s, errors.New("E001").
				WithDetail("Extensions must not contain empty entries")
		}
	}

	s.Static = opts.Static
	if s.Static.Dir == "" {
		s.Static.Dir = "public"
	}
	if !filepath.IsAbs(s.Static.Dir) {
		s.Static.Dir = filepath.Join(root, s.Static.Dir)
	}
	if s.Static.Prefix == "" {
		s.Static.Prefix = "/"
	}

	s.Server = opts.Server
	if s.Server.ReadHeaderTimeout <= 0 {
		s.Server.ReadHeaderTimeout = 10 * time.Second
	}
	if s.Server.ReadTimeout <= 0 {
		s.Server.ReadTimeout = 30 * time.Second
	}
	if s.Server.WriteTimeout <= 0 {
		s.Server.WriteTimeout = 30 * time.Second
	}
	if s.Server.IdleTimeout <= 0 {
		s.Server.IdleTimeout = 120 * time.Second
	}
	if s.Server.ShutdownTimeout <= 0 {
		s.Server.ShutdownTimeout = 10 * time.Second
	}

	s.DevMode = opts.DevMode
	return s, nil
}
