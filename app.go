package strato

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/strato-web/strato/internal/errors"
	"github.com/strato-web/strato/pkg/hooks"
	"github.com/strato-web/strato/pkg/middleware"
	"github.com/strato-web/strato/pkg/resolve"
)

// =============================================================================
// Lifecycle states
// =============================================================================

// State describes where an App is in its lifecycle.
type State int

const (
	// StateUninitialized is the state after New, before Ready is called.
	StateUninitialized State = iota

	// StateInitializing means Ready is running: modules are loading and
	// the renderer has not reported readiness yet.
	StateInitializing

	// StateReady means the app can serve requests.
	StateReady

	// StateClosed means Close ran; the app cannot be reused.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// =============================================================================
// App
// =============================================================================

// App is the lifecycle orchestrator: it wires configuration, hooks,
// modules, the renderer, and the network listener together.
//
// Construction (New) only normalizes configuration and registers hooks.
// Ready performs initialization exactly once, no matter how many callers
// race on it; Listen implies Ready. Close tears everything down.
type App struct {
	settings Settings
	logger   *slog.Logger
	hooks    *hooks.Dispatcher
	resolver *resolve.Resolver
	registry *Registry
	renderer Renderer

	explicitModules []Module
	moduleNames     []string
	modules         []Module

	readyOnce sync.Once
	readyErr  error
	readyDur  time.Duration

	closeOnce sync.Once

	mu          sync.Mutex
	state       State
	middlewares []func(http.Handler) http.Handler
	mounts      []mountEntry
	handler     http.Handler
	server      *http.Server
	listener    net.Listener
}

// New creates an App from opts. Configuration errors surface here, not at
// Ready: a caller holding a non-nil *App knows its options were valid.
func New(opts Options) (*App, error) {
	settings, err := normalizeOptions(opts)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "strato")

	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry()
	}

	renderer := opts.Renderer
	if renderer == nil {
		renderer = newStaticRenderer(settings.Static.Dir, settings.Static.Prefix)
	}

	a := &App{
		settings: settings,
		logger:   logger,
		hooks:    hooks.New(logger),
		resolver: &resolve.Resolver{
			RootDir:    settings.RootDir,
			SrcDir:     settings.SrcDir,
			ModuleDirs: settings.ModuleDirs,
			Extensions: settings.Extensions,
		},
		registry:        registry,
		renderer:        renderer,
		explicitModules: append([]Module(nil), opts.Modules...),
		moduleNames:     append([]string(nil), opts.ModuleNames...),
		state:           StateUninitialized,
	}

	// Configured hooks register before any lifecycle event can fire, so
	// they observe module installation too.
	a.hooks.AddHooks(opts.Hooks)
	if opts.ConfigureHooks != nil {
		opts.ConfigureHooks(a.hooks)
	}

	return a, nil
}

// =============================================================================
// Accessors
// =============================================================================

// Settings returns the normalized configuration.
func (a *App) Settings() Settings { return a.settings }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Hooks returns the hook dispatcher.
func (a *App) Hooks() *hooks.Dispatcher { return a.hooks }

// DevMode reports whether the app runs in development mode.
func (a *App) DevMode() bool { return a.settings.DevMode }

// State returns the current lifecycle state.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// ReadyDuration returns how long initialization took. Zero before Ready
// completes.
func (a *App) ReadyDuration() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.readyDur
}

// Modules returns the modules installed so far, in installation order.
// Safe to call while Ready is still running.
func (a *App) Modules() []Module {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Module(nil), a.modules...)
}

// =============================================================================
// Hook registration
// =============================================================================

// Hook registers a callback for a lifecycle event. It accepts any event
// name; the core fires "ready", "listen", "close", "error", and
// "module:installed".
func (a *App) Hook(name string, fn hooks.Func) {
	a.hooks.Hook(name, fn)
}

// OnReady registers a typed callback fired once initialization completes.
func (a *App) OnReady(fn func(ctx context.Context, app *App) error) {
	a.Hook("ready", func(ctx context.Context, args ...any) error {
		return fn(ctx, a)
	})
}

// OnListen registers a typed callback fired after the listener binds.
func (a *App) OnListen(fn func(ctx context.Context, ln net.Listener, addr Addr) error) {
	a.Hook("listen", func(ctx context.Context, args ...any) error {
		var ln net.Listener
		var addr Addr
		if len(args) > 0 {
			ln, _ = args[0].(net.Listener)
		}
		if len(args) > 1 {
			addr, _ = args[1].(Addr)
		}
		return fn(ctx, ln, addr)
	})
}

// OnClose registers a typed callback fired during teardown, after the
// listener (if any) is destroyed.
func (a *App) OnClose(fn func(ctx context.Context, app *App) error) {
	a.Hook("close", func(ctx context.Context, args ...any) error {
		return fn(ctx, a)
	})
}

// OnError registers a typed callback fired whenever a lifecycle step or a
// hook callback fails. event names the failing hook, or "ready" for
// initialization failures.
func (a *App) OnError(fn func(ctx context.Context, event string, err error) error) {
	a.Hook(hooks.ErrorEvent, func(ctx context.Context, args ...any) error {
		var event string
		var err error
		if len(args) > 0 {
			event, _ = args[0].(string)
		}
		if len(args) > 1 {
			err, _ = args[1].(error)
		}
		return fn(ctx, event, err)
	})
}

// =============================================================================
// Path resolution
// =============================================================================

// ResolveAlias maps a logical path (`@/...`, `~~/...`, relative, absolute)
// to an absolute path without checking existence.
func (a *App) ResolveAlias(path string) string {
	return a.resolver.ResolveAlias(path)
}

// ResolvePath resolves an alias and verifies the file exists, probing the
// configured extensions. A miss returns an E101 error wrapping
// *resolve.NotFoundError.
func (a *App) ResolvePath(path string) (string, error) {
	resolved, err := a.resolver.ResolvePath(path)
	if err != nil {
		return "", errors.New("E101").
			WithDetail("Cannot resolve " + path).
			Wrap(err)
	}
	return resolved, nil
}

// =============================================================================
// Ready
// =============================================================================

// Ready initializes the app: modules load in order, the renderer reports
// readiness, the handler pipeline is assembled, and the "ready" hook
// fires. Concurrent and repeated calls share a single initialization
// attempt; if that attempt failed, every later call returns the same
// error.
func (a *App) Ready(ctx context.Context) error {
	if a.State() == StateClosed {
		return errors.New("E302")
	}

	a.readyOnce.Do(func() {
		a.readyErr = a.initialize(ctx)
	})
	return a.readyErr
}

func (a *App) initialize(ctx context.Context) error {
	a.setState(StateInitializing)
	start := time.Now()

	ctx, span := middleware.StartPhase(ctx, "strato.ready")
	defer span.End()

	if err := a.loadModules(ctx); err != nil {
		return a.initFailed(ctx, err)
	}

	if err := a.renderer.Ready(ctx); err != nil {
		return a.initFailed(ctx, err)
	}

	h := a.assembleHandler()
	dur := time.Since(start)

	a.mu.Lock()
	a.handler = h
	a.readyDur = dur
	a.state = StateReady
	a.mu.Unlock()
	a.logger.Info("application ready", "duration", dur)

	a.hooks.Call(ctx, "ready", a)
	return nil
}

// initFailed wraps err as an initialization failure, reports it to error
// hooks, and leaves the app unusable. The returned error is memoized by
// Ready for every later caller.
func (a *App) initFailed(ctx context.Context, err error) error {
	wrapped := errors.FromError(err, "E301")
	a.logger.Error("initialization failed", "error", err)
	a.hooks.Call(ctx, hooks.ErrorEvent, "ready", error(wrapped))
	return wrapped
}

// =============================================================================
// Close
// =============================================================================

// Close tears the app down: the bound listener (if any) is destroyed with
// all its connections, then the "close" hook fires. The first call does
// the work; every call returns nil, including on an app that never
// listened.
func (a *App) Close(ctx context.Context) error {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		srv := a.server
		a.server = nil
		a.listener = nil
		a.mu.Unlock()

		if srv != nil {
			// Forcible: in-flight connections are terminated.
			if err := srv.Close(); err != nil {
				a.logger.Warn("server close", "error", err)
			}
		}

		a.hooks.Call(ctx, "close", a)
		a.setState(StateClosed)
		a.logger.Info("application closed")
	})
	return nil
}

func (a *App) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}
