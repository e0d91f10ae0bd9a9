package strato

import (
	"context"
	"sort"

	"github.com/strato-web/strato/internal/errors"
)

// =============================================================================
// Module protocol
// =============================================================================

// Module extends an application during initialization. Setup runs exactly
// once per App, before the renderer is consulted; it may register hooks,
// middleware, and routes on the app.
type Module interface {
	// Name identifies the module in logs and errors.
	Name() string

	// Setup installs the module into the app.
	Setup(ctx context.Context, app *App) error
}

// ModuleFunc adapts a named function to the Module interface.
func ModuleFunc(name string, setup func(ctx context.Context, app *App) error) Module {
	return &funcModule{name: name, setup: setup}
}

type funcModule struct {
	name  string
	setup func(ctx context.Context, app *App) error
}

func (m *funcModule) Name() string { return m.name }

func (m *funcModule) Setup(ctx context.Context, app *App) error {
	return m.setup(ctx, app)
}

// =============================================================================
// Registry
// =============================================================================

// Registry maps module names to factories so applications can enable
// modules by name (for example from strato.json). Factories run once per
// App, at lookup time.
type Registry struct {
	factories map[string]func() Module
}

// NewRegistry returns a registry preloaded with the built-in modules:
// "dev" (hot reload), "metrics" (Prometheus), and "tracing"
// (OpenTelemetry).
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]func() Module)}
	r.Register("dev", newDevModule)
	r.Register("metrics", newMetricsModule)
	r.Register("tracing", newTracingModule)
	return r
}

// Register adds or replaces a factory for name.
func (r *Registry) Register(name string, factory func() Module) {
	if name == "" || factory == nil {
		return
	}
	r.factories[name] = factory
}

// Lookup instantiates the module registered under name.
func (r *Registry) Lookup(name string) (Module, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, errors.New("E201").
			WithDetail("No module registered under " + name).
			WithSuggestion("Known modules: " + joinNames(r.Names()))
	}
	return factory(), nil
}

// Names returns the registered module names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

// =============================================================================
// Loading
// =============================================================================

// loadModules runs every configured module's Setup in order: explicit
// Module values first, then registry names. The first failure aborts the
// sequence.
func (a *App) loadModules(ctx context.Context) error {
	modules := append([]Module(nil), a.explicitModules...)
	for _, name := range a.moduleNames {
		m, err := a.registry.Lookup(name)
		if err != nil {
			return err
		}
		modules = append(modules, m)
	}

	installed := 0
	for _, m := range modules {
		a.logger.Debug("installing module", "module", m.Name())
		if err := m.Setup(ctx, a); err != nil {
			return errors.FromError(err, "E202").
				WithDetail("Module " + m.Name() + " failed during setup")
		}
		a.mu.Lock()
		a.modules = append(a.modules, m)
		a.mu.Unlock()
		installed++
		a.hooks.Call(ctx, "module:installed", m.Name())
	}

	if installed > 0 {
		a.logger.Info("modules installed", "count", installed)
	}
	return nil
}
