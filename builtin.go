package strato

import (
	"context"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/strato-web/strato/internal/dev"
	"github.com/strato-web/strato/pkg/hooks"
	"github.com/strato-web/strato/pkg/middleware"
)

// =============================================================================
// Built-in modules
// =============================================================================

// MetricsEndpoint is where the metrics module exposes Prometheus metrics.
const MetricsEndpoint = "/_strato/metrics"

// newDevModule wires hot reload: a WebSocket endpoint browsers connect to
// and a file watcher that broadcasts changes. Outside DevMode it installs
// nothing.
func newDevModule() Module {
	return ModuleFunc("dev", func(ctx context.Context, app *App) error {
		if !app.DevMode() {
			app.Logger().Debug("dev module skipped outside dev mode")
			return nil
		}

		reload := dev.NewReloadServer()
		app.Mount(dev.ReloadEndpoint, reload)
		app.Use(dev.ScriptInjector())

		watcher := dev.NewWatcher(dev.WatcherConfig{
			Paths: []string{app.Settings().SrcDir},
			OnChange: func(c dev.Change) {
				app.Logger().Debug("file changed", "path", c.Path)
				if c.Type == dev.ChangeCSS {
					reload.NotifyCSS(c.Path)
				} else {
					reload.NotifyReload()
				}
			},
		})

		app.Hook("listen", func(ctx context.Context, args ...any) error {
			go watcher.Start(context.WithoutCancel(ctx))
			return nil
		})
		app.Hook("close", func(ctx context.Context, args ...any) error {
			watcher.Stop()
			reload.Close()
			return nil
		})
		return nil
	})
}

// newMetricsModule installs the Prometheus request middleware, exposes the
// scrape endpoint, and observes hook and lifecycle activity.
func newMetricsModule() Module {
	return ModuleFunc("metrics", func(ctx context.Context, app *App) error {
		app.Use(middleware.Prometheus())
		app.Mount(MetricsEndpoint, promhttp.Handler())

		app.Hooks().SetObserver(middleware.HookObserver())
		app.Hook("module:installed", func(ctx context.Context, args ...any) error {
			middleware.RecordModuleLoaded()
			return nil
		})
		app.Hook("ready", func(ctx context.Context, args ...any) error {
			middleware.RecordReadyDuration(app.ReadyDuration())
			return nil
		})
		return nil
	})
}

// newTracingModule installs the OpenTelemetry request middleware. Span
// export is the host application's concern: configure a tracer provider
// with otel.SetTracerProvider before Listen.
func newTracingModule() Module {
	return ModuleFunc("tracing", func(ctx context.Context, app *App) error {
		app.Use(middleware.OpenTelemetry())
		return nil
	})
}

// compile-time interface checks
var (
	_ hooks.Registrar = (*App)(nil)
)
