// Package strato is the bootstrap and lifecycle core of the Strato web
// framework: configuration normalization, aliased path resolution, a
// hook-based extension protocol, a typed module system, and an HTTP
// listener wired around a pluggable renderer.
//
// A minimal application:
//
//	app, err := strato.New(strato.Options{
//	    ModuleNames: []string{"metrics"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// Lifecycle: New normalizes options and registers configured hooks. Ready
// loads modules, waits for the renderer, and fires the "ready" hook;
// concurrent callers share one initialization attempt. Listen implies
// Ready, binds the listener, and fires the "listen" hook. Close destroys
// the listener and fires the "close" hook.
package strato

import (
	"github.com/strato-web/strato/pkg/hooks"
	"github.com/strato-web/strato/pkg/resolve"
)

// Version is the framework version, overridable at build time with
// -ldflags "-X github.com/strato-web/strato.Version=...".
var Version = "0.1.0"

// =============================================================================
// Re-exports
// =============================================================================

// HookFunc is a lifecycle hook callback.
type HookFunc = hooks.Func

// HookMap maps event names to callback lists, for Options.Hooks.
type HookMap = hooks.Map

// HookRegistrar is the registration capability handed to configuration
// code via Options.ConfigureHooks.
type HookRegistrar = hooks.Registrar

// PathNotFoundError is returned (wrapped in an E101 error) when
// ResolvePath finds nothing, even after extension probing.
type PathNotFoundError = resolve.NotFoundError
