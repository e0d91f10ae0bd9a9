// Package hooks implements the named lifecycle hook dispatcher for Strato.
//
// A Dispatcher maps event names to ordered callback lists. Registration
// order is invocation order, and the registry is append-only for the
// lifetime of an application: there is no removal API.
//
// Dispatch is failure-isolated. A callback error is logged and re-dispatched
// as the "error" event, but never propagates to the Call caller and never
// prevents callbacks registered for other events from running.
//
// Usage:
//
//	d := hooks.New(logger)
//	d.Hook("ready", func(ctx context.Context, args ...any) error {
//	    app := args[0].(*strato.App)
//	    return warmCaches(ctx, app)
//	})
//	d.Call(ctx, "ready", app)
package hooks
