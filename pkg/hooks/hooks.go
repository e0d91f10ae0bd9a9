package hooks

import (
	"context"
	"log/slog"
	"sync"
)

// ErrorEvent is the event name fired when a hook callback returns an error.
// Callbacks registered for it receive the failing event name and the error.
const ErrorEvent = "error"

// Func is a hook callback. Callbacks for the same event are invoked
// sequentially with the same argument list.
type Func func(ctx context.Context, args ...any) error

// Map is a hook specification: event name to one-or-many callbacks.
type Map map[string][]Func

// Registrar is the narrow registration capability handed to modules and
// configuration code. *Dispatcher implements it.
type Registrar interface {
	Hook(name string, fn Func)
}

// Observer is an instrumentation callback invoked after every hook callback
// with the event name and its outcome. Used by the metrics module.
type Observer func(event string, err error)

// Dispatcher owns the hook registry for one application lifecycle.
// All mutation goes through its methods; it is safe for concurrent use.
type Dispatcher struct {
	mu       sync.RWMutex
	hooks    map[string][]Func
	observer Observer
	logger   *slog.Logger
}

// New creates an empty Dispatcher. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		hooks:  make(map[string][]Func),
		logger: logger.With("component", "hooks"),
	}
}

// Hook appends fn to the callback list for name.
//
// Registration is deliberately permissive: an empty name or a nil callback
// is ignored with a debug log instead of an error, so module authors can
// register conditionally without guarding every call.
func (d *Dispatcher) Hook(name string, fn Func) {
	if name == "" || fn == nil {
		d.logger.Debug("ignoring malformed hook registration",
			"name", name, "nil_callback", fn == nil)
		return
	}

	d.mu.Lock()
	d.hooks[name] = append(d.hooks[name], fn)
	d.mu.Unlock()
}

// AddHooks registers every callback of every event in m, preserving the
// per-event order of the slices.
func (d *Dispatcher) AddHooks(m Map) {
	for name, fns := range m {
		for _, fn := range fns {
			d.Hook(name, fn)
		}
	}
}

// Count returns the number of callbacks registered for name.
func (d *Dispatcher) Count(name string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.hooks[name])
}

// SetObserver installs an instrumentation observer. Only one observer is
// kept; later calls replace it.
func (d *Dispatcher) SetObserver(obs Observer) {
	d.mu.Lock()
	d.observer = obs
	d.mu.Unlock()
}

// Call invokes every callback registered for name, in registration order,
// each completing before the next starts. With no callbacks registered it
// returns immediately.
//
// A callback error never reaches the caller: it is logged, reported to the
// observer, and dispatched once as the ErrorEvent with (name, err) as
// arguments. A failing ErrorEvent callback is logged as a fatal condition
// and not re-dispatched.
func (d *Dispatcher) Call(ctx context.Context, name string, args ...any) {
	fns := d.snapshot(name)
	if len(fns) == 0 {
		return
	}

	for _, fn := range fns {
		err := fn(ctx, args...)
		d.observe(name, err)
		if err == nil {
			continue
		}

		d.logger.Error("hook callback failed", "event", name, "error", err)
		if name != ErrorEvent {
			d.callErrorHooks(ctx, name, err)
		}
	}
}

// callErrorHooks dispatches the ErrorEvent for a failed callback. Failures
// here terminate the chain: re-dispatching would recurse.
func (d *Dispatcher) callErrorHooks(ctx context.Context, event string, cause error) {
	for _, fn := range d.snapshot(ErrorEvent) {
		if err := fn(ctx, event, cause); err != nil {
			d.observe(ErrorEvent, err)
			d.logger.Error("error hook itself failed, not re-dispatching",
				"event", event, "cause", cause, "error", err)
			continue
		}
		d.observe(ErrorEvent, nil)
	}
}

// snapshot copies the callback list so dispatch never holds the lock while
// user code runs (callbacks may register more hooks).
func (d *Dispatcher) snapshot(name string) []Func {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.hooks[name]) == 0 {
		return nil
	}
	fns := make([]Func, len(d.hooks[name]))
	copy(fns, d.hooks[name])
	return fns
}

func (d *Dispatcher) observe(event string, err error) {
	d.mu.RLock()
	obs := d.observer
	d.mu.RUnlock()
	if obs != nil {
		obs(event, err)
	}
}
