package strato

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// =============================================================================
// Renderer Gateway
// =============================================================================

// Renderer is the boundary between the lifecycle core and the rendering
// subsystem. The core treats it as opaque: it waits for Ready before
// serving and dispatches every request no mounted route claimed.
type Renderer interface {
	// Ready blocks until the renderer can serve requests, or reports why
	// it never will. Called once, during App.Ready.
	Ready(ctx context.Context) error

	http.Handler
}

// RendererFunc adapts a plain handler into an always-ready Renderer.
func RendererFunc(h http.HandlerFunc) Renderer {
	return readyHandler{h}
}

type readyHandler struct {
	http.HandlerFunc
}

func (readyHandler) Ready(ctx context.Context) error { return nil }

// =============================================================================
// Handler assembly
// =============================================================================

// Use appends middleware applied to every request, including mounted
// routes and the renderer. Middleware registered after Ready has no
// effect; modules call Use during Setup.
func (a *App) Use(mw ...func(http.Handler) http.Handler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.middlewares = append(a.middlewares, mw...)
}

// Mount routes all requests under pattern to h, ahead of the renderer.
// Like Use, mounting after Ready has no effect.
func (a *App) Mount(pattern string, h http.Handler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mounts = append(a.mounts, mountEntry{pattern: pattern, handler: h})
}

type mountEntry struct {
	pattern string
	handler http.Handler
}

// assembleHandler builds the final request pipeline: middleware, then
// mounted routes, then the renderer for everything else. Called once at
// the end of a successful Ready, after modules had their chance to Use
// and Mount.
func (a *App) assembleHandler() http.Handler {
	a.mu.Lock()
	defer a.mu.Unlock()

	r := chi.NewRouter()
	for _, m := range a.mounts {
		r.Mount(m.pattern, m.handler)
	}
	r.NotFound(a.renderer.ServeHTTP)

	// chi only engages its middleware chain once a route is registered,
	// which would drop Use middleware on a mount-free app. Wrap the chain
	// around the router ourselves; first registered runs outermost.
	var h http.Handler = r
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		h = a.middlewares[i](h)
	}
	return h
}

// Handler returns the assembled request pipeline. It is the entry point
// for embedding a Strato app in an existing server instead of calling
// Listen. Returns nil before Ready succeeds.
func (a *App) Handler() http.Handler {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.handler
}

// ServeHTTP dispatches to the assembled pipeline, answering 503 until
// Ready has completed.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h := a.Handler()
	if h == nil {
		http.Error(w, "application not ready", http.StatusServiceUnavailable)
		return
	}
	h.ServeHTTP(w, r)
}
