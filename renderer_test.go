package strato

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/strato-web/strato/internal/dev"
)

func TestServeHTTP_BeforeReady(t *testing.T) {
	app := newTestApp(t, Options{Renderer: &countingRenderer{}})

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 before Ready", rr.Code)
	}
}

func TestMount_TakesPrecedenceOverRenderer(t *testing.T) {
	app := newTestApp(t, Options{Renderer: &countingRenderer{}})
	app.Mount("/api", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("api"))
	}))

	if err := app.Ready(context.Background()); err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest("GET", "/api", nil))
	if rr.Body.String() != "api" {
		t.Errorf("mounted route body = %q, want api", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest("GET", "/other", nil))
	if rr.Body.String() != "rendered" {
		t.Errorf("fallthrough body = %q, want rendered", rr.Body.String())
	}
}

func TestUse_MiddlewareWrapsEverything(t *testing.T) {
	// No mounted routes: the renderer fallthrough must still pass
	// through the installed middleware.
	app := newTestApp(t, Options{Renderer: &countingRenderer{}})
	app.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Framework", "strato")
			next.ServeHTTP(w, r)
		})
	})

	if err := app.Ready(context.Background()); err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest("GET", "/whatever", nil))
	if rr.Header().Get("X-Framework") != "strato" {
		t.Error("middleware should apply to renderer responses")
	}
}

func TestUse_MiddlewareCoversMountedRoutes(t *testing.T) {
	app := newTestApp(t, Options{Renderer: &countingRenderer{}})
	app.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Framework", "strato")
			next.ServeHTTP(w, r)
		})
	})
	app.Mount("/api", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("api"))
	}))

	if err := app.Ready(context.Background()); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"/api", "/page"} {
		rr := httptest.NewRecorder()
		app.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))
		if rr.Header().Get("X-Framework") != "strato" {
			t.Errorf("GET %s: middleware header missing", path)
		}
	}
}

func TestRendererFunc_AlwaysReady(t *testing.T) {
	r := RendererFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("fn"))
	})
	if err := r.Ready(context.Background()); err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Body.String() != "fn" {
		t.Errorf("body = %q, want fn", rr.Body.String())
	}
}

func TestStaticRenderer_ServesFilesAndIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>home</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := newStaticRenderer(dir, "/")

	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest("GET", "/app.css", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "body{}" {
		t.Errorf("css: status %d body %q", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "<h1>home</h1>" {
		t.Errorf("index: status %d body %q", rr.Code, rr.Body.String())
	}
}

func TestStaticRenderer_BlocksTraversalAndMissing(t *testing.T) {
	dir := t.TempDir()
	s := newStaticRenderer(dir, "/")

	for _, path := range []string{"/../secret", "/..%2f..%2fetc/passwd", "/missing.txt"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "http://example.test/", nil)
		req.URL.Path = path
		s.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest("POST", "/app.css", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST = %d, want 405", rr.Code)
	}
}

func TestBuiltinModules_DevMountsReloadEndpoint(t *testing.T) {
	app := newTestApp(t, Options{
		Renderer:    &countingRenderer{},
		ModuleNames: []string{"dev"},
		DevMode:     true,
	})
	if err := app.Ready(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { app.Close(context.Background()) })

	// A plain GET is not a WebSocket upgrade; the endpoint must exist but
	// refuse the handshake rather than fall through to the renderer.
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest("GET", "/_strato/reload", nil))
	if rr.Body.String() == "rendered" {
		t.Error("reload endpoint not mounted, request fell through to renderer")
	}
}

func TestBuiltinModules_DevInjectsReloadScript(t *testing.T) {
	html := RendererFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body><h1>home</h1></body></html>"))
	})
	app := newTestApp(t, Options{
		Renderer:    html,
		ModuleNames: []string{"dev"},
		DevMode:     true,
	})
	if err := app.Ready(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { app.Close(context.Background()) })

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	body := rr.Body.String()
	script := strings.Index(body, dev.ReloadEndpoint)
	if script == -1 {
		t.Fatal("reload client script not injected into HTML response")
	}
	if closer := strings.Index(body, "</body>"); closer != -1 && script > closer {
		t.Error("script should be injected before </body>")
	}
}

func TestBuiltinModules_DevSkippedOutsideDevMode(t *testing.T) {
	app := newTestApp(t, Options{
		Renderer:    &countingRenderer{},
		ModuleNames: []string{"dev"},
	})
	if err := app.Ready(context.Background()); err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest("GET", "/_strato/reload", nil))
	if rr.Body.String() != "rendered" {
		t.Error("reload endpoint should not exist outside dev mode")
	}
}

func TestBuiltinModules_MetricsEndpoint(t *testing.T) {
	app := newTestApp(t, Options{
		Renderer:    &countingRenderer{},
		ModuleNames: []string{"metrics", "tracing"},
	})
	if err := app.Ready(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { app.Close(context.Background()) })

	// Generate one request so counters exist.
	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/page", nil))

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest("GET", MetricsEndpoint, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics endpoint status = %d", rr.Code)
	}
}
