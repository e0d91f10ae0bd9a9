package strato

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/strato-web/strato/internal/errors"
	"github.com/strato-web/strato/pkg/resolve"
)

// countingRenderer counts how many times its readiness is consulted.
type countingRenderer struct {
	readyCalls atomic.Int32
	readyErr   error
}

func (r *countingRenderer) Ready(ctx context.Context) error {
	r.readyCalls.Add(1)
	return r.readyErr
}

func (r *countingRenderer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("rendered"))
}

func newTestApp(t *testing.T, opts Options) *App {
	t.Helper()
	if opts.RootDir == "" {
		opts.RootDir = t.TempDir()
	}
	app, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return app
}

func TestNew_StateUninitialized(t *testing.T) {
	app := newTestApp(t, Options{})
	if app.State() != StateUninitialized {
		t.Errorf("state = %v, want uninitialized", app.State())
	}
	if app.Handler() != nil {
		t.Error("handler should be nil before Ready")
	}
}

func TestReady_SingleFlight(t *testing.T) {
	renderer := &countingRenderer{}
	var setupCalls atomic.Int32

	app := newTestApp(t, Options{
		Renderer: renderer,
		Modules: []Module{
			ModuleFunc("counter", func(ctx context.Context, a *App) error {
				setupCalls.Add(1)
				return nil
			}),
		},
	})

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = app.Ready(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("Ready[%d] = %v", i, err)
		}
	}
	if n := renderer.readyCalls.Load(); n != 1 {
		t.Errorf("renderer readiness consulted %d times, want 1", n)
	}
	if n := setupCalls.Load(); n != 1 {
		t.Errorf("module setup ran %d times, want 1", n)
	}
	if app.State() != StateReady {
		t.Errorf("state = %v, want ready", app.State())
	}
}

// slowRenderer holds Ready until released, so tests can observe an app
// mid-initialization.
type slowRenderer struct {
	release chan struct{}
}

func (r *slowRenderer) Ready(ctx context.Context) error {
	<-r.release
	return nil
}

func (r *slowRenderer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	w.Write([]byte("rendered"))
}

func TestAccessors_SafeWhileReadyRuns(t *testing.T) {
	renderer := &slowRenderer{release: make(chan struct{})}
	app := newTestApp(t, Options{
		Renderer: renderer,
		Modules: []Module{
			ModuleFunc("noop", func(ctx context.Context, a *App) error { return nil }),
		},
	})

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				app.Modules()
				app.ReadyDuration()
			}
		}
	}()

	readyErr := make(chan error, 1)
	go func() { readyErr <- app.Ready(context.Background()) }()

	// Let the poller overlap module loading, then finish initialization.
	time.Sleep(20 * time.Millisecond)
	close(renderer.release)
	if err := <-readyErr; err != nil {
		t.Fatal(err)
	}
	close(stop)
	wg.Wait()

	if n := len(app.Modules()); n != 1 {
		t.Errorf("modules installed = %d, want 1", n)
	}
	if app.ReadyDuration() <= 0 {
		t.Error("ReadyDuration should be positive after Ready")
	}
}

func TestReady_FailureMemoized(t *testing.T) {
	boom := stderrors.New("setup exploded")
	var setupCalls atomic.Int32

	app := newTestApp(t, Options{
		Renderer: &countingRenderer{},
		Modules: []Module{
			ModuleFunc("broken", func(ctx context.Context, a *App) error {
				setupCalls.Add(1)
				return boom
			}),
		},
	})

	first := app.Ready(context.Background())
	second := app.Ready(context.Background())

	if first == nil || second == nil {
		t.Fatal("both Ready calls should fail")
	}
	if first != second {
		t.Error("later Ready calls should return the memoized error")
	}
	if !stderrors.Is(first, boom) {
		t.Error("cause should survive wrapping")
	}
	var se *errors.StratoError
	if !stderrors.As(first, &se) || se.Code != "E202" {
		t.Errorf("err = %v, want E202", first)
	}
	if n := setupCalls.Load(); n != 1 {
		t.Errorf("setup retried %d times, want 1", n)
	}

	// Listen shares the same memoized failure.
	if err := app.Listen(context.Background(), WithPort(0)); err != first {
		t.Errorf("Listen = %v, want the memoized Ready error", err)
	}
}

func TestReady_FiresReadyHook(t *testing.T) {
	var got *App
	app := newTestApp(t, Options{Renderer: &countingRenderer{}})
	app.OnReady(func(ctx context.Context, a *App) error {
		got = a
		return nil
	})

	if err := app.Ready(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got != app {
		t.Error("ready hook should receive the app instance")
	}
	if app.ReadyDuration() <= 0 {
		t.Error("ReadyDuration should be positive after Ready")
	}
}

func TestReady_InitFailureReachesErrorHook(t *testing.T) {
	boom := stderrors.New("renderer down")
	var event string
	var hookErr error

	app := newTestApp(t, Options{Renderer: &countingRenderer{readyErr: boom}})
	app.OnError(func(ctx context.Context, ev string, err error) error {
		event = ev
		hookErr = err
		return nil
	})

	if err := app.Ready(context.Background()); err == nil {
		t.Fatal("expected Ready to fail")
	}
	if event != "ready" {
		t.Errorf("error hook event = %q, want ready", event)
	}
	if !stderrors.Is(hookErr, boom) {
		t.Errorf("error hook cause = %v, want wrapped %v", hookErr, boom)
	}
}

func TestHooks_ModuleRegisteredHooksObserveReady(t *testing.T) {
	var order []string
	var mu sync.Mutex
	record := func(what string) {
		mu.Lock()
		order = append(order, what)
		mu.Unlock()
	}

	app := newTestApp(t, Options{
		Renderer: &countingRenderer{},
		Hooks: HookMap{
			"ready": {func(ctx context.Context, args ...any) error {
				record("configured")
				return nil
			}},
		},
		Modules: []Module{
			ModuleFunc("hooky", func(ctx context.Context, a *App) error {
				a.OnReady(func(ctx context.Context, _ *App) error {
					record("module")
					return nil
				})
				return nil
			}),
		},
	})

	if err := app.Ready(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "configured" || order[1] != "module" {
		t.Errorf("hook order = %v, want [configured module]", order)
	}
}

func TestClose_WithoutListen(t *testing.T) {
	var closed bool
	app := newTestApp(t, Options{Renderer: &countingRenderer{}})
	app.OnClose(func(ctx context.Context, a *App) error {
		closed = true
		return nil
	})

	if err := app.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !closed {
		t.Error("close hook did not fire")
	}
	if app.State() != StateClosed {
		t.Errorf("state = %v, want closed", app.State())
	}

	// Idempotent.
	if err := app.Close(context.Background()); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
}

func TestReady_AfterCloseRejected(t *testing.T) {
	app := newTestApp(t, Options{Renderer: &countingRenderer{}})
	if err := app.Close(context.Background()); err != nil {
		t.Fatal(err)
	}

	err := app.Ready(context.Background())
	var se *errors.StratoError
	if !stderrors.As(err, &se) || se.Code != "E302" {
		t.Errorf("Ready after Close = %v, want E302", err)
	}
}

func TestResolvePath_WrapsNotFound(t *testing.T) {
	app := newTestApp(t, Options{})

	_, err := app.ResolvePath("@/nope/missing")
	if err == nil {
		t.Fatal("expected resolution failure")
	}

	var se *errors.StratoError
	if !stderrors.As(err, &se) || se.Code != "E101" {
		t.Errorf("err = %v, want E101", err)
	}
	var nf *resolve.NotFoundError
	if !stderrors.As(err, &nf) {
		t.Fatal("underlying *NotFoundError should survive wrapping")
	}
	if nf.Path != "@/nope/missing" {
		t.Errorf("NotFound.Path = %q", nf.Path)
	}
}

func TestResolvePath_AliasAndExtension(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "app")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	page := filepath.Join(src, "home.html")
	if err := os.WriteFile(page, []byte("<h1></h1>"), 0o644); err != nil {
		t.Fatal(err)
	}

	app := newTestApp(t, Options{RootDir: root, SrcDir: "app"})

	got, err := app.ResolvePath("@/home")
	if err != nil {
		t.Fatal(err)
	}
	if got != page {
		t.Errorf("resolved = %q, want %q", got, page)
	}

	if alias := app.ResolveAlias("~~/strato.json"); alias != filepath.Join(root, "strato.json") {
		t.Errorf("ResolveAlias = %q", alias)
	}
}
