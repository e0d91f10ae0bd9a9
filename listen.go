package strato

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/strato-web/strato/internal/errors"
	"github.com/strato-web/strato/pkg/hooks"
)

// =============================================================================
// Listen options
// =============================================================================

// DefaultPort is used when neither an option nor the PORT environment
// variable provides one.
const DefaultPort = 3000

// DefaultHost is used when neither an option nor the HOST environment
// variable provides one.
const DefaultHost = "localhost"

// Addr describes a bound listener, as delivered to the "listen" hook.
// Port is the actual bound port (meaningful when 0 was requested); Host is
// a displayable host, never a wildcard.
type Addr struct {
	Port int
	Host string
}

// String formats the address as host:port.
func (a Addr) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

type listenConfig struct {
	port      int
	portSet   bool
	host      string
	hostSet   bool
	reusePort bool
}

// ListenOption configures Listen.
type ListenOption func(*listenConfig)

// WithPort binds to an explicit port. Port 0 requests an ephemeral port.
func WithPort(port int) ListenOption {
	return func(c *listenConfig) {
		c.port = port
		c.portSet = true
	}
}

// WithHost binds to an explicit host.
func WithHost(host string) ListenOption {
	return func(c *listenConfig) {
		c.host = host
		c.hostSet = true
	}
}

// WithReusePort sets SO_REUSEPORT on the socket where the platform
// supports it, allowing multiple processes to share the port.
func WithReusePort(enabled bool) ListenOption {
	return func(c *listenConfig) {
		c.reusePort = enabled
	}
}

// resolveListenConfig applies option, environment, and built-in defaults,
// in that priority order.
func resolveListenConfig(opts []ListenOption) (listenConfig, error) {
	var c listenConfig
	for _, opt := range opts {
		opt(&c)
	}

	if !c.portSet {
		if env := os.Getenv("PORT"); env != "" {
			port, err := strconv.Atoi(env)
			if err != nil || port < 0 || port > 65535 {
				return c, errors.New("E001").
					WithDetail("PORT environment variable is not a valid port: " + env)
			}
			c.port = port
		} else {
			c.port = DefaultPort
		}
	}
	if !c.hostSet {
		if env := os.Getenv("HOST"); env != "" {
			c.host = env
		} else {
			c.host = DefaultHost
		}
	}
	return c, nil
}

// =============================================================================
// Listen
// =============================================================================

// Listen initializes the app if needed, binds a TCP listener, fires the
// "listen" hook with the listener and its resolved address, and serves in
// the background. Defaults come from the PORT and HOST environment
// variables, then port 3000 on localhost.
//
// The listener is owned by the app: Close destroys it along with all its
// connections.
func (a *App) Listen(ctx context.Context, opts ...ListenOption) error {
	if a.State() == StateClosed {
		return errors.New("E302")
	}

	if err := a.Ready(ctx); err != nil {
		return err
	}

	c, err := resolveListenConfig(opts)
	if err != nil {
		return err
	}

	lc := net.ListenConfig{}
	if c.reusePort {
		lc.Control = reusePortControl
	}

	bindAddr := net.JoinHostPort(c.host, strconv.Itoa(c.port))
	ln, err := lc.Listen(ctx, "tcp", bindAddr)
	if err != nil {
		return errors.New("E401").
			WithDetail("Cannot bind " + bindAddr + ": " + err.Error()).
			Wrap(err)
	}

	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: a.settings.Server.ReadHeaderTimeout,
		ReadTimeout:       a.settings.Server.ReadTimeout,
		WriteTimeout:      a.settings.Server.WriteTimeout,
		IdleTimeout:       a.settings.Server.IdleTimeout,
	}

	a.mu.Lock()
	a.listener = ln
	a.server = srv
	a.mu.Unlock()

	addr := boundAddr(ln, c.host)
	a.logger.Info("listening", "url", "http://"+addr.String())
	a.hooks.Call(ctx, "listen", ln, addr)

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			a.logger.Error("server terminated", "error", err)
			a.hooks.Call(context.Background(), hooks.ErrorEvent, "listen", err)
		}
	}()

	return nil
}

// ListenAddr returns the bound listener address, or nil when not
// listening.
func (a *App) ListenAddr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// boundAddr derives the displayable address for a bound listener: the
// actual port, and a host a person can paste into a browser. Loopback
// binds display as "localhost"; wildcard binds display as a real
// non-loopback interface address when one exists.
func boundAddr(ln net.Listener, requestedHost string) Addr {
	port := 0
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		port = tcp.Port
	}

	host := requestedHost
	ip := net.ParseIP(requestedHost)
	switch {
	case requestedHost == "localhost":
		// Already displayable.
	case ip != nil && ip.IsLoopback():
		host = "localhost"
	case requestedHost == "" || (ip != nil && ip.IsUnspecified()):
		host = firstNonLoopbackAddr()
	}
	return Addr{Port: port, Host: host}
}

// firstNonLoopbackAddr returns a non-loopback interface IP, preferring
// IPv4, falling back to "localhost" when the host has none.
func firstNonLoopbackAddr() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}

	var v6 string
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
		if v6 == "" {
			v6 = ipNet.IP.String()
		}
	}
	if v6 != "" {
		return v6
	}
	return "localhost"
}

// =============================================================================
// Run
// =============================================================================

// Run is the blocking entry point for a typical server process: it
// listens, waits for SIGINT/SIGTERM or context cancellation, then closes
// the app.
func (a *App) Run(ctx context.Context, opts ...ListenOption) error {
	if err := a.Listen(ctx, opts...); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case s := <-sig:
		a.logger.Info("shutting down", "signal", s.String())
	case <-ctx.Done():
		a.logger.Info("shutting down", "reason", ctx.Err())
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), a.settings.Server.ShutdownTimeout)
	defer cancel()
	return a.Close(closeCtx)
}
