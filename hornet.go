package hornet

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"sync"

	"github.com/hornet-web/hornet/config"
	"github.com/hornet-web/hornet/http"
	httpserver "github.com/hornet-web/hornet/internal/server/http"
	"github.com/hornet-web/hornet/transport"
	"golang.org/x/sync/errgroup"
)

var ErrNoTransports = errors.New("no transports to listen on")

// App is the entry point: it holds the listeners and the configuration and serves the
// handler on all the listeners at once.
type App struct {
	cfg        *config.Config
	logger     *log.Logger
	transports []Transport
	hooks      hooks

	mu      sync.Mutex
	running []transport.Transport
	stopped bool
}

// New returns a new App instance. Logging is disabled until a logger is set explicitly.
func New() *App {
	return &App{
		cfg:    config.Default(),
		logger: log.New(io.Discard, "", 0),
	}
}

// Tune replaces the default config. Always modify the defaults returned by config.Default.
func (a *App) Tune(cfg *config.Config) *App {
	a.cfg = cfg
	return a
}

// Logger sets the logger for connection-level failures, which otherwise aren't reported.
func (a *App) Logger(logger *log.Logger) *App {
	a.logger = logger
	return a
}

// NotifyOnStart calls the callback at the moment, when all the listeners are bound.
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback at the moment, when all the listeners are down and all
// the connections are served till the end.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Listen adds a new listener. By default, it's plain TCP. If multiple transports are passed,
// all of them are bound to the same address.
func (a *App) Listen(addr string, transports ...Transport) *App {
	if len(transports) == 0 {
		transports = append(transports, TCP())
	}

	for _, t := range transports {
		if t.auto && isLocalhost(addr) {
			t = selfSigned(a.logger)
		}

		t.addr = addr
		a.transports = append(a.transports, t)
	}

	return a
}

// TLS is a shorthand for Listen(addr, TLS(cert, key)).
func (a *App) TLS(addr, cert, key string) *App {
	return a.Listen(addr, TLS(cert, key))
}

// AutoTLS is a shorthand for Listen(addr, AutoTLS(domains...)).
func (a *App) AutoTLS(addr string, domains ...string) *App {
	return a.Listen(addr, AutoTLS(domains...))
}

// Unix is a shorthand for Listen(path, Unix()).
func (a *App) Unix(path string) *App {
	return a.Listen(path, Unix())
}

// Serve binds all the listeners and serves the handler until Stop is called or any of
// the listeners fails. In both cases, the call returns only after all the connections
// are closed.
func (a *App) Serve(handler http.Handler) error {
	if len(a.transports) == 0 {
		return ErrNoTransports
	}

	bound, err := a.bind()
	if err != nil {
		return err
	}

	server := httpserver.NewServer(handler, a.cfg, a.logger)
	callback := func(conn net.Conn) {
		client := transport.NewClient(conn, a.cfg.NET.ReadTimeout, make([]byte, a.cfg.NET.ReadBufferSize))
		server.Run(client)
	}

	g, ctx := errgroup.WithContext(context.Background())
	for _, t := range bound {
		g.Go(func() error {
			return t.Listen(a.cfg.NET, callback)
		})
	}

	go func() {
		// a failure of a single listener brings all the others down
		<-ctx.Done()
		a.Stop()
	}()

	callIfNotNil(a.hooks.OnStart)
	err = g.Wait()

	for _, t := range bound {
		t.Wait()
		t.Close()
	}

	callIfNotNil(a.hooks.OnStop)

	return err
}

func (a *App) bind() ([]transport.Transport, error) {
	bound := make([]transport.Transport, 0, len(a.transports))
	closeAll := func() {
		for _, t := range bound {
			t.Close()
		}
	}

	for _, t := range a.transports {
		if t.error != nil {
			closeAll()
			return nil, t.error
		}

		inner := t.spawn(a.logger)
		if err := inner.Bind(t.addr); err != nil {
			closeAll()
			return nil, err
		}

		bound = append(bound, inner)
	}

	a.mu.Lock()
	a.running, a.stopped = bound, false
	a.mu.Unlock()

	return bound, nil
}

// Addrs returns addresses of the bound listeners. Useful when listening on port 0.
func (a *App) Addrs() []net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()

	addrs := make([]net.Addr, 0, len(a.running))
	for _, t := range a.running {
		if withAddr, ok := t.(interface{ Addr() net.Addr }); ok {
			addrs = append(addrs, withAddr.Addr())
		}
	}

	return addrs
}

// Stop stops accepting new connections. Already accepted ones are served till the end.
//
// NOTE: the call isn't blocking. The listeners notice it within
// config.NET.AcceptLoopInterruptPeriod.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return
	}

	a.stopped = true
	for _, t := range a.running {
		t.Stop()
	}
}

type hooks struct {
	OnStart, OnStop func()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
