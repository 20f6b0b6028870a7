package transport

import (
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hornet-web/hornet/config"
)

type listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

// acceptor is the accept loop shared by all the transports. The listener deadline is
// reset periodically, so the loop notices Stop even if no connections arrive.
type acceptor struct {
	l    listener
	wg   *sync.WaitGroup
	stop *atomic.Bool
}

func newAcceptor(l listener) acceptor {
	return acceptor{
		l:    l,
		wg:   new(sync.WaitGroup),
		stop: new(atomic.Bool),
	}
}

func (a *acceptor) Listen(cfg config.NET, cb func(conn net.Conn)) error {
	if a.l == nil {
		return errors.New("transport: listen called before bind")
	}

	for !a.stop.Load() {
		if err := a.l.SetDeadline(time.Now().Add(cfg.AcceptLoopInterruptPeriod)); err != nil {
			return err
		}

		conn, err := a.l.Accept()
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}

			if a.stop.Load() {
				return nil
			}

			return err
		}

		a.wg.Add(1)
		go func(conn net.Conn) {
			defer a.wg.Done()
			cb(conn)
			_ = conn.Close()
		}(conn)
	}

	return nil
}

func (a *acceptor) Stop() {
	a.stop.Store(true)
}

func (a *acceptor) Close() {
	if a.l != nil {
		_ = a.l.Close()
	}
}

// Wait blocks until every connection callback returns.
func (a *acceptor) Wait() {
	a.wg.Wait()
}

// Addr returns the bound address, or nil before Bind.
func (a *acceptor) Addr() net.Addr {
	if a.l == nil {
		return nil
	}

	return a.l.Addr()
}
