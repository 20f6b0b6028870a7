package transport

import (
	"errors"
	"io/fs"
	"net"
	"os"
)

// Unix listens on a unix domain socket. A socket file left over by a previous run is
// removed before binding.
type Unix struct {
	acceptor
}

func NewUnix() *Unix {
	return &Unix{acceptor: newAcceptor(nil)}
}

func (u *Unix) Bind(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return err
	}

	l, err := net.ListenUnix("unix", addr)
	if err != nil {
		return err
	}

	l.SetUnlinkOnClose(true)
	u.acceptor = newAcceptor(l)
	return nil
}
