package transport

import "net"

type TCP struct {
	acceptor
}

func NewTCP() *TCP {
	return &TCP{acceptor: newAcceptor(nil)}
}

func bindTCP(addr string) (*net.TCPListener, error) {
	tcpaddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}

	return net.ListenTCP("tcp", tcpaddr)
}

func (t *TCP) Bind(addr string) error {
	l, err := bindTCP(addr)
	if err != nil {
		return err
	}

	t.acceptor = newAcceptor(l)
	return nil
}
