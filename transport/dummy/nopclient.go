package dummy

import (
	"net"

	"github.com/hornet-web/hornet/transport"
)

var _ transport.Client = NopClient{}

// NopClient is a client with nothing to read that discards all writes.
type NopClient struct{}

func NewNopClient() NopClient {
	return NopClient{}
}

func (NopClient) BufferSize() int {
	return 1
}

func (NopClient) Read() ([]byte, error) {
	return nil, transport.ErrBrokenPipe
}

func (NopClient) Pushback([]byte) {}

func (NopClient) Pending() int {
	return 0
}

func (NopClient) Write([]byte) error {
	return nil
}

func (NopClient) Conn() net.Conn {
	return new(Conn).Nop()
}

func (NopClient) Remote() net.Addr {
	return nil
}

func (NopClient) Close() error {
	return nil
}
