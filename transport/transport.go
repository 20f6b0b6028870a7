package transport

import (
	"net"

	"github.com/hornet-web/hornet/config"
)

// Transport accepts connections and hands each of them over to the callback in a
// separate goroutine.
type Transport interface {
	Bind(addr string) error
	Listen(cfg config.NET, cb func(conn net.Conn)) error
	Stop()
	Close()
	Wait()
}
