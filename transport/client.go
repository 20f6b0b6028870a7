package transport

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"
)

// ErrBrokenPipe is returned when the peer has gone away. A read of zero bytes is never
// reported as a successful one.
var ErrBrokenPipe = errors.New("read size is 0, probably connection broken")

// Client is a byte stream over a single connection. It reads by chunks of at most
// BufferSize bytes and supports a one-slot pushback: a consumer which read past the end of
// its message gives the rest back via Pushback, and the next Read returns exactly these
// bytes without touching the connection.
type Client interface {
	// BufferSize is the maximal size of a chunk returned by Read.
	BufferSize() int
	// Read returns pending pushback data if there is any, otherwise performs exactly one
	// read from the connection. The returned slice is owned by the caller.
	Read() ([]byte, error)
	// Pushback preserves a chunk of data for the next read. The slot is single, so pushing
	// back twice without a read in between overrides the first chunk.
	Pushback([]byte)
	// Pending returns the number of bytes currently waiting in the pushback slot.
	Pending() int
	// Write writes the data completely before returning.
	Write([]byte) error
	// Remote returns the address of the peer, or nil if it isn't known (e.g. unix sockets).
	Remote() net.Addr
	// Conn unwraps the underlying net.Conn.
	Conn() net.Conn
	// Close shuts the connection down.
	Close() error
}

type client struct {
	conn    net.Conn
	buff    []byte
	timeout time.Duration

	pendingMu sync.Mutex
	pending   []byte
	readMu    sync.Mutex
	writeMu   sync.Mutex
}

// NewClient wraps a connection of any kind: plain TCP, TLS or a unix socket. The length of
// buff defines the chunk size.
func NewClient(conn net.Conn, timeout time.Duration, buff []byte) Client {
	return &client{
		conn:    conn,
		buff:    buff,
		timeout: timeout,
	}
}

func (c *client) BufferSize() int {
	return len(c.buff)
}

// Read reads data into the internal buffer and returns a copy of it back. Timeouts are also
// handled automatically.
func (c *client) Read() ([]byte, error) {
	c.pendingMu.Lock()
	if c.pending != nil {
		pending := c.pending
		c.pending = nil
		c.pendingMu.Unlock()

		return pending, nil
	}
	c.pendingMu.Unlock()

	c.readMu.Lock()
	defer c.readMu.Unlock()

	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, err
		}
	}

	n, err := c.conn.Read(c.buff)
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return nil, ErrBrokenPipe
		}

		return nil, err
	}

	// if there was an error alongside the data, the next read will hit it again
	chunk := make([]byte, n)
	copy(chunk, c.buff[:n])

	return chunk, nil
}

func (c *client) Pushback(b []byte) {
	c.pendingMu.Lock()
	if len(b) == 0 {
		c.pending = nil
	} else {
		c.pending = b
	}
	c.pendingMu.Unlock()
}

func (c *client) Pending() int {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	return len(c.pending)
}

// Write writes data into the underlying connection. net.Conn.Write never returns without an
// error unless all the data was written.
func (c *client) Write(b []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_, err := c.conn.Write(b)
	return err
}

func (c *client) Remote() net.Addr {
	if _, isUnix := c.conn.(*net.UnixConn); isUnix {
		return nil
	}

	return c.conn.RemoteAddr()
}

func (c *client) Conn() net.Conn {
	return c.conn
}

// Close closes the connection. For TCP connections the write side is shut first, so the
// peer has a chance to receive everything that was written.
func (c *client) Close() error {
	if tcp, ok := c.conn.(*net.TCPConn); ok {
		_ = tcp.CloseWrite()
	}

	return c.conn.Close()
}
