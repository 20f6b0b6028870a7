package dummy

import (
	"net"
	"sync"

	"github.com/hornet-web/hornet/transport"
)

var _ transport.Client = new(Client)

// Client returns the chunks it was initialised with one by one and fails with
// transport.ErrBrokenPipe as soon as they run out, unless set to loop reads. It also tracks
// all the written data, making it thereby a universal mock suitable for most of the tests.
type Client struct {
	mu         sync.Mutex
	closed     bool
	loop       bool
	journaling bool
	pointer    int
	buffSize   int
	reads      int
	pending    []byte
	written    []byte
	data       [][]byte
}

func NewMockClient(data ...[]byte) *Client {
	buffSize := 1
	for _, chunk := range data {
		buffSize = max(buffSize, len(chunk))
	}

	return &Client{
		data:       data,
		buffSize:   buffSize,
		journaling: true,
	}
}

// NewChunkedClient splits the data into chunks of the given size, just as a socket with a
// read buffer of that size would return them.
func NewChunkedClient(data []byte, chunkSize int) *Client {
	return NewMockClient(Disperse(data, chunkSize)...).WithBufferSize(chunkSize)
}

func (c *Client) Read() (data []byte, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil {
		data, c.pending = c.pending, nil

		return data, nil
	}

	if c.closed {
		return nil, transport.ErrBrokenPipe
	}

	if c.pointer >= len(c.data) {
		if !c.loop || len(c.data) == 0 {
			return nil, transport.ErrBrokenPipe
		}

		c.pointer = 0
	}

	piece := c.data[c.pointer]
	c.pointer++
	c.reads++

	return append([]byte(nil), piece...), nil
}

func (c *Client) Pushback(takeback []byte) {
	c.mu.Lock()
	if len(takeback) == 0 {
		c.pending = nil
	} else {
		c.pending = takeback
	}
	c.mu.Unlock()
}

func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.pending)
}

func (c *Client) Write(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return transport.ErrBrokenPipe
	}

	if c.journaling {
		c.written = append(c.written, p...)
	}

	return nil
}

func (c *Client) BufferSize() int {
	return c.buffSize
}

func (c *Client) Conn() net.Conn {
	return new(Conn).Nop()
}

func (*Client) Remote() net.Addr {
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	return nil
}

// Closed reports whether Close was called.
func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

// Reads returns how many chunks were taken from the initial data, pushbacks excluded.
func (c *Client) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.reads
}

// LoopReads makes the client start over once all the chunks are returned.
func (c *Client) LoopReads() *Client {
	c.loop = true
	return c
}

// WithBufferSize overrides the reported chunk size.
func (c *Client) WithBufferSize(n int) *Client {
	c.buffSize = n
	return c
}

func (c *Client) Journaling(flag bool) *Client {
	c.journaling = flag
	return c
}

func (c *Client) Written() string {
	if !c.journaling {
		panic("mock client: cannot access written data: journaling is disabled!")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return string(c.written)
}

// Disperse splits the data into pieces of at most n bytes.
func Disperse(data []byte, n int) (parts [][]byte) {
	if n <= 0 {
		return [][]byte{data}
	}

	for len(data) > n {
		parts = append(parts, data[:n])
		data = data[n:]
	}

	if len(data) > 0 {
		parts = append(parts, data)
	}

	return parts
}
