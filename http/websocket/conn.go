package websocket

import (
	"encoding/binary"
	"iter"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hornet-web/hornet/config"
	"github.com/hornet-web/hornet/transport"
	json "github.com/json-iterator/go"
)

const (
	CloseNormal        uint16 = 1000
	closeLimitExceeded uint16 = 0

	noCloseReason      = "No close message specified."
	limitExceededError = "Max payload size exceed."
)

// Message is a complete message, reassembled out of its fragments if there were any.
// Control frames are reported as separate messages.
type Message struct {
	Opcode      Opcode
	Data        []byte
	CloseCode   uint16
	CloseReason string
}

// Text returns the data as a string.
func (m Message) Text() string {
	return string(m.Data)
}

// Conn is an upgraded connection. Receive must not be called concurrently, while sending
// is safe to do from any goroutine.
type Conn struct {
	id         string
	client     transport.Client
	logger     *log.Logger
	maxPayload uint64
	receiving  atomic.Bool
	stopPing   chan struct{}
	stopOnce   sync.Once
	// message being reassembled
	opcode    Opcode
	fragments []byte
}

func newConn(client transport.Client, cfg config.WebSocket, logger *log.Logger) *Conn {
	conn := &Conn{
		id:         uuid.NewString(),
		client:     client,
		logger:     logger,
		maxPayload: cfg.MaxPayloadSize,
		stopPing:   make(chan struct{}),
	}
	conn.receiving.Store(true)

	if cfg.PeriodicPing && cfg.PingInterval > 0 {
		go conn.pingLoop(cfg.PingInterval)
	}

	return conn
}

// ID uniquely identifies the connection.
func (c *Conn) ID() string {
	return c.id
}

// Receive returns the next message. ok is false once the connection stopped receiving: after
// a close frame, a read failure or a failed ping or pong. The close message itself is still
// returned with ok set.
func (c *Conn) Receive() (msg Message, ok bool) {
	if !c.receiving.Load() {
		return Message{}, false
	}

	for {
		frame, err := ReadFrame(c.client, c.maxPayload)
		if err != nil {
			c.stop()
			return Message{Opcode: OpClose, CloseCode: CloseNormal, CloseReason: err.Error()}, true
		}

		if frame.Opcode.IsControl() {
			return c.control(frame), true
		}

		if frame.Opcode == OpContinuation {
			c.fragments = append(c.fragments, frame.Payload...)
		} else {
			c.opcode = frame.Opcode
			c.fragments = append(c.fragments[:0], frame.Payload...)
		}

		if uint64(len(c.fragments)) > c.maxPayload {
			c.stop()
			c.fragments = nil

			return Message{Opcode: OpClose, CloseCode: closeLimitExceeded, CloseReason: limitExceededError}, true
		}

		if frame.Fin {
			msg = Message{Opcode: c.opcode, Data: c.fragments}
			c.opcode, c.fragments = OpContinuation, nil

			return msg, true
		}
	}
}

// Messages iterates over received messages until the connection stops receiving.
func (c *Conn) Messages() iter.Seq[Message] {
	return func(yield func(Message) bool) {
		for {
			msg, ok := c.Receive()
			if !ok || !yield(msg) {
				return
			}
		}
	}
}

func (c *Conn) control(frame Frame) Message {
	switch frame.Opcode {
	case OpClose:
		c.stop()

		return Message{
			Opcode:      OpClose,
			Data:        frame.Payload,
			CloseCode:   closeCode(frame.Payload),
			CloseReason: closeReason(frame.Payload),
		}
	case OpPing:
		if err := c.client.Write(Build(Frame{Fin: true, Opcode: OpPong})); err != nil {
			c.logger.Printf("websocket %s: pong failed: %s", c.id, err)
			c.stop()
		}
	}

	return Message{Opcode: frame.Opcode, Data: frame.Payload}
}

func (c *Conn) SendText(text string) error {
	return c.send(OpText, []byte(text))
}

func (c *Conn) SendBinary(data []byte) error {
	return c.send(OpBinary, data)
}

// SendJSON sends the model serialized as a text message.
func (c *Conn) SendJSON(model any) error {
	data, err := json.ConfigDefault.Marshal(model)
	if err != nil {
		return err
	}

	return c.send(OpText, data)
}

// Close sends a close frame and stops receiving. The underlying connection is closed by the
// server once the handler returns.
func (c *Conn) Close(code uint16, reason string) error {
	c.stop()

	payload := binary.BigEndian.AppendUint16(make([]byte, 0, 2+len(reason)), code)
	return c.send(OpClose, append(payload, reason...))
}

func (c *Conn) send(opcode Opcode, payload []byte) error {
	return c.client.Write(Build(Frame{Fin: true, Opcode: opcode, Payload: payload}))
}

func (c *Conn) stop() {
	c.receiving.Store(false)
	c.stopOnce.Do(func() {
		close(c.stopPing)
	})
}

func (c *Conn) pingLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ping := Build(Frame{Fin: true, Opcode: OpPing})

	for {
		select {
		case <-c.stopPing:
			return
		case <-ticker.C:
			if err := c.client.Write(ping); err != nil {
				c.logger.Printf("websocket %s: ping failed: %s", c.id, err)
				c.stop()
				return
			}
		}
	}
}

func closeCode(payload []byte) uint16 {
	if len(payload) < 2 {
		return 0
	}

	return binary.BigEndian.Uint16(payload)
}

func closeReason(payload []byte) string {
	if len(payload) < 3 {
		return noCloseReason
	}

	return string(payload[2:])
}
