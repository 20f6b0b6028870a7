package config

import (
	"time"
)

type (
	BodyForm struct {
		// MaxHeaderSize limits the header block of every single multipart part.
		MaxHeaderSize int
		// MaxFileSize limits every uploaded file, unless overridden via FieldLimits.
		MaxFileSize int
		// MaxValueSize limits every text field value, unless overridden via FieldLimits.
		MaxValueSize int
		// FieldLimits overrides limits for concrete field names. Applies to both text values
		// and files.
		FieldLimits map[string]int
		// TempDir is where uploaded files are stored. Empty value stands for os.TempDir().
		TempDir string `test:"nullable"`
	}
)

type (
	Headers struct {
		// MaxSpace limits the amount of bytes the request line and headers may occupy
		// together.
		MaxSpace int
		// MaxNumber is the maximal number of header lines allowed in a single request.
		MaxNumber int
	}

	Body struct {
		// MaxSize describes the maximal size of a body, that can be processed at once
		// (applies to application/x-www-form-urlencoded).
		MaxSize int
		// Form contains limits specific to multipart/form-data.
		Form BodyForm
	}

	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket. This is also the chunk size every decoder operates on.
		ReadBufferSize int
		// ReadTimeout controls the maximal lifetime of IDLE connections. If no data was
		// received in this period of time, it'll be closed.
		ReadTimeout time.Duration
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop. Defaults to 5 seconds.
		AcceptLoopInterruptPeriod time.Duration
	}

	WebSocket struct {
		// MaxPayloadSize is the maximal payload a single frame is allowed to declare. It
		// also limits a message accumulated out of continuation frames.
		MaxPayloadSize uint64
		// PingInterval is the period between two consecutive server pings.
		PingInterval time.Duration
		// PeriodicPing enables the background pinging task.
		PeriodicPing bool
	}
)

// Config holds settings used across various parts of hornet, mainly restrictions and
// limitations.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	Headers   Headers
	Body      Body
	NET       NET
	WebSocket WebSocket
}

// Default returns default config. Those are initially well-balanced, however maximal defaults
// are pretty permitting.
func Default() *Config {
	return &Config{
		Headers: Headers{
			MaxSpace:  5 * 1024 * 1024,
			MaxNumber: 100,
		},
		Body: Body{
			MaxSize: 512 * 1024 * 1024,
			Form: BodyForm{
				MaxHeaderSize: 2 * 1024,
				MaxFileSize:   512 * 1024 * 1024,
				MaxValueSize:  2 * 1024 * 1024,
				FieldLimits:   make(map[string]int),
			},
		},
		NET: NET{
			ReadBufferSize:            8096,
			ReadTimeout:               90 * time.Second,
			AcceptLoopInterruptPeriod: 5 * time.Second,
		},
		WebSocket: WebSocket{
			MaxPayloadSize: 5 * 1024 * 1024,
			PingInterval:   10 * time.Second,
			PeriodicPing:   true,
		},
	}
}
