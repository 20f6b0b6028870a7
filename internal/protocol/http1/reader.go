package http1

import (
	"bytes"

	"github.com/hornet-web/hornet/http/status"
	"github.com/hornet-web/hornet/internal/constraints"
	"github.com/hornet-web/hornet/transport"
)

// ReadHead reads chunks from the client until a complete head is received. Bytes past the
// head belong to the body (or to the next request) and are pushed back.
//
// status.ErrHeaderFieldsTooLarge is returned once the head grows past the ceiling without
// being complete. Transport errors are returned unmodified.
func ReadHead(client transport.Client, cons *constraints.Constraints) (*Head, error) {
	var (
		buff       []byte
		maxSize    = cons.MaxRequestHeaderSize(client.BufferSize())
		maxHeaders = cons.MaxHeaderNumber()
	)

	for {
		chunk, err := client.Read()
		if err != nil {
			return nil, err
		}

		if buff == nil {
			buff = chunk
		} else {
			buff = append(buff, chunk...)
		}

		head, n, err := Parse(buff, maxHeaders)
		switch {
		case n > maxSize:
			return nil, status.ErrHeaderFieldsTooLarge
		case err != nil:
			return nil, err
		case head != nil:
			if n < len(buff) {
				client.Pushback(bytes.Clone(buff[n:]))
			}

			return head, nil
		case len(buff) > maxSize:
			return nil, status.ErrHeaderFieldsTooLarge
		}
	}
}
