package http1

import (
	"bytes"
	"strings"

	"github.com/hornet-web/hornet/http/headers"
	"github.com/hornet-web/hornet/http/proto"
	"github.com/hornet-web/hornet/http/query"
	"github.com/hornet-web/hornet/http/status"
	"github.com/indigo-web/utils/uf"
)

// Head is the request line together with the header fields.
type Head struct {
	Method string
	// Target is the request-target exactly as it was received.
	Target   string
	Path     string
	RawQuery string
	Proto    proto.Proto
	Headers  *headers.Headers
}

// KeepAlive decides whether the connection may be reused after the request, judging solely
// by the protocol version and the Connection header.
func (h *Head) KeepAlive() bool {
	connection, found := h.Headers.Get("Connection")
	if !found {
		return h.Proto.KeepAliveByDefault()
	}

	return strings.EqualFold(strings.TrimSpace(connection), "keep-alive")
}

var terminator = []byte("\r\n\r\n")

// Parse attempts to parse a complete head out of data. If the head isn't complete yet,
// (nil, 0, nil) is returned, so the call can be repeated as soon as more data arrives. On
// success, n is the length of the head including the terminating empty line.
//
// status.ErrUnusableRequest is returned when the request line misses the method, target
// or protocol.
func Parse(data []byte, maxHeaders int) (head *Head, n int, err error) {
	end := bytes.Index(data, terminator)
	if end == -1 {
		return nil, 0, nil
	}

	n = end + len(terminator)
	lines := uf.B2S(data[:end])

	requestLine, fields, _ := strings.Cut(lines, "\r\n")
	head, err = parseRequestLine(requestLine)
	if err != nil {
		return nil, n, err
	}

	head.Headers = headers.New(min(strings.Count(fields, "\r\n")+1, maxHeaders))
	for fields != "" {
		var line string
		line, fields, _ = strings.Cut(fields, "\r\n")

		if head.Headers.Len() >= maxHeaders {
			return nil, n, status.ErrTooManyHeaders
		}

		key, value, found := strings.Cut(line, ":")
		if !found || len(key) == 0 || strings.ContainsAny(key, " \t") {
			return nil, n, status.ErrBadRequest
		}

		head.Headers.Add(key, strings.Trim(value, " \t"))
	}

	return head, n, nil
}

func parseRequestLine(line string) (*Head, error) {
	method, rest, _ := strings.Cut(line, " ")
	target, protocol, _ := strings.Cut(rest, " ")
	if len(method) == 0 || len(target) == 0 || len(protocol) == 0 {
		return nil, status.ErrUnusableRequest
	}

	version := proto.FromString(protocol)
	if version == proto.Unknown {
		return nil, status.ErrUnsupportedProtocol
	}

	path, rawQuery := query.SplitPath(target)

	return &Head{
		Method:   method,
		Target:   target,
		Path:     path,
		RawQuery: rawQuery,
		Proto:    version,
	}, nil
}
