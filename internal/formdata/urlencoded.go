package formdata

import (
	"strconv"
	"strings"

	"github.com/hornet-web/hornet/http/form"
	"github.com/hornet-web/hornet/http/headers"
	"github.com/hornet-web/hornet/http/query"
	"github.com/hornet-web/hornet/http/status"
	"github.com/hornet-web/hornet/internal/constraints"
	"github.com/hornet-web/hornet/transport"
	"github.com/indigo-web/utils/buffer"
	"github.com/indigo-web/utils/uf"
)

// ContentLength returns the declared body length. status.ErrLengthRequired is returned if
// the header is absent.
func ContentLength(hdrs *headers.Headers) (int, error) {
	raw, found := hdrs.Get("Content-Length")
	if !found {
		return 0, status.ErrLengthRequired
	}

	length, err := strconv.ParseUint(strings.TrimSpace(raw), 10, strconv.IntSize-1)
	if err != nil {
		return 0, status.ErrBadContentLength
	}

	return int(length), nil
}

// ParseURLEncoded reads exactly Content-Length bytes of the body and decodes them as
// &-separated key=value pairs. Bytes past the declared length are pushed back.
func ParseURLEncoded(
	client transport.Client, cons *constraints.Constraints, hdrs *headers.Headers,
) (form.Fields, error) {
	length, err := ContentLength(hdrs)
	if err != nil {
		return nil, err
	}

	buffSize := client.BufferSize()
	if length > cons.MaxBodySize(buffSize) {
		return nil, status.ErrBodyTooLarge
	}

	fields := make(form.Fields)
	if length == 0 {
		return fields, nil
	}

	body := buffer.New(min(length, buffSize), length)

	for body.SegmentLength() < length {
		chunk, err := client.Read()
		if err != nil {
			return nil, err
		}

		if rest := length - body.SegmentLength(); len(chunk) > rest {
			client.Pushback(chunk[rest:])
			chunk = chunk[:rest]
		}

		if !body.Append(chunk) {
			return nil, status.ErrBodyTooLarge
		}
	}

	return query.Parse(uf.B2S(body.Finish()), fields), nil
}
