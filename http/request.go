package http

import (
	"log"
	"net"

	"github.com/hornet-web/hornet/config"
	"github.com/hornet-web/hornet/http/form"
	"github.com/hornet-web/hornet/http/headers"
	"github.com/hornet-web/hornet/http/mime"
	"github.com/hornet-web/hornet/http/proto"
	"github.com/hornet-web/hornet/http/query"
	"github.com/hornet-web/hornet/http/status"
	"github.com/hornet-web/hornet/internal/constraints"
	"github.com/hornet-web/hornet/internal/formdata"
	"github.com/hornet-web/hornet/transport"
)

// Handler processes a request and returns the response to be sent.
type Handler func(request *Request) *Response

type bodyState uint8

const (
	bodyUntouched bodyState = iota
	bodyReading
	bodyConsumed
)

// Request represents HTTP request
type Request struct {
	// Method is the request method exactly as it was received.
	Method string
	// Target is the raw request-target. Path and Query are derived from it.
	Target string
	Path   string
	Query  query.Values
	Proto  proto.Proto
	// Headers holds non-normalized header pairs, even though lookup is case-insensitive.
	Headers *headers.Headers
	// Remote holds the remote address. Nil for unix sockets.
	Remote   net.Addr
	client   transport.Client
	cfg      *config.Config
	cons     *constraints.Constraints
	logger   *log.Logger
	response *Response
	body     bodyState
	formErr  error
	fields   form.Fields
	files    form.Files
	hijacked bool
}

func NewRequest(
	client transport.Client, cfg *config.Config, cons *constraints.Constraints, logger *log.Logger,
) *Request {
	return &Request{
		Proto:    proto.HTTP11,
		Query:    make(query.Values),
		Headers:  headers.New(0),
		Remote:   client.Remote(),
		client:   client,
		cfg:      cfg,
		cons:     cons,
		logger:   logger,
		response: NewResponse(),
	}
}

// Respond returns the response builder of the request, cleared.
func (r *Request) Respond() *Response {
	return r.response.Clear()
}

func (r *Request) Config() *config.Config {
	return r.cfg
}

func (r *Request) Logger() *log.Logger {
	return r.logger
}

// ParseForm decodes the body as a form, choosing the decoder by the Content-Type. Bodies of
// other types are left in the stream untouched, and empty results are returned. The body
// is decoded at most once: subsequent calls return the same result.
func (r *Request) ParseForm() (form.Fields, form.Files, error) {
	switch r.body {
	case bodyConsumed:
		return r.fields, r.files, nil
	case bodyReading:
		return nil, nil, r.formErr
	}

	contentType := r.Headers.Value("Content-Type")

	var err error

	switch {
	case mime.Is(mime.Multipart, contentType):
		r.body = bodyReading

		var length int
		if length, err = r.declaredLength(); err == nil {
			r.fields, r.files, err = formdata.ParseMultipart(
				r.client, r.cons, contentType, r.cfg.Body.Form.TempDir, length,
			)
		}
	case mime.Is(mime.FormUrlencoded, contentType):
		r.body = bodyReading
		r.fields, err = formdata.ParseURLEncoded(r.client, r.cons, r.Headers)
		r.files = make(form.Files)
	default:
		return make(form.Fields), make(form.Files), nil
	}

	if err != nil {
		r.formErr = err
		r.fields, r.files = nil, nil
		r.logger.Printf("%s %s: decoding form: %s", r.Method, r.Path, err)

		return nil, nil, err
	}

	r.body = bodyConsumed
	return r.fields, r.files, nil
}

// declaredLength rejects a multipart body upfront if it declares to be larger than
// allowed. Content-Length isn't required for multipart bodies, -1 is returned if it's absent.
func (r *Request) declaredLength() (int, error) {
	if !r.Headers.Has("Content-Length") {
		return -1, nil
	}

	length, err := formdata.ContentLength(r.Headers)
	if err != nil {
		return 0, err
	}

	if length > r.cons.MaxBodySize(r.client.BufferSize()) {
		return 0, status.ErrBodyTooLarge
	}

	return length, nil
}

// BodyDangling reports whether the stream may still hold bytes of the request body. If so,
// the position of the next request in the stream can't be trusted.
func (r *Request) BodyDangling() bool {
	// transfer codings aren't decoded, so the end of such a body is never known
	if r.Headers.Has("Transfer-Encoding") {
		return true
	}

	switch r.body {
	case bodyConsumed:
		return false
	case bodyReading:
		return true
	}

	if !r.Headers.Has("Content-Length") {
		return false
	}

	length, err := formdata.ContentLength(r.Headers)
	return err != nil || length > 0
}

// Hijack hands the connection over to the caller. The connection is closed as soon as
// the handler returns, so it can be hijacked at most once.
func (r *Request) Hijack() transport.Client {
	r.hijacked = true
	return r.client
}

// WasHijacked tells whether the connection was hijacked or not
func (r *Request) WasHijacked() bool {
	return r.hijacked
}

// Cleanup removes files uploaded along with the request.
func (r *Request) Cleanup() {
	if r.files == nil {
		return
	}

	if err := r.files.Remove(); err != nil {
		r.logger.Printf("removing uploaded files: %s", err)
	}

	r.files = nil
}
