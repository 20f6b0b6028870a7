package http

import (
	"errors"
	"strconv"

	"github.com/hornet-web/hornet/http/form"
	"github.com/hornet-web/hornet/http/headers"
	"github.com/hornet-web/hornet/http/mime"
	"github.com/hornet-web/hornet/http/proto"
	"github.com/hornet-web/hornet/http/status"
	"github.com/hornet-web/hornet/transport"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
	"github.com/valyala/bytebufferpool"
)

const (
	// why 7? Most responses carry no more than a couple of custom headers anyway.
	preallocRespHeaders = 7
	defaultContentType  = mime.HTML
)

type Response struct {
	code        status.Code
	status      status.Status
	contentType string
	headers     *headers.Headers
	body        []byte
	close       bool
}

// NewResponse returns a new instance of the Response object with status code set to 200 OK,
// pre-allocated space for response headers and text/html content-type.
// NOTE: it's recommended to use Request.Respond() method inside of handlers, if there's no
// clear reason otherwise
func NewResponse() *Response {
	return &Response{
		code:        status.OK,
		contentType: defaultContentType,
		headers:     headers.New(preallocRespHeaders),
	}
}

// Code sets a Response code and a corresponding status.
func (r *Response) Code(code status.Code) *Response {
	r.code = code
	return r
}

// Status sets a custom status text. Otherwise, the text is derived from the code.
func (r *Response) Status(status status.Status) *Response {
	r.status = status
	return r
}

// ContentType sets a custom Content-Type header value.
func (r *Response) ContentType(value mime.MIME) *Response {
	r.contentType = value
	return r
}

// Header sets header values to a key. In case it already exists the value will
// be appended.
func (r *Response) Header(key string, values ...string) *Response {
	switch {
	case strcomp.EqualFold(key, "content-type"):
		if len(values) > 0 {
			return r.ContentType(values[0])
		}

		return r
	case strcomp.EqualFold(key, "content-length"):
		// always set automatically
		return r
	}

	r.headers.Add(key, values...)
	return r
}

// String sets the response's body to the passed string
func (r *Response) String(body string) *Response {
	return r.Bytes(uf.S2B(body))
}

// Bytes sets the response's body to passed slice WITHOUT COPYING. Changing
// the passed slice later will affect the response by itself
func (r *Response) Bytes(body []byte) *Response {
	r.body = body
	return r
}

// Write implements io.Writer interface. It always returns n=len(b) and err=nil
func (r *Response) Write(b []byte) (n int, err error) {
	r.body = append(r.body, b...)
	return len(b), nil
}

// TryJSON receives a model (must be a pointer to the structure) and returns a new Response
// object and an error
func (r *Response) TryJSON(model any) (*Response, error) {
	r.body = nil
	stream := json.ConfigDefault.BorrowStream(r)
	stream.WriteVal(model)
	err := stream.Flush()
	json.ConfigDefault.ReturnStream(stream)

	return r.ContentType(mime.JSON), err
}

// JSON does the same as TryJSON does, except returned error is being implicitly wrapped
// by Error
func (r *Response) JSON(model any) *Response {
	resp, err := r.TryJSON(model)
	if err != nil {
		return r.Error(err)
	}

	return resp
}

// Error returns a response builder with an error set. If passed err is nil, nothing will happen.
// The code is derived from the error if it carries one, otherwise custom code can be passed.
// By default, it's 500 Internal Server Error. Messages of internal errors are never exposed.
func (r *Response) Error(err error, code ...status.Code) *Response {
	if err == nil {
		return r
	}

	var fieldErr *form.FieldError
	if errors.As(err, &fieldErr) {
		return r.
			Code(fieldErr.Status()).
			ContentType(mime.Plain).
			String(fieldErr.PublicMessage())
	}

	var httpErr status.HTTPError
	if errors.As(err, &httpErr) {
		return r.
			Code(httpErr.Code).
			ContentType(mime.Plain).
			String(httpErr.Message)
	}

	c := status.InternalServerError
	if len(code) > 0 {
		// peek the first, ignore the rest
		c = code[0]
	}

	return r.
		Code(c).
		ContentType(mime.Plain).
		String(string(status.Text(c)))
}

// Close marks the connection to be closed once the response is written.
func (r *Response) Close() *Response {
	r.close = true
	return r
}

// ShouldClose reports whether Close was called.
func (r *Response) ShouldClose() bool {
	return r.close
}

// StatusCode returns the code set so far.
func (r *Response) StatusCode() status.Code {
	return r.code
}

// Body returns the body set so far.
func (r *Response) Body() []byte {
	return r.body
}

// HeaderValue looks up a custom header set on the response.
func (r *Response) HeaderValue(key string) string {
	if strcomp.EqualFold(key, "content-type") {
		return r.contentType
	}

	return r.headers.Value(key)
}

// Clear discards everything was done with Response object before
func (r *Response) Clear() *Response {
	r.code = status.OK
	r.status = ""
	r.contentType = defaultContentType
	r.headers.Clear()
	r.body = nil
	r.close = false

	return r
}

// WriteTo serializes the response and writes it at once. Informational and No Content
// responses are sent without any body framing.
func (r *Response) WriteTo(client transport.Client, protocol proto.Proto, keepAlive bool) error {
	buff := bytebufferpool.Get()
	defer bytebufferpool.Put(buff)

	if protocol == proto.Unknown {
		protocol = proto.HTTP11
	}

	statusText := r.status
	if len(statusText) == 0 {
		statusText = status.Text(r.code)
	}

	_, _ = buff.WriteString(protocol.String())
	_ = buff.WriteByte(' ')
	buff.B = strconv.AppendUint(buff.B, uint64(r.code), 10)
	_ = buff.WriteByte(' ')
	_, _ = buff.WriteString(string(statusText))
	_, _ = buff.WriteString("\r\n")

	for key, value := range r.headers.Iter() {
		if !keepAlive && strcomp.EqualFold(key, "connection") {
			continue
		}

		writeHeader(buff, key, value)
	}

	bodyless := r.code < 200 || r.code == status.NoContent
	if !bodyless {
		if len(r.contentType) > 0 {
			writeHeader(buff, "Content-Type", r.contentType)
		}

		_, _ = buff.WriteString("Content-Length: ")
		buff.B = strconv.AppendInt(buff.B, int64(len(r.body)), 10)
		_, _ = buff.WriteString("\r\n")
	}

	if !keepAlive {
		writeHeader(buff, "Connection", "close")
	}

	_, _ = buff.WriteString("\r\n")

	if !bodyless {
		_, _ = buff.Write(r.body)
	}

	return client.Write(buff.B)
}

func writeHeader(buff *bytebufferpool.ByteBuffer, key, value string) {
	_, _ = buff.WriteString(key)
	_, _ = buff.WriteString(": ")
	_, _ = buff.WriteString(value)
	_, _ = buff.WriteString("\r\n")
}

// Respond is a predicate to request.Respond(). May be used as a dummy handler
func Respond(request *Request) *Response {
	return request.Respond()
}

// Code is a predicate to request.Respond().Code(...)
func Code(request *Request, code status.Code) *Response {
	return request.Respond().Code(code)
}

// String is a predicate to request.Respond().String(...)
func String(request *Request, str string) *Response {
	return request.Respond().String(str)
}

// Error is a predicate to request.Respond().Error(...)
func Error(request *Request, err error, code ...status.Code) *Response {
	return request.Respond().Error(err, code...)
}
