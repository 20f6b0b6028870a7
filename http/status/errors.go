package status

import "errors"

// HTTPError is an error that knows which response it must result in. All the errors
// declared here are safe to be shown to the client.
type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

// CodeOf extracts the status code carried by the error. Errors that don't carry any
// are considered internal.
func CodeOf(err error) Code {
	var coded interface{ Status() Code }
	if errors.As(err, &coded) {
		return coded.Status()
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	return InternalServerError
}

var (
	ErrBadRequest           = NewError(BadRequest, "bad request")
	ErrURLDecoding          = NewError(BadRequest, "invalid urlencoded sequence")
	ErrBadBoundary          = NewError(BadRequest, "Boundary missing.")
	ErrLengthRequired       = NewError(LengthRequired, "Content-Length header is missing.")
	ErrBadContentLength     = NewError(BadRequest, "Invalid content length header.")
	ErrBodyTooLarge         = NewError(RequestEntityTooLarge, "request body is too large")
	ErrHeaderFieldsTooLarge = NewError(RequestHeaderFieldsTooLarge, "Request header too large.")
	ErrTooManyHeaders       = NewError(RequestHeaderFieldsTooLarge, "too many headers")
	ErrUnsupportedProtocol  = NewError(HTTPVersionNotSupported, "HTTP version not supported")
	ErrInternalServerError  = NewError(InternalServerError, "internal server error")

	// ErrUnusableRequest means the head was received completely, but misses either a method,
	// a path or a protocol. Such connections are dropped without any response.
	ErrUnusableRequest = errors.New("request head is missing method, path or protocol")
)
