package form

import (
	"fmt"

	"github.com/hornet-web/hornet/http/status"
)

type ErrorKind uint8

const (
	Malformed ErrorKind = iota
	MaxBodySize
	MaxHeaderSize
	MaxFileSize
	MaxValueSize
	Internal
)

func (k ErrorKind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case MaxBodySize:
		return "max body size exceeded"
	case MaxHeaderSize:
		return "max header size exceeded"
	case MaxFileSize:
		return "max file size exceeded"
	case MaxValueSize:
		return "max value size exceeded"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// FieldError is a failure of decoding a form body, optionally bound to a field. Errors
// with Expose unset originate from the system itself (e.g. temp file I/O) and must not
// be shown to the client.
type FieldError struct {
	Kind    ErrorKind
	Field   string
	Message string
	Expose  bool
}

// NewError returns an exposable error of the kind.
func NewError(kind ErrorKind, field, message string) *FieldError {
	return &FieldError{
		Kind:    kind,
		Field:   field,
		Message: message,
		Expose:  true,
	}
}

// InternalError wraps a system failure. Its message is never exposed.
func InternalError(field string, err error) *FieldError {
	return &FieldError{
		Kind:    Internal,
		Field:   field,
		Message: err.Error(),
	}
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}

	return fmt.Sprintf("%s (field %q): %s", e.Kind, e.Field, e.Message)
}

// Status maps the error to the response code.
func (e *FieldError) Status() status.Code {
	switch e.Kind {
	case Malformed:
		return status.BadRequest
	case MaxBodySize, MaxHeaderSize, MaxFileSize, MaxValueSize:
		return status.RequestEntityTooLarge
	default:
		return status.InternalServerError
	}
}

// PublicMessage is the text safe to put into a response body.
func (e *FieldError) PublicMessage() string {
	if !e.Expose {
		return string(status.Text(e.Status()))
	}

	return e.Error()
}
