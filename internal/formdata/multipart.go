package formdata

import (
	"bytes"
	"os"
	"strings"

	"github.com/hornet-web/hornet/http/form"
	"github.com/hornet-web/hornet/http/status"
	"github.com/hornet-web/hornet/internal/constraints"
	"github.com/hornet-web/hornet/internal/strutil"
	"github.com/hornet-web/hornet/transport"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
)

const (
	partHeaderTerminator = "\r\n\r\n"
	finalMarker          = "--\r\n"
	crlf                 = "\r\n"
	tempFilePattern      = "hornet-upload-*"
)

type state uint8

const (
	expectHeader state = iota
	expectBody
	done
)

// Multipart decodes a multipart/form-data body part by part directly from the client. Each
// part must be consumed in two steps: NextPart reads the headers, and then either ReadValue
// or ReadFile reads the body. Calling them out of order is an error.
type Multipart struct {
	client    transport.Client
	cons      *constraints.Constraints
	tempDir   string
	opening   []byte
	delimiter []byte
	state     state
	opened    bool
	consumed  int
}

func NewMultipart(
	client transport.Client, cons *constraints.Constraints, boundary, tempDir string,
) *Multipart {
	return &Multipart{
		client:    client,
		cons:      cons,
		tempDir:   tempDir,
		opening:   []byte("--" + boundary + crlf),
		delimiter: []byte(crlf + "--" + boundary),
	}
}

// ParseMultipart decodes the whole body. The boundary is taken from the Content-Type
// value. If length isn't negative, it's the declared body length: the epilogue up to it
// is discarded. Files stored before a failure are removed.
func ParseMultipart(
	client transport.Client, cons *constraints.Constraints, contentType, tempDir string, length int,
) (form.Fields, form.Files, error) {
	boundary, err := Boundary(contentType)
	if err != nil {
		return nil, nil, err
	}

	m := NewMultipart(client, cons, boundary, tempDir)
	fields, files, err := m.Parse()
	if err != nil || length < 0 {
		return fields, files, err
	}

	if err = m.SkipEpilogue(length); err != nil {
		_ = files.Remove()
		return nil, nil, err
	}

	return fields, files, nil
}

// Boundary extracts the boundary parameter of the multipart Content-Type.
func Boundary(contentType string) (string, error) {
	_, params := strutil.CutHeader(contentType)
	boundary, found := strutil.Param(params, "boundary")
	if !found || len(boundary) == 0 {
		return "", status.ErrBadBoundary
	}

	return boundary, nil
}

// Parse alternates reading headers and bodies of the parts until the final one.
func (m *Multipart) Parse() (form.Fields, form.Files, error) {
	fields, files := make(form.Fields), make(form.Files)

	for {
		part, err := m.NextPart()
		if err != nil {
			_ = files.Remove()
			return nil, nil, err
		}

		var final bool

		if part.IsFile() {
			var file form.File
			file, final, err = m.ReadFile(part)
			if err != nil {
				_ = files.Remove()
				return nil, nil, err
			}

			files.Add(file)
		} else {
			var value string
			value, final, err = m.ReadValue(part)
			if err != nil {
				_ = files.Remove()
				return nil, nil, err
			}

			fields.Add(part.Name, value)
		}

		if final {
			return fields, files, nil
		}
	}
}

// NextPart reads the header block of the next part. The opening boundary line is consumed
// before the very first part.
func (m *Multipart) NextPart() (form.Part, error) {
	switch m.state {
	case expectBody:
		return form.Part{}, &form.FieldError{Kind: form.Internal, Message: "form part body not read"}
	case done:
		return form.Part{}, &form.FieldError{Kind: form.Internal, Message: "multipart body is already consumed"}
	}

	var buff []byte

	if !m.opened {
		for len(buff) < len(m.opening) {
			chunk, err := m.read()
			if err != nil {
				return form.Part{}, err
			}

			buff = append(buff, chunk...)
		}

		if !bytes.HasPrefix(buff, m.opening) {
			return form.Part{}, form.NewError(
				form.Malformed, "", "body does not start with "+strings.TrimSpace(uf.B2S(m.opening)),
			)
		}

		buff = buff[len(m.opening):]
		m.opened = true
	}

	maxSize := m.cons.MaxHeaderSize(m.client.BufferSize())

	for {
		if end := bytes.Index(buff, []byte(partHeaderTerminator)); end != -1 {
			if end > maxSize {
				return form.Part{}, form.NewError(form.MaxHeaderSize, "", "form part header is too large")
			}

			part, err := parsePartHeader(uf.B2S(buff[:end]))
			if err != nil {
				return form.Part{}, err
			}

			if rest := buff[end+len(partHeaderTerminator):]; len(rest) > 0 {
				m.pushback(rest)
			}

			m.state = expectBody
			return part, nil
		}

		if len(buff)-(len(partHeaderTerminator)-1) > maxSize {
			return form.Part{}, form.NewError(form.MaxHeaderSize, "", "form part header is too large")
		}

		chunk, err := m.read()
		if err != nil {
			return form.Part{}, err
		}

		buff = append(buff, chunk...)
	}
}

// ReadValue reads the body of a text part. final is set if it was the last part.
func (m *Multipart) ReadValue(part form.Part) (value string, final bool, err error) {
	if err = m.expectBody(); err != nil {
		return "", false, err
	}

	maxSize := m.cons.MaxSizeForField(part.Name, m.client.BufferSize())
	tooLarge := func() error {
		return form.NewError(form.MaxValueSize, part.Name, "value is too large")
	}

	var buff []byte

	for {
		pos := bytes.Index(buff, m.delimiter)
		switch {
		case pos == -1:
			if len(buff)-(len(m.delimiter)-1) > maxSize {
				return "", false, tooLarge()
			}
		case pos > maxSize:
			return "", false, tooLarge()
		case m.complete(buff, pos):
			value := bytes.TrimSuffix(buff[:pos], []byte(crlf))
			final, err = m.finishPart(buff[pos+len(m.delimiter):])

			return string(value), final, err
		}

		chunk, err := m.read()
		if err != nil {
			return "", false, err
		}

		buff = append(buff, chunk...)
	}
}

// ReadFile streams the body of a file part into a temporary file. Only the bytes which may
// still turn out to be a part of the delimiter are kept in memory.
func (m *Multipart) ReadFile(part form.Part) (file form.File, final bool, err error) {
	if err = m.expectBody(); err != nil {
		return form.File{}, false, err
	}

	fd, err := os.CreateTemp(m.tempDir, tempFilePattern)
	if err != nil {
		return form.File{}, false, form.InternalError(part.Name, err)
	}

	fail := func(err error) (form.File, bool, error) {
		_ = fd.Close()
		_ = os.Remove(fd.Name())

		return form.File{}, false, err
	}

	var (
		buff    []byte
		written int
		maxSize = m.cons.MaxSizeForFile(part.Name, m.client.BufferSize())
	)

	for {
		pos := bytes.Index(buff, m.delimiter)
		flush := pos

		switch {
		case pos == -1:
			if written+len(buff)-(len(m.delimiter)-1) > maxSize {
				return fail(form.NewError(form.MaxFileSize, part.Name, "file is too large"))
			}

			flush = max(len(buff)-(len(m.delimiter)-1), 0)
		case written+pos > maxSize:
			return fail(form.NewError(form.MaxFileSize, part.Name, "file is too large"))
		case m.complete(buff, pos):
			if _, err = fd.Write(buff[:pos]); err != nil {
				return fail(form.InternalError(part.Name, err))
			}

			if err = fd.Close(); err != nil {
				return fail(form.InternalError(part.Name, err))
			}

			final, err = m.finishPart(buff[pos+len(m.delimiter):])
			if err != nil {
				_ = os.Remove(fd.Name())
				return form.File{}, false, err
			}

			return form.File{
				Field:       part.Name,
				Filename:    part.Filename,
				ContentType: part.ContentType,
				Path:        fd.Name(),
				Size:        int64(written + pos),
			}, final, nil
		}

		if flush > 0 {
			if _, err = fd.Write(buff[:flush]); err != nil {
				return fail(form.InternalError(part.Name, err))
			}

			written += flush
			buff = append(buff[:0], buff[flush:]...)
		}

		chunk, err := m.read()
		if err != nil {
			return fail(err)
		}

		buff = append(buff, chunk...)
	}
}

// SkipEpilogue discards everything between the close delimiter and the end of the body
// of the given length. Bytes past it stay in the stream.
func (m *Multipart) SkipEpilogue(length int) error {
	if m.state != done {
		return &form.FieldError{Kind: form.Internal, Message: "multipart body is not consumed yet"}
	}

	if m.consumed > length {
		return form.NewError(form.Malformed, "", "body is longer than its Content-Length")
	}

	for m.consumed < length {
		chunk, err := m.read()
		if err != nil {
			return err
		}

		if rest := length - (m.consumed - len(chunk)); len(chunk) > rest {
			m.pushback(chunk[rest:])
		}
	}

	return nil
}

// Consumed returns the number of body bytes taken from the stream so far.
func (m *Multipart) Consumed() int {
	return m.consumed
}

func (m *Multipart) read() ([]byte, error) {
	chunk, err := m.client.Read()
	m.consumed += len(chunk)

	return chunk, err
}

func (m *Multipart) pushback(data []byte) {
	m.consumed -= len(data)
	m.client.Pushback(data)
}

func (m *Multipart) expectBody() error {
	if m.state != expectBody {
		return &form.FieldError{Kind: form.Internal, Message: "form part header is not read"}
	}

	return nil
}

// complete reports whether enough bytes follow the delimiter to tell the final one from
// the one preceding another part.
func (m *Multipart) complete(buff []byte, pos int) bool {
	return len(buff) >= pos+len(m.delimiter)+len(finalMarker)
}

// finishPart classifies the bytes right after the delimiter and gives back everything
// that belongs to the next part.
func (m *Multipart) finishPart(trailer []byte) (final bool, err error) {
	switch {
	case bytes.HasPrefix(trailer, []byte(finalMarker)):
		m.state = done
		trailer = trailer[len(finalMarker):]
		final = true
	case bytes.HasPrefix(trailer, []byte(crlf)):
		m.state = expectHeader
		trailer = trailer[len(crlf):]
	default:
		return false, form.NewError(form.Malformed, "", "boundary is followed by unexpected data")
	}

	if len(trailer) > 0 {
		m.pushback(trailer)
	}

	return final, nil
}

func parsePartHeader(block string) (part form.Part, err error) {
	for block != "" {
		var line string
		line, block, _ = strings.Cut(block, crlf)

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		switch key = strings.TrimSpace(key); {
		case strcomp.EqualFold(key, "Content-Disposition"):
			disposition, params := strutil.CutHeader(value)
			if !strcomp.EqualFold(disposition, "form-data") {
				return form.Part{}, form.NewError(form.Malformed, "", "not a form-data part")
			}

			for param, paramValue := range strutil.WalkParams(params) {
				switch param {
				case "name":
					part.Name = strings.Clone(paramValue)
				case "filename":
					part.Filename = strings.Clone(paramValue)
				}
			}
		case strcomp.EqualFold(key, "Content-Type"):
			part.ContentType = strings.Clone(strings.TrimSpace(value))
		}
	}

	if len(part.Name) == 0 {
		return form.Part{}, form.NewError(form.Malformed, "", "field name is missing in form part header")
	}

	return part, nil
}
