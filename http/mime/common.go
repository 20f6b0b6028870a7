package mime

import (
	"github.com/hornet-web/hornet/internal/strutil"
	"github.com/indigo-web/utils/strcomp"
)

type MIME = string

const (
	OctetStream    MIME = "application/octet-stream"
	Plain          MIME = "text/plain"
	HTML           MIME = "text/html"
	JSON           MIME = "application/json"
	FormUrlencoded MIME = "application/x-www-form-urlencoded"
	Multipart      MIME = "multipart/form-data"
)

// Complies returns whether the header value is of the MIME, ignoring parameters and case.
// Empty value is considered compatible with any MIME.
func Complies(mime MIME, with string) bool {
	with, _ = strutil.CutHeader(with)
	return len(with) == 0 || strcomp.EqualFold(with, mime)
}

// Is returns whether the header value is exactly of the MIME, ignoring parameters and case.
func Is(mime MIME, value string) bool {
	value, _ = strutil.CutHeader(value)
	return strcomp.EqualFold(value, mime)
}
