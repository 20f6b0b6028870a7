package strutil

import (
	"iter"
	"strings"
)

const paramSeparators = ";:, \t"

// WalkParams iterates over `;`-separated key=value parameters of a header value. Values
// may be quoted, in which case they can contain separators and may be followed by any of
// `;`, `:`, `,` or whitespace. Keys are lower-cased and values unquoted. Parameters
// without = are skipped.
func WalkParams(params string) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for params = LStripWS(params); len(params) > 0; params = LStripWS(params) {
			eq := strings.IndexAny(params, "=;")
			if eq == -1 {
				return
			}

			if params[eq] == ';' {
				params = params[eq+1:]
				continue
			}

			key := strings.ToLower(RStripWS(params[:eq]))
			params = LStripWS(params[eq+1:])

			var value string
			if len(params) > 0 && params[0] == '"' {
				end := strings.IndexByte(params[1:], '"')
				if end == -1 {
					value, params = Unquote(params), ""
				} else {
					value, params = Unquote(params[:end+2]), params[end+2:]
				}

				// a quoted value is self-delimiting, so any separator may follow it
				params = strings.TrimLeft(params, paramSeparators)
			} else {
				value, params, _ = strings.Cut(params, ";")
				value = RStripWS(value)
			}

			if !yield(key, value) {
				return
			}
		}
	}
}

// Param returns the value of the parameter by its key.
func Param(params, key string) (value string, found bool) {
	for k, v := range WalkParams(params) {
		if k == key {
			return v, true
		}
	}

	return "", false
}
