package strutil

import "strings"

func LStripWS(str string) string {
	for i, c := range str {
		switch c {
		case ' ', '\t':
		default:
			return str[i:]
		}
	}

	return ""
}

func RStripWS(str string) string {
	for i := len(str); i > 0; i-- {
		switch str[i-1] {
		case ' ', '\t':
		default:
			return str[:i]
		}
	}

	return ""
}

// CutHeader separates the header value from its parameters, e.g. `text/html; charset=utf8`
// results in `text/html` and `charset=utf8`.
func CutHeader(header string) (value, params string) {
	value, params, _ = strings.Cut(header, ";")
	return RStripWS(LStripWS(value)), LStripWS(params)
}

// Unquote strips the surrounding double quotes. An unterminated opening quote is dropped
// as well.
func Unquote(str string) string {
	switch {
	case len(str) > 1 && str[0] == '"' && str[len(str)-1] == '"':
		return str[1 : len(str)-1]
	case len(str) > 0 && str[0] == '"':
		return str[1:]
	}

	return str
}
