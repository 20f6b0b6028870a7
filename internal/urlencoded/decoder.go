package urlencoded

import (
	"bytes"

	"github.com/hornet-web/hornet/http/status"
	"github.com/hornet-web/hornet/internal/hexconv"
	"github.com/indigo-web/utils/uf"
)

// Decode decodes percent-encoded sequences and pluses (as spaces) from src, appending the
// result to dst. If there's nothing to decode, src is returned as is and dst stays
// untouched. dst can be src[:0] in order to decode "into itself".
func Decode(src, dst []byte) (decoded, buffer []byte, err error) {
	next := bytes.IndexAny(src, "%+")
	if next == -1 {
		return src, dst, nil
	}

	head := len(dst)

	for next != -1 {
		dst = append(dst, src[:next]...)

		if src[next] == '+' {
			dst = append(dst, ' ')
			src = src[next+1:]
		} else {
			if next >= len(src)-2 {
				return nil, dst[:head], status.ErrURLDecoding
			}

			a, b := hexconv.Halfbyte[src[next+1]], hexconv.Halfbyte[src[next+2]]
			if a|b > 0x0f {
				return nil, dst[:head], status.ErrURLDecoding
			}

			dst = append(dst, (a<<4)|b)
			src = src[next+3:]
		}

		next = bytes.IndexAny(src, "%+")
	}

	dst = append(dst, src...)
	return dst[head:], dst, nil
}

// DecodeString is the same as Decode, but the result is always a newly allocated string,
// independent of the source.
func DecodeString(src string) (string, error) {
	decoded, _, err := Decode(uf.S2B(src), nil)
	if err != nil {
		return "", err
	}

	return string(decoded), nil
}
