package headers

import (
	"iter"
	"strings"

	"github.com/indigo-web/utils/strcomp"
)

type Pair struct {
	Key, Value string
}

// Headers is an ordered multimap of header fields. Keys are compared case-insensitively
// but stored as they were received. Repeated header lines (e.g. multiple Cookie ones) are
// kept as separate pairs in the order of their appearance.
type Headers struct {
	pairs []Pair
}

// New returns an instance with pre-allocated space for n pairs.
func New(n int) *Headers {
	return &Headers{
		pairs: make([]Pair, 0, n),
	}
}

// NewFromMap returns an instance with already inserted values from the map. As maps are
// unordered, the resulting pairs are as well.
func NewFromMap(m map[string][]string) *Headers {
	h := New(len(m))

	for key, values := range m {
		h.Add(key, values...)
	}

	return h
}

// Add appends the values to the key, preserving the ones already present.
func (h *Headers) Add(key string, values ...string) *Headers {
	for _, value := range values {
		h.pairs = append(h.pairs, Pair{Key: key, Value: value})
	}

	return h
}

// Set replaces all the values of the key by the new one.
func (h *Headers) Set(key, value string) *Headers {
	h.Delete(key)
	return h.Add(key, value)
}

// Delete removes all the values of the key.
func (h *Headers) Delete(key string) {
	pairs := h.pairs[:0]

	for _, pair := range h.pairs {
		if !strcomp.EqualFold(pair.Key, key) {
			pairs = append(pairs, pair)
		}
	}

	clear(h.pairs[len(pairs):])
	h.pairs = pairs
}

// Value returns the first value of the key, or an empty string.
func (h *Headers) Value(key string) string {
	return h.ValueOr(key, "")
}

func (h *Headers) ValueOr(key, or string) string {
	value, found := h.Get(key)
	if !found {
		return or
	}

	return value
}

// Get returns the first value of the key and whether it was found.
func (h *Headers) Get(key string) (string, bool) {
	for _, pair := range h.pairs {
		if strcomp.EqualFold(pair.Key, key) {
			return pair.Value, true
		}
	}

	return "", false
}

// Values returns all the values of the key in their order. Returns nil if the key doesn't
// exist.
func (h *Headers) Values(key string) (values []string) {
	for _, pair := range h.pairs {
		if strcomp.EqualFold(pair.Key, key) {
			values = append(values, pair.Value)
		}
	}

	return values
}

// Contains reports whether any value of the key contains the token, ignoring case. Comma
// separated lists, as in `Connection: keep-alive, Upgrade`, are handled naturally.
func (h *Headers) Contains(key, token string) bool {
	token = strings.ToLower(token)

	for _, value := range h.Values(key) {
		if strings.Contains(strings.ToLower(value), token) {
			return true
		}
	}

	return false
}

func (h *Headers) Has(key string) bool {
	_, found := h.Get(key)
	return found
}

// Keys returns an iterator over unique keys, in the order of their first appearance.
func (h *Headers) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for i, pair := range h.pairs {
			if seenBefore(h.pairs[:i], pair.Key) {
				continue
			}

			if !yield(pair.Key) {
				return
			}
		}
	}
}

// Iter returns an iterator over all the pairs.
func (h *Headers) Iter() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, pair := range h.pairs {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

func (h *Headers) Len() int {
	return len(h.pairs)
}

// Clone returns a deep copy of the structure.
func (h *Headers) Clone() *Headers {
	pairs := make([]Pair, len(h.pairs))
	copy(pairs, h.pairs)

	return &Headers{pairs: pairs}
}

// Clear removes all the entries, keeping the allocated space.
func (h *Headers) Clear() {
	clear(h.pairs)
	h.pairs = h.pairs[:0]
}

func seenBefore(pairs []Pair, key string) bool {
	for _, pair := range pairs {
		if strcomp.EqualFold(pair.Key, key) {
			return true
		}
	}

	return false
}
