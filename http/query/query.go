package query

import (
	"strings"

	"github.com/hornet-web/hornet/internal/urlencoded"
)

// Values maps a key to all of its values in the order they were defined. Duplicates are
// kept, not overridden.
type Values map[string][]string

// Value returns the first value of the key, or an empty string.
func (v Values) Value(key string) string {
	value, _ := v.Get(key)
	return value
}

// Get returns the first value of the key and whether the key was found.
func (v Values) Get(key string) (string, bool) {
	values := v[key]
	if len(values) == 0 {
		return "", false
	}

	return values[0], true
}

func (v Values) Add(key, value string) {
	v[key] = append(v[key], value)
}

func (v Values) Has(key string) bool {
	_, found := v[key]
	return found
}

// Parse splits the raw string into &-separated key=value pairs and percent-decodes both of
// them, treating + as a space. Pairs without = are skipped. A pair failing to decode is
// stored raw instead of failing the whole string.
func Parse(raw string, into Values) Values {
	if into == nil {
		into = make(Values)
	}

	for raw != "" {
		var pair string
		pair, raw, _ = strings.Cut(raw, "&")

		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}

		into.Add(decode(key), decode(value))
	}

	return into
}

func decode(str string) string {
	decoded, err := urlencoded.DecodeString(str)
	if err != nil {
		return strings.Clone(str)
	}

	return decoded
}

// SplitPath separates the request target into the path and the raw query, the question
// mark itself belonging to neither.
func SplitPath(target string) (path, rawQuery string) {
	path, rawQuery, _ = strings.Cut(target, "?")
	return path, rawQuery
}
