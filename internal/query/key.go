package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Key identifies a cached read: a resource name followed by its parameters,
// e.g. ["colors"], ["color", "5"], ["product-variants", "7", "2"].
type Key []string

// NewKey normalizes parts into a Key. Integers and their decimal string form
// produce the same key.
func NewKey(parts ...any) Key {
	k := make(Key, 0, len(parts))
	for _, p := range parts {
		k = append(k, normalize(p))
	}
	return k
}

func normalize(part any) string {
	switch v := part.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// String returns the canonical form used as the map key.
func (k Key) String() string {
	escaped := make([]string, len(k))
	for i, p := range k {
		escaped[i] = strings.ReplaceAll(p, "/", `\/`)
	}
	return strings.Join(escaped, "/")
}

// HasPrefix reports whether every element of prefix matches the head of k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Equal reports whether both keys address the same entry.
func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.HasPrefix(other)
}
