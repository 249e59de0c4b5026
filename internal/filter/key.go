package filter

import (
	"net/url"
	"sort"
	"strings"
)

// Filters is the set of query/stream parameters sent to the collector,
// e.g. {"type": "error", "app": "checkout"}.
type Filters map[string]string

// Key returns the canonical cache key for f: empty values omitted, keys
// sorted, "k=v" pairs joined with "&". Two Filters maps holding the same
// non-empty pairs always produce the same key regardless of construction
// order.
func Key(f Filters) string {
	if len(f) == 0 {
		return ""
	}
	keys := make([]string, 0, len(f))
	for k, v := range f {
		if k == "" || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(f[k])
	}
	return b.String()
}

// Values returns f as url.Values with empty entries omitted, for
// URL-encoding onto query and stream endpoints.
func Values(f Filters) url.Values {
	vals := url.Values{}
	for k, v := range f {
		if k == "" || v == "" {
			continue
		}
		vals.Set(k, v)
	}
	return vals
}
