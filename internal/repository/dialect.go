package repository

import (
	"strconv"
	"strings"
)

// dialect captures the differences between the supported SQL backends.
type dialect struct {
	name   string
	driver string
	schema []string

	// returning is true when INSERT ... RETURNING id is supported.
	returning bool

	// numbered is true for $1-style placeholders.
	numbered bool

	// classify maps a driver error onto a repository sentinel, or returns nil.
	classify func(err error) error
}

// rebind rewrites ? placeholders for dialects that number them.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
