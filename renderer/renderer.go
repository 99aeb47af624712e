// Package renderer formats engine query results as markdown for the CLI.
package renderer

import (
	"fmt"
	"strings"
)

// builder is a small helper around strings.Builder for markdown output.
type builder struct {
	*strings.Builder
}

// Printf formats according to a format specifier and writes to the buffer.
func (b builder) Printf(format string, args ...any) {
	fmt.Fprintf(b, format, args...)
}

func newBuilder() builder { return builder{&strings.Builder{}} }
