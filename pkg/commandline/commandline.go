// Package commandline converts between a raw editable command line and a
// sequence of discrete arguments
package commandline

import "strings"

// Parse splits a command line into separate arguments using the built-in
// escaping rules.
//
// An empty line produces no arguments; any other line produces at least one.
// Unescaped, unquoted spaces separate arguments and repeated separators are
// collapsed. Single and double quotes toggle independently; inside a quote
// the other quote character is taken literally. A backslash escapes the
// character that follows it; a backslash at the end of the line is kept as a
// literal backslash.
func Parse(line string) []string {
	if line == "" {
		return nil
	}

	var items []string
	var current strings.Builder
	quotedDouble := false
	quotedSingle := false
	escaped := false

	for i := 0; i < len(line); i++ {
		c := line[i]

		switch c {
		case ' ':
			if quotedDouble || quotedSingle {
				if escaped {
					current.WriteByte('\\')
					escaped = false
				}
				current.WriteByte(' ')
			} else if escaped {
				current.WriteByte(' ')
				escaped = false
			} else if current.Len() > 0 {
				items = append(items, current.String())
				current.Reset()
			}

		case '"':
			if escaped || quotedSingle {
				current.WriteByte('"')
				escaped = false
			} else {
				quotedDouble = !quotedDouble
			}

		case '\'':
			if escaped || quotedDouble {
				current.WriteByte('\'')
				escaped = false
			} else {
				quotedSingle = !quotedSingle
			}

		case '\\':
			if escaped {
				current.WriteByte('\\')
				escaped = false
			} else {
				escaped = true
			}

		default:
			if escaped {
				current.WriteByte('\\')
				escaped = false
			}
			current.WriteByte(c)
		}
	}

	if escaped {
		current.WriteByte('\\')
	}

	return append(items, current.String())
}

// Format joins arguments into a single command line, escaping spaces, quotes
// and backslashes so that Parse reproduces the same arguments. The result is
// canonical: formatting the parsed result of a formatted line is stable.
func Format(items []string) string {
	var line strings.Builder

	for _, item := range items {
		if line.Len() > 0 {
			line.WriteByte(' ')
		}

		for i := 0; i < len(item); i++ {
			c := item[i]

			switch c {
			case ' ', '"', '\'', '\\':
				line.WriteByte('\\')
			}

			line.WriteByte(c)
		}
	}

	return line.String()
}
