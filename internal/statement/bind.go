package statement

import (
	"fmt"
	"strings"

	"github.com/omega-orm/omega/internal/dialect"
)

// expand rewrites @name placeholders to the dialect's positional form and
// collects the bound values in placeholder order. Single-quoted literals are
// left untouched. Every placeholder must have a bound parameter.
func expand(query string, d dialect.Dialect, params map[string]any) (string, []any, error) {
	var (
		sb       strings.Builder
		args     []any
		inQuote  bool
		position int
	)

	for i := 0; i < len(query); i++ {
		ch := query[i]

		if ch == '\'' {
			inQuote = !inQuote
			sb.WriteByte(ch)
			continue
		}
		if inQuote || ch != '@' {
			sb.WriteByte(ch)
			continue
		}

		start := i + 1
		end := start
		for end < len(query) && isNameByte(query[end]) {
			end++
		}
		if end == start {
			sb.WriteByte(ch)
			continue
		}

		name := query[start:end]
		value, ok := params[name]
		if !ok {
			return "", nil, fmt.Errorf("%w: @%s", ErrMissingParameter, name)
		}

		position++
		sb.WriteString(d.Placeholder(position))
		args = append(args, value)
		i = end - 1
	}

	return sb.String(), args, nil
}

func isNameByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
