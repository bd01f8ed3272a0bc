package action

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// parseCall parses a call-expression action identifier of the form
//
//	path.to.handler('literal', 42, true)
//
// into the method-table path and the literal argument values. Only
// literals are accepted — quoted strings, integers, floats, booleans and
// null — keeping the expression surface closed. Anything else is a parse
// error, which the executor records as that action's failure.
func parseCall(expr string) (string, []any, error) {
	open := strings.IndexByte(expr, '(')
	if open <= 0 || !strings.HasSuffix(expr, ")") {
		return "", nil, fmt.Errorf("action: malformed call expression %q", expr)
	}

	path := strings.TrimSpace(expr[:open])
	if !validPath(path) {
		return "", nil, fmt.Errorf("action: invalid path %q in call expression", path)
	}

	inner := strings.TrimSpace(expr[open+1 : len(expr)-1])
	if inner == "" {
		return path, nil, nil
	}

	parts, err := splitArgs(inner)
	if err != nil {
		return "", nil, fmt.Errorf("action: call expression %q: %w", expr, err)
	}

	args := make([]any, 0, len(parts))
	for _, p := range parts {
		v, err := parseLiteral(p)
		if err != nil {
			return "", nil, fmt.Errorf("action: call expression %q: %w", expr, err)
		}
		args = append(args, v)
	}
	return path, args, nil
}

// validPath reports whether s is a dotted identifier path.
func validPath(s string) bool {
	if s == "" {
		return false
	}
	for _, seg := range strings.Split(s, ".") {
		if seg == "" {
			return false
		}
		for i, r := range seg {
			if r == '_' || unicode.IsLetter(r) {
				continue
			}
			if i > 0 && unicode.IsDigit(r) {
				continue
			}
			return false
		}
	}
	return true
}

// splitArgs splits a comma-separated argument list, honoring quotes.
func splitArgs(s string) ([]string, error) {
	var (
		parts []string
		buf   strings.Builder
		quote byte
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' && i+1 < len(s) {
				buf.WriteByte(c)
				i++
				buf.WriteByte(s[i])
				continue
			}
			if c == quote {
				quote = 0
			}
			buf.WriteByte(c)
		case c == '\'' || c == '"':
			quote = c
			buf.WriteByte(c)
		case c == ',':
			parts = append(parts, strings.TrimSpace(buf.String()))
			buf.Reset()
		default:
			buf.WriteByte(c)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated string literal")
	}
	parts = append(parts, strings.TrimSpace(buf.String()))
	return parts, nil
}

// parseLiteral converts one argument token to its Go value.
func parseLiteral(tok string) (any, error) {
	if tok == "" {
		return nil, fmt.Errorf("empty argument")
	}

	switch tok {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null", "nil":
		return nil, nil
	}

	if len(tok) >= 2 {
		if (tok[0] == '\'' && tok[len(tok)-1] == '\'') ||
			(tok[0] == '"' && tok[len(tok)-1] == '"') {
			return unescape(tok[1 : len(tok)-1]), nil
		}
	}

	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f, nil
	}

	return nil, fmt.Errorf("unsupported literal %q", tok)
}

// unescape resolves backslash escapes inside a string literal.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var buf strings.Builder
	buf.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		buf.WriteByte(s[i])
	}
	return buf.String()
}
