package parser

import "strings"

// SmartSplit splits a declaration argument list on top-level commas. A comma is
// top-level when brace depth is zero and it is outside a quoted string. A quote
// not preceded by a backslash opens a string that only the same quote character
// closes; braces inside strings are ignored. Tokens are trimmed and segments
// that trim to empty are dropped, so "a,,b" yields two tokens.
func SmartSplit(args string) []string {
	var (
		parts   []string
		current strings.Builder
		depth   int
		quote   byte
		prev    byte
	)

	flush := func() {
		if tok := strings.TrimSpace(current.String()); tok != "" {
			parts = append(parts, tok)
		}
		current.Reset()
	}

	for i := 0; i < len(args); i++ {
		c := args[i]

		switch {
		case (c == '"' || c == '\'') && prev != '\\':
			if quote == 0 {
				quote = c
			} else if c == quote {
				quote = 0
			}
		case quote == 0 && c == '{':
			depth++
		case quote == 0 && c == '}':
			depth--
		}

		if c == ',' && quote == 0 && depth == 0 {
			flush()
		} else {
			current.WriteByte(c)
		}
		prev = c
	}
	flush()

	return parts
}

// splitEnum parses a "{a, b, c}" list. Commas are split naively, so an option
// containing a nested brace list is not supported. Anything not wrapped in
// braces yields no options.
func splitEnum(token string) []string {
	trimmed := strings.TrimSpace(token)
	if len(trimmed) < 2 || trimmed[0] != '{' || trimmed[len(trimmed)-1] != '}' {
		return nil
	}

	var out []string
	for _, part := range strings.Split(trimmed[1:len(trimmed)-1], ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// unquote strips one matching pair of surrounding single or double quotes
func unquote(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1], true
		}
	}
	return s, false
}
