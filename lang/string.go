package lang

import "strings"

// unquote converts a string token's lexeme to its value.
// The lexer has already validated delimiters and escape sequences.
func unquote(tok Token) string {
	switch tok.Kind {
	case KindBacktick:
		return strings.TrimPrefix(strings.TrimSuffix(tok.Lexeme, "`"), "`")

	case KindStringRaw:
		if strings.HasPrefix(tok.Lexeme, "'''") {
			return dedentBlock(trimDelim(tok.Lexeme, "'''"))
		}

		return trimDelim(tok.Lexeme, "'")

	default: // KindStringCooked
		if strings.HasPrefix(tok.Lexeme, `"""`) {
			return unescape(dedentBlock(trimDelim(tok.Lexeme, `"""`)))
		}

		return unescape(trimDelim(tok.Lexeme, `"`))
	}
}

func trimDelim(s, delim string) string {
	return strings.TrimPrefix(strings.TrimSuffix(s, delim), delim)
}

// unescape processes the cooked-string escape sequences.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var b strings.Builder

	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])

			continue
		}

		i++

		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		}
	}

	return b.String()
}

// dedentBlock strips a leading newline and the longest common leading
// whitespace from every non-blank line of a block string.
func dedentBlock(s string) string {
	s = strings.TrimPrefix(s, "\n")

	lines := strings.Split(s, "\n")

	prefix := ""
	first := true

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]

		if first {
			prefix = indent
			first = false

			continue
		}

		prefix = commonPrefix(prefix, indent)
	}

	if prefix == "" {
		return s
	}

	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}

	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))

	for i := range n {
		if a[i] != b[i] {
			return a[:i]
		}
	}

	return a[:n]
}

// textValue converts a body text token's lexeme to its rendered form by
// collapsing line continuations: a backslash, the newline, and the body's
// indent prefix on the following line are removed.
func textValue(lexeme, indent string) string {
	for _, nl := range []string{"\\\r\n", "\\\n"} {
		lexeme = strings.ReplaceAll(lexeme, nl+indent, "")
	}

	return lexeme
}
