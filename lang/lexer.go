package lang

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

// lexState tracks which sublanguage the lexer is currently reading.
type lexState int

const (
	// stateNormal lexes top-level declarations and expressions.
	stateNormal lexState = iota
	// stateBody lexes indented recipe body text.
	stateBody
	// stateInterp lexes the expression inside a body interpolation.
	stateInterp
)

// Lexer converts source text into a lazily produced sequence of tokens.
// It is single use: restart by constructing a new Lexer over the same text.
type Lexer struct {
	input string
	pos   int // byte offset of next unread byte
	line  int // 1-based line of next unread byte
	col   int // 1-based column (runes) of next unread byte

	state      lexState
	bol        bool   // at beginning of line
	expectBody bool   // a recipe header line was seen; indentation starts its body
	indent     string // indentation prefix of the current recipe body
	braceDepth int    // open conditional braces inside an interpolation
	eof        bool   // terminal EOF token was emitted
}

// NewLexer returns a Lexer over the given source text.
func NewLexer(src string) *Lexer {
	return &Lexer{
		input: src,
		line:  1,
		col:   1,
		bol:   true,
	}
}

// Tokens lexes the entire source and returns every token in order,
// ending with [KindEOF]. It is a convenience wrapper around [Lexer.Next].
func Tokens(src string) ([]Token, error) {
	lex := NewLexer(src)

	var toks []Token

	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}

		toks = append(toks, tok)

		if tok.Kind == KindEOF {
			return toks, nil
		}
	}
}

// Next returns the next token in the stream. After the input is exhausted
// it returns the [KindEOF] token indefinitely. Lex errors are positioned
// and permanent; Next does not recover.
func (l *Lexer) Next() (Token, error) {
	if l.pos >= len(l.input) {
		switch {
		case l.state == stateInterp:
			return Token{}, ErrLex.Wrap(ErrUnterminatedInterp.At(l.position()))
		case l.state == stateBody:
			l.state = stateNormal

			return l.emptyToken(KindDedent), nil
		case !l.eof:
			l.eof = true

			return l.emptyToken(KindEOF), nil
		default:
			return l.emptyToken(KindEOF), nil
		}
	}

	switch l.state {
	case stateBody:
		return l.lexBody()
	case stateInterp:
		return l.lexInterp()
	default:
		return l.lexNormal()
	}
}

// position returns the position of the next unread byte.
func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// emptyToken builds a zero-width token at the current position.
func (l *Lexer) emptyToken(kind Kind) Token {
	return Token{Kind: kind, Pos: l.position()}
}

// token builds a token spanning from start to the current position.
func (l *Lexer) token(kind Kind, start Position) Token {
	return Token{
		Kind:   kind,
		Lexeme: l.input[start.Offset:l.pos],
		Pos:    start,
	}
}

// peek returns the byte at offset n past the next unread byte,
// or 0 at end of input.
func (l *Lexer) peek(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}

	return l.input[l.pos+n]
}

// advance consumes one rune, updating line and column counters.
func (l *Lexer) advance() {
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

// advanceN consumes n bytes of known-ASCII input.
func (l *Lexer) advanceN(n int) {
	for range n {
		l.advance()
	}
}

// leadingWhitespace returns the run of spaces and tabs at the current
// position without consuming it.
func (l *Lexer) leadingWhitespace() string {
	end := l.pos
	for end < len(l.input) && (l.input[end] == ' ' || l.input[end] == '\t') {
		end++
	}

	return l.input[l.pos:end]
}

// blankAfter reports whether only a line ending or end of input follows
// the given byte offset.
func (l *Lexer) blankAfter(off int) bool {
	if off >= len(l.input) {
		return true
	}

	c := l.input[off]

	return c == '\n' || (c == '\r' && off+1 < len(l.input) && l.input[off+1] == '\n')
}

func (l *Lexer) lexNormal() (Token, error) {
	start := l.position()
	c := l.input[l.pos]

	// Leading whitespace on a fresh line starts a recipe body when the
	// preceding declaration was a recipe header; blank lines pass through
	// as plain whitespace anywhere.
	if l.bol && (c == ' ' || c == '\t') {
		ws := l.leadingWhitespace()

		if l.blankAfter(l.pos + len(ws)) {
			l.advanceN(len(ws))
			l.bol = false

			return l.token(KindWhitespace, start), nil
		}

		if !l.expectBody {
			if l.peek(len(ws)) == '#' {
				l.advanceN(len(ws))
				l.bol = false

				return l.token(KindWhitespace, start), nil
			}

			return Token{}, ErrLex.Wrap(
				ErrUnexpectedIndent.At(start).
					With(slog.String("indent", quoteWhitespace(ws))),
			)
		}

		l.advanceN(len(ws))
		l.indent = ws
		l.state = stateBody
		l.bol = false
		l.expectBody = false

		return l.token(KindIndent, start), nil
	}

	if l.bol && c != '\n' && !(c == '\r' && l.peek(1) == '\n') {
		// A new top-level declaration begins; any pending recipe header
		// no longer accepts a body.
		l.expectBody = false
	}

	l.bol = false

	switch {
	case c == '\n' || (c == '\r' && l.peek(1) == '\n'):
		return l.lexEOL(), nil

	case c == ' ' || c == '\t':
		for l.pos < len(l.input) {
			if b := l.input[l.pos]; b != ' ' && b != '\t' {
				break
			}

			l.advance()
		}

		return l.token(KindWhitespace, start), nil

	case c == '\\' && (l.peek(1) == '\n' || (l.peek(1) == '\r' && l.peek(2) == '\n')):
		// Top-level line continuation lexes as whitespace so multi-line
		// declarations parse as one logical line.
		l.advance() // backslash
		if l.input[l.pos] == '\r' {
			l.advance()
		}

		l.advance() // newline

		return l.token(KindWhitespace, start), nil

	case c == '#':
		for l.pos < len(l.input) && l.input[l.pos] != '\n' {
			if l.input[l.pos] == '\r' && l.peek(1) == '\n' {
				break
			}

			l.advance()
		}

		return l.token(KindComment, start), nil

	case identStart(c):
		return l.lexIdentifier(), nil

	case c == '"' || c == '\'' || c == '`':
		return l.lexString()
	}

	return l.lexOperator()
}

func (l *Lexer) lexEOL() Token {
	start := l.position()

	if l.input[l.pos] == '\r' {
		l.advance()
	}

	l.advance()
	l.bol = true

	return l.token(KindEOL, start)
}

func identStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func identPart(c byte) bool {
	return identStart(c) || c == '-' || ('0' <= c && c <= '9')
}

func (l *Lexer) lexIdentifier() Token {
	start := l.position()

	for l.pos < len(l.input) && identPart(l.input[l.pos]) {
		l.advance()
	}

	return l.token(KindIdentifier, start)
}

// lexOperator consumes a punctuation token, or fails with an invalid
// token error.
func (l *Lexer) lexOperator() (Token, error) {
	start := l.position()
	c := l.input[l.pos]

	single := map[byte]Kind{
		'+': KindPlus,
		'*': KindStar,
		',': KindComma,
		'(': KindLParen,
		')': KindRParen,
		'[': KindLBracket,
		']': KindRBracket,
		'{': KindLBrace,
		'}': KindRBrace,
		'$': KindDollar,
	}

	switch c {
	case ':':
		l.advance()

		if l.peekIs('=') {
			l.advance()

			return l.token(KindColonEquals, start), nil
		}

		// A bare colon at top level can only belong to a recipe header,
		// so indentation on a following line starts that recipe's body.
		if l.state == stateNormal {
			l.expectBody = true
		}

		return l.token(KindColon, start), nil

	case '=':
		l.advance()

		switch {
		case l.peekIs('='):
			l.advance()

			return l.token(KindEqualsEquals, start), nil
		case l.peekIs('~'):
			l.advance()

			return l.token(KindEqualsTilde, start), nil
		default:
			return l.token(KindEquals, start), nil
		}

	case '!':
		if l.peek(1) == '=' {
			l.advanceN(2)

			return l.token(KindBangEquals, start), nil
		}
	}

	if kind, ok := single[c]; ok {
		l.advance()

		return l.token(kind, start), nil
	}

	return Token{}, ErrLex.Wrap(
		ErrInvalidToken.At(start).
			With(slog.String("char", string(rune(c)))),
	)
}

// peekIs reports whether the next unread byte equals c.
func (l *Lexer) peekIs(c byte) bool {
	return l.pos < len(l.input) && l.input[l.pos] == c
}

func (l *Lexer) lexBody() (Token, error) {
	if l.bol {
		return l.lexBodyLineStart()
	}

	start := l.position()
	c := l.input[l.pos]

	if c == '\n' || (c == '\r' && l.peek(1) == '\n') {
		return l.lexEOL(), nil
	}

	if strings.HasPrefix(l.input[l.pos:], "{{") {
		l.advanceN(2)
		l.state = stateInterp
		l.braceDepth = 0

		return l.token(KindInterpolationStart, start), nil
	}

	return l.lexText()
}

// lexBodyLineStart classifies the indentation of a new line inside a
// recipe body: blank lines pass through, a matching indent prefix lexes
// as whitespace, no indentation dedents, and anything else is an
// inconsistency error.
func (l *Lexer) lexBodyLineStart() (Token, error) {
	start := l.position()
	ws := l.leadingWhitespace()

	switch {
	case l.blankAfter(l.pos + len(ws)):
		if ws == "" {
			return l.lexEOL(), nil
		}

		l.advanceN(len(ws))
		l.bol = false

		return l.token(KindWhitespace, start), nil

	case ws == "":
		l.state = stateNormal

		return l.emptyToken(KindDedent), nil

	case strings.HasPrefix(ws, l.indent):
		// Whitespace beyond the common indent belongs to the body text.
		l.advanceN(len(l.indent))
		l.bol = false

		return l.token(KindWhitespace, start), nil

	default:
		return Token{}, ErrLex.Wrap(
			ErrInconsistentIndent.At(start).
				With(
					slog.String("expected", quoteWhitespace(l.indent)),
					slog.String("found", quoteWhitespace(ws)),
				),
		)
	}
}

// lexText consumes literal body text up to an interpolation, end of line,
// or end of input. A backslash immediately before a newline swallows the
// newline and the following indent so continued lines form one token.
func (l *Lexer) lexText() (Token, error) {
	start := l.position()

	for l.pos < len(l.input) {
		c := l.input[l.pos]

		if c == '\n' || (c == '\r' && l.peek(1) == '\n') {
			break
		}

		if strings.HasPrefix(l.input[l.pos:], "{{") {
			break
		}

		if c == '\\' && (l.peek(1) == '\n' || (l.peek(1) == '\r' && l.peek(2) == '\n')) {
			l.advance() // backslash
			if l.input[l.pos] == '\r' {
				l.advance()
			}

			l.advance() // newline

			if !strings.HasPrefix(l.input[l.pos:], l.indent) {
				return Token{}, ErrLex.Wrap(
					ErrInconsistentIndent.At(l.position()).
						With(slog.String("expected", quoteWhitespace(l.indent))),
				)
			}

			l.advanceN(len(l.indent))

			continue
		}

		l.advance()
	}

	return l.token(KindText, start), nil
}

func (l *Lexer) lexInterp() (Token, error) {
	start := l.position()
	c := l.input[l.pos]

	switch {
	case c == '\n' || c == '\r':
		return Token{}, ErrLex.Wrap(ErrUnterminatedInterp.At(start))

	case c == ' ' || c == '\t':
		for l.pos < len(l.input) {
			if b := l.input[l.pos]; b != ' ' && b != '\t' {
				break
			}

			l.advance()
		}

		return l.token(KindWhitespace, start), nil

	case c == '{':
		l.advance()
		l.braceDepth++

		return l.token(KindLBrace, start), nil

	case c == '}':
		if l.braceDepth > 0 {
			l.advance()
			l.braceDepth--

			return l.token(KindRBrace, start), nil
		}

		if l.peek(1) == '}' {
			l.advanceN(2)
			l.state = stateBody

			return l.token(KindInterpolationEnd, start), nil
		}

		return Token{}, ErrLex.Wrap(
			ErrInvalidToken.At(start).With(slog.String("char", "}")),
		)

	case identStart(c):
		return l.lexIdentifier(), nil

	case c == '"' || c == '\'' || c == '`':
		return l.lexString()
	}

	return l.lexOperator()
}

// lexString consumes one of the four string styles: cooked "...",
// raw '...', backtick command substitution, or a triple-quoted block form
// of the cooked and raw styles.
func (l *Lexer) lexString() (Token, error) {
	start := l.position()
	quote := l.input[l.pos]

	kind := KindStringCooked

	switch quote {
	case '\'':
		kind = KindStringRaw
	case '`':
		kind = KindBacktick
	}

	delim := string(quote)
	if quote != '`' && strings.HasPrefix(l.input[l.pos:], strings.Repeat(delim, 3)) {
		delim = strings.Repeat(delim, 3)
	}

	l.advanceN(len(delim))

	for l.pos < len(l.input) {
		if strings.HasPrefix(l.input[l.pos:], delim) {
			l.advanceN(len(delim))

			return l.token(kind, start), nil
		}

		c := l.input[l.pos]

		// Escape validation applies only to the cooked styles.
		if kind == KindStringCooked && c == '\\' {
			esc := l.peek(1)
			if !validEscape(esc) {
				return Token{}, ErrLex.Wrap(
					ErrInvalidEscape.At(l.position()).
						With(slog.String("escape", `\`+string(rune(esc)))),
				)
			}

			l.advanceN(2)

			continue
		}

		// Single-line styles terminate at a raw newline.
		if len(delim) == 1 && quote != '`' && quote != '\'' && c == '\n' {
			break
		}

		l.advance()
	}

	return Token{}, ErrLex.Wrap(
		ErrUnterminatedString.At(start).
			With(slog.String("delimiter", delim)),
	)
}

// validEscape reports whether c is a recognized cooked-string escape.
func validEscape(c byte) bool {
	switch c {
	case 'n', 't', 'r', '0', '"', '\\':
		return true
	default:
		return false
	}
}

// quoteWhitespace renders a whitespace string visibly for diagnostics.
func quoteWhitespace(s string) string {
	s = strings.ReplaceAll(s, " ", "·")

	return strings.ReplaceAll(s, "\t", "»")
}
