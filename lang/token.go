package lang

import "fmt"

// Kind identifies the lexical class of a [Token].
type Kind int

const (
	// KindEOF is the terminal end-of-input token. Its lexeme is empty.
	KindEOF Kind = iota
	// KindEOL is an end-of-line token ("\n" or "\r\n").
	KindEOL
	// KindWhitespace is a run of spaces and tabs, including top-level
	// line continuations (a backslash immediately before a newline).
	KindWhitespace
	// KindComment is a '#' comment extending to end of line.
	KindComment
	// KindIdentifier is a name: [A-Za-z_][A-Za-z0-9_-]*.
	KindIdentifier
	// KindStringCooked is a '"'-delimited string with escape processing,
	// or its triple-quoted block form.
	KindStringCooked
	// KindStringRaw is a "'"-delimited string without escape processing,
	// or its triple-quoted block form.
	KindStringRaw
	// KindBacktick is a backtick-delimited command substitution.
	KindBacktick
	// KindIndent marks entry into a recipe body. Its lexeme is the
	// indentation prefix shared by every line of that body.
	KindIndent
	// KindDedent marks the end of a recipe body. Its lexeme is empty.
	KindDedent
	// KindText is literal recipe body text, including any swallowed
	// line continuations.
	KindText
	// KindInterpolationStart is the "{{" opening an interpolation.
	KindInterpolationStart
	// KindInterpolationEnd is the "}}" closing an interpolation.
	KindInterpolationEnd

	KindColon       // :
	KindColonEquals // :=
	KindEquals      // =
	KindEqualsEquals
	KindBangEquals
	KindEqualsTilde // =~
	KindPlus        // +
	KindStar        // *
	KindComma       // ,
	KindLParen      // (
	KindRParen      // )
	KindLBracket    // [
	KindRBracket    // ]
	KindLBrace      // {
	KindRBrace      // }
	KindDollar      // $
)

var kindNames = map[Kind]string{
	KindEOF:                "end of input",
	KindEOL:                "end of line",
	KindWhitespace:         "whitespace",
	KindComment:            "comment",
	KindIdentifier:         "identifier",
	KindStringCooked:       "string",
	KindStringRaw:          "raw string",
	KindBacktick:           "backtick",
	KindIndent:             "indent",
	KindDedent:             "dedent",
	KindText:               "text",
	KindInterpolationStart: "'{{'",
	KindInterpolationEnd:   "'}}'",
	KindColon:              "':'",
	KindColonEquals:        "':='",
	KindEquals:             "'='",
	KindEqualsEquals:       "'=='",
	KindBangEquals:         "'!='",
	KindEqualsTilde:        "'=~'",
	KindPlus:               "'+'",
	KindStar:               "'*'",
	KindComma:              "','",
	KindLParen:             "'('",
	KindRParen:             "')'",
	KindLBracket:           "'['",
	KindRBracket:           "']'",
	KindLBrace:             "'{'",
	KindRBrace:             "'}'",
	KindDollar:             "'$'",
}

// String returns a human-readable name for the kind, suitable for
// "expected X, found Y" diagnostics.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// Position locates a token or AST node within its source file.
// Line and Column are 1-based; Offset is a 0-based byte offset.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String renders the position as "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexeme produced by the [Lexer]. Tokens are immutable
// once produced. Concatenating the lexemes of every token in stream order
// reproduces the source text byte for byte.
type Token struct {
	Kind   Kind
	Lexeme string
	Pos    Position
}
