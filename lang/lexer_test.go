package lang

import (
	"errors"
	"strings"
	"testing"
)

// lexRoundTrip asserts that concatenating every token lexeme reproduces
// the source byte for byte.
func lexRoundTrip(t *testing.T, src string) []Token {
	t.Helper()

	toks, err := Tokens(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	var b strings.Builder

	for _, tok := range toks {
		b.WriteString(tok.Lexeme)
	}

	if got := b.String(); got != src {
		t.Errorf("round trip mismatch:\nsource: %q\njoined: %q", src, got)
	}

	return toks
}

func TestLexer_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "empty",
			input: "",
		},
		{
			name:  "assignment",
			input: "version := \"1.0\"\n",
		},
		{
			name:  "recipe with body",
			input: "build: deps\n  echo building\n",
		},
		{
			name:  "interpolation",
			input: "greet name:\n  echo {{ name }}\n",
		},
		{
			name:  "tab indent",
			input: "build:\n\tcc -o out main.c\n",
		},
		{
			name:  "comment and blank lines",
			input: "# a comment\n\nbuild:\n  echo hi\n",
		},
		{
			name:  "no trailing newline",
			input: "build:\n  echo hi",
		},
		{
			name:  "crlf line endings",
			input: "build:\r\n  echo hi\r\n",
		},
		{
			name:  "raw string with newline",
			input: "banner := 'line one\nline two'\n",
		},
		{
			name:  "triple quoted block",
			input: "text := \"\"\"\n  hello\n  world\n\"\"\"\n",
		},
		{
			name:  "backtick substitution",
			input: "rev := `git rev-parse HEAD`\n",
		},
		{
			name:  "settings and alias",
			input: "set shell := [\"bash\", \"-c\"]\nalias b := build\nbuild:\n  echo ok\n",
		},
		{
			name:  "attributes",
			input: "[no-cd, private]\n_setup:\n  echo setup\n",
		},
		{
			name:  "conditional in interpolation",
			input: "show:\n  echo {{ if os() == \"linux\" { \"l\" } else { \"o\" } }}\n",
		},
		{
			name:  "line continuation in body",
			input: "build:\n  echo one \\\n  two\n",
		},
		{
			name:  "top level continuation",
			input: "build: alpha \\\n  beta\n  echo hi\n",
		},
		{
			name:  "shebang body",
			input: "stats:\n  #!/bin/sh\n  echo hi\n",
		},
		{
			name:  "blank line inside body",
			input: "build:\n  echo one\n\n  echo two\n",
		},
		{
			name:  "whitespace only blank line",
			input: "build:\n  echo one\n   \n  echo two\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lexRoundTrip(t, tt.input)
		})
	}
}

func TestLexer_Kinds(t *testing.T) {
	toks := lexRoundTrip(t, "greet name:\n  echo {{ name }}\n")

	want := []Kind{
		KindIdentifier, KindWhitespace, KindIdentifier, KindColon, KindEOL,
		KindIndent, KindText, KindInterpolationStart, KindWhitespace,
		KindIdentifier, KindWhitespace, KindInterpolationEnd, KindEOL,
		KindDedent, KindEOF,
	}

	if len(toks) != len(want) {
		t.Fatalf("token count: got %d, want %d: %v", len(toks), len(want), toks)
	}

	for i, kind := range want {
		if toks[i].Kind != kind {
			t.Errorf("token %d: got %v (%q), want %v",
				i, toks[i].Kind, toks[i].Lexeme, kind)
		}
	}
}

func TestLexer_Positions(t *testing.T) {
	toks := lexRoundTrip(t, "a := \"x\"\nbuild:\n  echo\n")

	// The recipe header identifier starts line 2.
	var build Token

	for _, tok := range toks {
		if tok.Kind == KindIdentifier && tok.Lexeme == "build" {
			build = tok
		}
	}

	if build.Pos.Line != 2 || build.Pos.Column != 1 {
		t.Errorf("position: got %v, want 2:1", build.Pos)
	}
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{
			name:  "unterminated cooked string",
			input: "x := \"abc\n",
			want:  ErrUnterminatedString,
		},
		{
			name:  "unterminated raw string",
			input: "x := 'abc",
			want:  ErrUnterminatedString,
		},
		{
			name:  "unterminated backtick",
			input: "x := `abc",
			want:  ErrUnterminatedString,
		},
		{
			name:  "invalid escape",
			input: `x := "a\qb"`,
			want:  ErrInvalidEscape,
		},
		{
			name:  "unterminated interpolation",
			input: "build:\n  echo {{ name\n",
			want:  ErrUnterminatedInterp,
		},
		{
			name:  "interpolation open at eof",
			input: "build:\n  echo {{ name",
			want:  ErrUnterminatedInterp,
		},
		{
			name:  "indent without header",
			input: "x := \"1\"\n  echo hi\n",
			want:  ErrUnexpectedIndent,
		},
		{
			name:  "inconsistent body indent",
			input: "build:\n  echo one\n\techo two\n",
			want:  ErrInconsistentIndent,
		},
		{
			name:  "invalid character",
			input: "x := ^\n",
			want:  ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokens(tt.input)
			if err == nil {
				t.Fatal("expected error, got none")
			}

			if !errors.Is(err, ErrLex) {
				t.Errorf("error %v does not wrap ErrLex", err)
			}

			if !errors.Is(err, tt.want) {
				t.Errorf("error %v does not wrap %v", err, tt.want)
			}
		})
	}
}

// Deeper indentation than the body prefix stays in the text.
func TestLexer_DeepIndentIsText(t *testing.T) {
	toks := lexRoundTrip(t, "build:\n  if true; then\n    echo hi\n  fi\n")

	var texts []string

	for _, tok := range toks {
		if tok.Kind == KindText {
			texts = append(texts, tok.Lexeme)
		}
	}

	want := []string{"if true; then", "  echo hi", "fi"}

	if len(texts) != len(want) {
		t.Fatalf("text tokens: got %v, want %v", texts, want)
	}

	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("text %d: got %q, want %q", i, texts[i], want[i])
		}
	}
}

// A comment line may be indented at top level without starting a body.
func TestLexer_IndentedComment(t *testing.T) {
	lexRoundTrip(t, "x := \"1\"\n  # indented comment\ny := \"2\"\n")
}

func FuzzLexer_RoundTrip(f *testing.F) {
	seeds := []string{
		"",
		"build:\n  echo hi\n",
		"x := \"a\" + 'b' + `c`\n",
		"greet name='world':\n  echo {{ name }}\n",
		"[private]\n_x:\n  true\n",
		"set shell := [\"sh\", \"-c\"]\n",
	}

	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, src string) {
		toks, err := Tokens(src)
		if err != nil {
			return
		}

		var b strings.Builder

		for _, tok := range toks {
			b.WriteString(tok.Lexeme)
		}

		if b.String() != src {
			t.Errorf("round trip mismatch:\nsource: %q\njoined: %q",
				src, b.String())
		}
	})
}
