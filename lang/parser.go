package lang

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
)

// ParseReader parses a recipe file from an io.Reader.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrLoad.Wrap(ErrReadInput.Wrap(err))
	}

	return Parse(ctx, string(data), opts...)
}

// Parse parses a recipe file from a string and returns the AST root.
// Import declarations are recorded but not resolved; use [Load] to parse
// a file together with its imports.
//
// Structural syntax errors fail fast. Duplicate recipe, alias, and
// assignment names are accumulated across the whole file and reported
// together.
func Parse(ctx context.Context, src string, opts ...Option) (*File, error) {
	file := new(File)

	for _, opt := range opts {
		opt(file)
	}

	p := &parser{
		lex:    NewLexer(src),
		file:   file,
		logger: file.logger,
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	if err := p.parseFile(); err != nil {
		return nil, err
	}

	if len(p.duplicates) > 0 {
		return nil, ErrParse.Wrap(errors.Join(p.duplicates...))
	}

	file.buildIndex()

	p.logger.TraceContext(ctx, "parse complete",
		slog.Int("recipe_count", len(file.Recipes)),
		slog.Int("assignment_count", len(file.Assignments)),
	)

	return file, nil
}

// parser holds the parser state: a single token of context over the lexer
// plus a small pushback buffer for bounded lookahead.
type parser struct {
	lex  *Lexer
	file *File

	tok    Token   // current token
	ahead  []Token // pushback buffer, consumed before the lexer
	indent string  // indent of the recipe body being parsed

	duplicates []error // accumulated duplicate-name errors

	// Doc comment tracking: a comment on the line directly above a recipe
	// header (or its attribute lines) becomes the recipe's doc string.
	doc     string
	docLine int

	logger interface {
		TraceContext(context.Context, string, ...slog.Attr)
	}
}

// advance steps to the next token.
func (p *parser) advance() error {
	if n := len(p.ahead); n > 0 {
		p.tok = p.ahead[0]
		p.ahead = p.ahead[1:]

		return nil
	}

	tok, err := p.lex.Next()
	if err != nil {
		return err
	}

	p.tok = tok

	return nil
}

// peek returns the token n positions ahead of the current token without
// consuming anything. peek(0) is the token that advance would make
// current.
func (p *parser) peek(n int) (Token, error) {
	for len(p.ahead) <= n {
		tok, err := p.lex.Next()
		if err != nil {
			return Token{}, err
		}

		p.ahead = append(p.ahead, tok)
	}

	return p.ahead[n], nil
}

// peekMeaningful returns the next non-whitespace token without consuming.
func (p *parser) peekMeaningful() (Token, error) {
	for n := 0; ; n++ {
		tok, err := p.peek(n)
		if err != nil {
			return Token{}, err
		}

		if tok.Kind != KindWhitespace {
			return tok, nil
		}
	}
}

// skipSpace advances past whitespace tokens.
func (p *parser) skipSpace() error {
	for p.tok.Kind == KindWhitespace {
		if err := p.advance(); err != nil {
			return err
		}
	}

	return nil
}

// expect asserts the current token's kind, then advances past it.
func (p *parser) expect(kind Kind, construct string) (Token, error) {
	if p.tok.Kind != kind {
		return Token{}, p.unexpected(construct, kind.String())
	}

	tok := p.tok

	return tok, p.advance()
}

// unexpected builds a fail-fast structural parse error naming the
// construct being parsed and the offending token.
func (p *parser) unexpected(construct, expected string) error {
	return ErrParse.Wrap(
		ErrUnexpectedToken.At(p.tok.Pos).
			With(
				slog.String("while_parsing", construct),
				slog.String("expected", expected),
				slog.String("found", p.tok.Kind.String()),
			),
	)
}

// duplicate records an accumulated duplicate-name error.
func (p *parser) duplicate(what, name string, pos Position) {
	p.duplicates = append(p.duplicates,
		ErrDuplicateName.At(pos).
			With(
				slog.String("kind", what),
				slog.String("name", name),
			),
	)
}

func (p *parser) parseFile() error {
	var attrs AttributeSet

	attrsLine := -1

	for {
		if err := p.skipSpace(); err != nil {
			return err
		}

		switch p.tok.Kind {
		case KindEOF:
			if len(attrs) > 0 {
				return p.unexpected("attribute list", "recipe header")
			}

			return nil

		case KindEOL:
			if err := p.advance(); err != nil {
				return err
			}

		case KindComment:
			p.doc = strings.TrimSpace(strings.TrimPrefix(p.tok.Lexeme, "#"))
			p.docLine = p.tok.Pos.Line

			if err := p.advance(); err != nil {
				return err
			}

		case KindLBracket:
			if attrsLine < 0 {
				attrsLine = p.tok.Pos.Line
			}

			if err := p.parseAttributes(&attrs); err != nil {
				return err
			}

		case KindIdentifier:
			if err := p.parseDeclaration(attrs, attrsLine); err != nil {
				return err
			}

			attrs = nil
			attrsLine = -1

		default:
			return p.unexpected("declaration", "identifier")
		}
	}
}

// parseDeclaration dispatches a line beginning with an identifier:
// a setting, alias, import, assignment, or recipe header. The keywords
// set, alias, import, and export are contextual; each requires its
// characteristic continuation to act as a keyword.
func (p *parser) parseDeclaration(attrs AttributeSet, attrsLine int) error {
	name := p.tok

	next, err := p.peekMeaningful()
	if err != nil {
		return err
	}

	switch {
	case name.Lexeme == "set" && next.Kind == KindIdentifier:
		return p.parseSetting()

	case name.Lexeme == "alias" && next.Kind == KindIdentifier:
		return p.parseAlias()

	case name.Lexeme == "import" &&
		(next.Kind == KindStringRaw || next.Kind == KindStringCooked):
		return p.parseImport()

	case name.Lexeme == "export" && next.Kind == KindIdentifier:
		if err := p.advance(); err != nil {
			return err
		}

		if err := p.skipSpace(); err != nil {
			return err
		}

		return p.parseAssignment(true)

	case next.Kind == KindColonEquals || next.Kind == KindEquals:
		return p.parseAssignment(false)

	default:
		return p.parseRecipe(attrs, attrsLine)
	}
}

// parseEndOfLine consumes an optional trailing comment and the line
// terminator.
func (p *parser) parseEndOfLine(construct string) error {
	if err := p.skipSpace(); err != nil {
		return err
	}

	if p.tok.Kind == KindComment {
		if err := p.advance(); err != nil {
			return err
		}
	}

	if p.tok.Kind == KindEOF {
		return nil
	}

	_, err := p.expect(KindEOL, construct)

	return err
}

func (p *parser) parseSetting() error {
	if err := p.advance(); err != nil { // 'set'
		return err
	}

	if err := p.skipSpace(); err != nil {
		return err
	}

	name, err := p.expect(KindIdentifier, "setting")
	if err != nil {
		return err
	}

	if err := p.skipSpace(); err != nil {
		return err
	}

	hasValue := p.tok.Kind == KindColonEquals
	if hasValue {
		if err := p.advance(); err != nil {
			return err
		}

		if err := p.skipSpace(); err != nil {
			return err
		}
	}

	switch name.Lexeme {
	case "shell":
		if !hasValue {
			return p.unexpected("shell setting", "':='")
		}

		argv, err := p.parseStringArray()
		if err != nil {
			return err
		}

		p.file.Settings.Shell = argv

	case "dotenv-load", "export", "positional-arguments":
		value := true

		if hasValue {
			value, err = p.parseBoolLiteral()
			if err != nil {
				return err
			}
		}

		switch name.Lexeme {
		case "dotenv-load":
			p.file.Settings.DotenvLoad = value
		case "export":
			p.file.Settings.ExportAll = value
		case "positional-arguments":
			p.file.Settings.PositionalArguments = value
		}

	default:
		return ErrParse.Wrap(
			ErrUnknownSetting.At(name.Pos).
				With(slog.String("name", name.Lexeme)),
		)
	}

	return p.parseEndOfLine("setting")
}

// parseStringArray parses ["elem", "elem", ...] with an optional trailing
// comma.
func (p *parser) parseStringArray() ([]string, error) {
	if _, err := p.expect(KindLBracket, "string array"); err != nil {
		return nil, err
	}

	var elems []string

	for {
		if err := p.skipSpace(); err != nil {
			return nil, err
		}

		if p.tok.Kind == KindRBracket {
			return elems, p.advance()
		}

		if p.tok.Kind != KindStringCooked && p.tok.Kind != KindStringRaw {
			return nil, p.unexpected("string array", "string literal")
		}

		elems = append(elems, unquote(p.tok))

		if err := p.advance(); err != nil {
			return nil, err
		}

		if err := p.skipSpace(); err != nil {
			return nil, err
		}

		if p.tok.Kind == KindComma {
			if err := p.advance(); err != nil {
				return nil, err
			}

			continue
		}

		if p.tok.Kind != KindRBracket {
			return nil, p.unexpected("string array", "',' or ']'")
		}
	}
}

func (p *parser) parseBoolLiteral() (bool, error) {
	tok, err := p.expect(KindIdentifier, "boolean setting")
	if err != nil {
		return false, err
	}

	switch tok.Lexeme {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, ErrParse.Wrap(
			ErrUnexpectedToken.At(tok.Pos).
				With(
					slog.String("while_parsing", "boolean setting"),
					slog.String("expected", "'true' or 'false'"),
					slog.String("found", tok.Lexeme),
				),
		)
	}
}

func (p *parser) parseAlias() error {
	if err := p.advance(); err != nil { // 'alias'
		return err
	}

	if err := p.skipSpace(); err != nil {
		return err
	}

	name, err := p.expect(KindIdentifier, "alias")
	if err != nil {
		return err
	}

	if err := p.skipSpace(); err != nil {
		return err
	}

	if p.tok.Kind != KindColonEquals && p.tok.Kind != KindEquals {
		return p.unexpected("alias", "':='")
	}

	if err := p.advance(); err != nil {
		return err
	}

	if err := p.skipSpace(); err != nil {
		return err
	}

	target, err := p.expect(KindIdentifier, "alias target")
	if err != nil {
		return err
	}

	for _, a := range p.file.Aliases {
		if a.Name == name.Lexeme {
			p.duplicate("alias", name.Lexeme, name.Pos)

			break
		}
	}

	p.file.Aliases = append(p.file.Aliases, &Alias{
		Name:   name.Lexeme,
		Target: target.Lexeme,
		Pos:    name.Pos,
	})

	return p.parseEndOfLine("alias")
}

func (p *parser) parseImport() error {
	pos := p.tok.Pos

	if err := p.advance(); err != nil { // 'import'
		return err
	}

	if err := p.skipSpace(); err != nil {
		return err
	}

	if p.tok.Kind != KindStringRaw && p.tok.Kind != KindStringCooked {
		return p.unexpected("import", "path string")
	}

	p.file.Imports = append(p.file.Imports, &Import{
		Path: unquote(p.tok),
		Pos:  pos,
	})

	if err := p.advance(); err != nil {
		return err
	}

	return p.parseEndOfLine("import")
}

func (p *parser) parseAssignment(export bool) error {
	name := p.tok

	if err := p.advance(); err != nil {
		return err
	}

	if err := p.skipSpace(); err != nil {
		return err
	}

	if p.tok.Kind != KindColonEquals && p.tok.Kind != KindEquals {
		return p.unexpected("assignment", "':='")
	}

	if err := p.advance(); err != nil {
		return err
	}

	if err := p.skipSpace(); err != nil {
		return err
	}

	value, err := p.parseExpression()
	if err != nil {
		return err
	}

	for _, a := range p.file.Assignments {
		if a.Name == name.Lexeme {
			p.duplicate("assignment", name.Lexeme, name.Pos)

			break
		}
	}

	p.file.Assignments = append(p.file.Assignments, &Assignment{
		Name:   name.Lexeme,
		Export: export,
		Value:  value,
		Pos:    name.Pos,
	})

	return p.parseEndOfLine("assignment")
}

func (p *parser) parseAttributes(attrs *AttributeSet) error {
	if err := p.advance(); err != nil { // '['
		return err
	}

	for {
		if err := p.skipSpace(); err != nil {
			return err
		}

		name, err := p.expect(KindIdentifier, "attribute list")
		if err != nil {
			return err
		}

		if !KnownAttribute(name.Lexeme) {
			return ErrParse.Wrap(
				ErrUnknownAttribute.At(name.Pos).
					With(slog.String("name", name.Lexeme)),
			)
		}

		attr := Attribute(name.Lexeme)
		if attrs.Has(attr) {
			return ErrParse.Wrap(
				ErrDuplicateAttribute.At(name.Pos).
					With(slog.String("name", name.Lexeme)),
			)
		}

		*attrs = append(*attrs, attr)

		if err := p.skipSpace(); err != nil {
			return err
		}

		switch p.tok.Kind {
		case KindComma:
			if err := p.advance(); err != nil {
				return err
			}

		case KindRBracket:
			if err := p.advance(); err != nil {
				return err
			}

			return p.parseEndOfLine("attribute list")

		default:
			return p.unexpected("attribute list", "',' or ']'")
		}
	}
}

func (p *parser) parseRecipe(attrs AttributeSet, attrsLine int) error {
	name := p.tok

	if err := p.advance(); err != nil {
		return err
	}

	recipe := &Recipe{
		Name:       name.Lexeme,
		Attributes: attrs,
		Pos:        name.Pos,
	}

	// A comment directly above the header (or its attribute lines)
	// documents the recipe.
	headLine := name.Pos.Line
	if attrsLine >= 0 {
		headLine = attrsLine
	}

	if p.doc != "" && p.docLine == headLine-1 {
		recipe.Doc = p.doc
	}

	p.doc = ""

	if err := p.parseParameters(recipe); err != nil {
		return err
	}

	if _, err := p.expect(KindColon, "recipe header"); err != nil {
		return err
	}

	if err := p.parseDependencies(recipe); err != nil {
		return err
	}

	if err := p.parseEndOfLine("recipe header"); err != nil {
		return err
	}

	if err := p.parseBody(recipe); err != nil {
		return err
	}

	for _, r := range p.file.Recipes {
		if r.Name == recipe.Name {
			p.duplicate("recipe", recipe.Name, recipe.Pos)

			break
		}
	}

	p.file.Recipes = append(p.file.Recipes, recipe)

	return nil
}

func (p *parser) parseParameters(recipe *Recipe) error {
	sawDefault := false
	sawVariadic := false

	for {
		if err := p.skipSpace(); err != nil {
			return err
		}

		variadic, plus := false, false

		switch p.tok.Kind {
		case KindPlus, KindStar:
			variadic, plus = true, p.tok.Kind == KindPlus

			if err := p.advance(); err != nil {
				return err
			}

		case KindIdentifier:
			// required or defaulted parameter

		default:
			return nil
		}

		name, err := p.expect(KindIdentifier, "parameter")
		if err != nil {
			return err
		}

		if sawVariadic {
			return ErrParse.Wrap(ErrParameterAfterVariadic.At(name.Pos).
				With(slog.String("name", name.Lexeme)))
		}

		param := Parameter{
			Name:     name.Lexeme,
			Variadic: variadic,
			Plus:     plus,
			Pos:      name.Pos,
		}

		if p.tok.Kind == KindEquals {
			if err := p.advance(); err != nil {
				return err
			}

			param.Default, err = p.parseValue()
			if err != nil {
				return err
			}
		}

		switch {
		case param.Variadic:
			sawVariadic = true
		case param.Default != nil:
			sawDefault = true
		case sawDefault:
			return ErrParse.Wrap(ErrRequiredAfterDefault.At(name.Pos).
				With(slog.String("name", name.Lexeme)))
		}

		for _, existing := range recipe.Parameters {
			if existing.Name == param.Name {
				return ErrParse.Wrap(ErrDuplicateParameter.At(name.Pos).
					With(slog.String("name", name.Lexeme)))
			}
		}

		recipe.Parameters = append(recipe.Parameters, param)
	}
}

func (p *parser) parseDependencies(recipe *Recipe) error {
	for {
		if err := p.skipSpace(); err != nil {
			return err
		}

		switch p.tok.Kind {
		case KindIdentifier:
			recipe.Dependencies = append(recipe.Dependencies, Dependency{
				Target: p.tok.Lexeme,
				Pos:    p.tok.Pos,
			})

			if err := p.advance(); err != nil {
				return err
			}

		case KindLParen:
			dep, err := p.parseParenDependency()
			if err != nil {
				return err
			}

			recipe.Dependencies = append(recipe.Dependencies, dep)

		default:
			return nil
		}
	}
}

// parseParenDependency parses (target arg arg ...), a dependency carrying
// explicit argument expressions.
func (p *parser) parseParenDependency() (Dependency, error) {
	pos := p.tok.Pos

	if err := p.advance(); err != nil { // '('
		return Dependency{}, err
	}

	if err := p.skipSpace(); err != nil {
		return Dependency{}, err
	}

	target, err := p.expect(KindIdentifier, "dependency")
	if err != nil {
		return Dependency{}, err
	}

	dep := Dependency{Target: target.Lexeme, Pos: pos}

	for {
		if err := p.skipSpace(); err != nil {
			return Dependency{}, err
		}

		if p.tok.Kind == KindRParen {
			return dep, p.advance()
		}

		arg, err := p.parseExpression()
		if err != nil {
			return Dependency{}, err
		}

		dep.Arguments = append(dep.Arguments, arg)
	}
}

func (p *parser) parseBody(recipe *Recipe) error {
	// Skip blank lines between the header and the first body line.
	for {
		if p.tok.Kind == KindEOL {
			if err := p.advance(); err != nil {
				return err
			}

			continue
		}

		if p.tok.Kind == KindWhitespace {
			next, err := p.peek(0)
			if err != nil {
				return err
			}

			if next.Kind == KindEOL || next.Kind == KindEOF {
				if err := p.advance(); err != nil {
					return err
				}

				continue
			}
		}

		break
	}

	if p.tok.Kind != KindIndent {
		return nil
	}

	p.indent = p.tok.Lexeme

	if err := p.advance(); err != nil {
		return err
	}

	for {
		switch p.tok.Kind {
		case KindDedent:
			return p.advance()

		case KindEOF:
			return nil

		case KindEOL, KindWhitespace:
			if err := p.advance(); err != nil {
				return err
			}

		case KindText, KindInterpolationStart:
			line, err := p.parseBodyLine()
			if err != nil {
				return err
			}

			recipe.Body = append(recipe.Body, line)

		default:
			return p.unexpected("recipe body", "body line")
		}
	}
}

func (p *parser) parseBodyLine() (Line, error) {
	line := Line{Pos: p.tok.Pos}

	for {
		switch p.tok.Kind {
		case KindText:
			line.Fragments = append(line.Fragments, Fragment{
				Text: textValue(p.tok.Lexeme, p.indent),
			})

			if err := p.advance(); err != nil {
				return Line{}, err
			}

		case KindInterpolationStart:
			if err := p.advance(); err != nil {
				return Line{}, err
			}

			if err := p.skipSpace(); err != nil {
				return Line{}, err
			}

			expr, err := p.parseExpression()
			if err != nil {
				return Line{}, err
			}

			if err := p.skipSpace(); err != nil {
				return Line{}, err
			}

			if _, err := p.expect(KindInterpolationEnd, "interpolation"); err != nil {
				return Line{}, err
			}

			line.Fragments = append(line.Fragments, Fragment{Interp: expr})

		case KindEOL:
			return line, p.advance()

		case KindEOF, KindDedent:
			return line, nil

		default:
			return Line{}, p.unexpected("body line", "text or interpolation")
		}
	}
}

// parseExpression parses a full expression: a conditional, or a sum of
// values joined by '+'.
func (p *parser) parseExpression() (*Expr, error) {
	if err := p.skipSpace(); err != nil {
		return nil, err
	}

	if p.tok.Kind == KindIdentifier && p.tok.Lexeme == "if" {
		return p.parseConditional()
	}

	return p.parseSum()
}

func (p *parser) parseSum() (*Expr, error) {
	lhs, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	for {
		next, err := p.peekMeaningful()
		if err != nil {
			return nil, err
		}

		// The current token is already past lhs; '+' may be the current
		// token or follow whitespace.
		if p.tok.Kind != KindPlus && !(p.tok.Kind == KindWhitespace && next.Kind == KindPlus) {
			return lhs, nil
		}

		if err := p.skipSpace(); err != nil {
			return nil, err
		}

		pos := p.tok.Pos

		if err := p.advance(); err != nil { // '+'
			return nil, err
		}

		if err := p.skipSpace(); err != nil {
			return nil, err
		}

		rhs, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		lhs = &Expr{Kind: ExprConcat, Lhs: lhs, Rhs: rhs, Pos: pos}
	}
}

// parseValue parses a single value: a string literal, backtick, variable,
// function call, or parenthesized sub-expression.
func (p *parser) parseValue() (*Expr, error) {
	if err := p.skipSpace(); err != nil {
		return nil, err
	}

	pos := p.tok.Pos

	switch p.tok.Kind {
	case KindStringCooked, KindStringRaw:
		val := unquote(p.tok)

		return &Expr{Kind: ExprString, Str: val, Pos: pos}, p.advance()

	case KindBacktick:
		val := unquote(p.tok)

		return &Expr{Kind: ExprBacktick, Str: val, Pos: pos}, p.advance()

	case KindLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}

		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		if err := p.skipSpace(); err != nil {
			return nil, err
		}

		if _, err := p.expect(KindRParen, "group"); err != nil {
			return nil, err
		}

		return &Expr{Kind: ExprGroup, Inner: inner, Pos: pos}, nil

	case KindIdentifier:
		name := p.tok

		if err := p.advance(); err != nil {
			return nil, err
		}

		if p.tok.Kind == KindLParen {
			return p.parseCall(name)
		}

		return &Expr{Kind: ExprVariable, Name: name.Lexeme, Pos: name.Pos}, nil

	default:
		return nil, p.unexpected("expression", "value")
	}
}

func (p *parser) parseCall(name Token) (*Expr, error) {
	if err := p.advance(); err != nil { // '('
		return nil, err
	}

	call := &Expr{Kind: ExprCall, Name: name.Lexeme, Pos: name.Pos}

	for {
		if err := p.skipSpace(); err != nil {
			return nil, err
		}

		if p.tok.Kind == KindRParen {
			return call, p.advance()
		}

		if len(call.Args) > 0 {
			if _, err := p.expect(KindComma, "function call"); err != nil {
				return nil, err
			}
		}

		if err := p.skipSpace(); err != nil {
			return nil, err
		}

		// Permit a trailing comma before the closing parenthesis.
		if p.tok.Kind == KindRParen {
			return call, p.advance()
		}

		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		call.Args = append(call.Args, arg)
	}
}

func (p *parser) parseConditional() (*Expr, error) {
	pos := p.tok.Pos

	if err := p.advance(); err != nil { // 'if'
		return nil, err
	}

	lhs, err := p.parseSum()
	if err != nil {
		return nil, err
	}

	if err := p.skipSpace(); err != nil {
		return nil, err
	}

	var op CompareOp

	switch p.tok.Kind {
	case KindEqualsEquals:
		op = OpEquals
	case KindBangEquals:
		op = OpNotEquals
	case KindEqualsTilde:
		op = OpMatches
	default:
		return nil, p.unexpected("conditional", "'==', '!=', or '=~'")
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	rhs, err := p.parseSum()
	if err != nil {
		return nil, err
	}

	if err := p.skipSpace(); err != nil {
		return nil, err
	}

	if _, err := p.expect(KindLBrace, "conditional"); err != nil {
		return nil, err
	}

	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if err := p.skipSpace(); err != nil {
		return nil, err
	}

	if _, err := p.expect(KindRBrace, "conditional"); err != nil {
		return nil, err
	}

	if err := p.skipSpace(); err != nil {
		return nil, err
	}

	if p.tok.Kind != KindIdentifier || p.tok.Lexeme != "else" {
		return nil, p.unexpected("conditional", "'else'")
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	if err := p.skipSpace(); err != nil {
		return nil, err
	}

	var els *Expr

	if p.tok.Kind == KindIdentifier && p.tok.Lexeme == "if" {
		els, err = p.parseConditional()
		if err != nil {
			return nil, err
		}
	} else {
		if _, err := p.expect(KindLBrace, "conditional"); err != nil {
			return nil, err
		}

		els, err = p.parseExpression()
		if err != nil {
			return nil, err
		}

		if err := p.skipSpace(); err != nil {
			return nil, err
		}

		if _, err := p.expect(KindRBrace, "conditional"); err != nil {
			return nil, err
		}
	}

	return &Expr{
		Kind:     ExprIf,
		Lhs:      lhs,
		Rhs:      rhs,
		Operator: op,
		Then:     then,
		Else:     els,
		Pos:      pos,
	}, nil
}
