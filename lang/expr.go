package lang

import "strings"

// ExprKind discriminates the closed set of expression variants.
// The evaluator switches exhaustively over this type.
type ExprKind int

const (
	// ExprString is a string literal, already unquoted and unescaped.
	ExprString ExprKind = iota
	// ExprVariable references an assignment, parameter, or environment
	// variable by name.
	ExprVariable
	// ExprConcat joins two sub-expressions with '+'.
	ExprConcat
	// ExprCall invokes a built-in function.
	ExprCall
	// ExprIf is the conditional: if lhs OP rhs { then } else { else }.
	ExprIf
	// ExprBacktick captures the standard output of a shell command.
	ExprBacktick
	// ExprGroup is a parenthesized sub-expression.
	ExprGroup
)

// String returns a short name for the expression kind.
func (k ExprKind) String() string {
	switch k {
	case ExprString:
		return "string"
	case ExprVariable:
		return "variable"
	case ExprConcat:
		return "concat"
	case ExprCall:
		return "call"
	case ExprIf:
		return "conditional"
	case ExprBacktick:
		return "backtick"
	case ExprGroup:
		return "group"
	default:
		return "unknown"
	}
}

// CompareOp is the comparison operator of a conditional expression.
type CompareOp int

const (
	// OpEquals tests string equality.
	OpEquals CompareOp = iota
	// OpNotEquals tests string inequality.
	OpNotEquals
	// OpMatches tests the left operand against the right operand
	// interpreted as a regular expression.
	OpMatches
)

// String returns the source spelling of the operator.
func (op CompareOp) String() string {
	switch op {
	case OpNotEquals:
		return "!="
	case OpMatches:
		return "=~"
	default:
		return "=="
	}
}

// Expr is a node of the expression tree. Exactly the fields relevant to
// Kind are populated; all others hold their zero values.
type Expr struct {
	Kind ExprKind `yaml:"kind"`

	// Str holds the literal value (ExprString) or the raw command text
	// (ExprBacktick).
	Str string `yaml:"str,omitempty"`
	// Name holds the referenced variable (ExprVariable) or function
	// (ExprCall) name.
	Name string `yaml:"name,omitempty"`
	// Args holds function call arguments (ExprCall).
	Args []*Expr `yaml:"args,omitempty"`

	// Lhs and Rhs hold the operands of ExprConcat, and the comparison
	// operands of ExprIf.
	Lhs *Expr `yaml:"lhs,omitempty"`
	Rhs *Expr `yaml:"rhs,omitempty"`

	// Operator, Then, and Else complete an ExprIf.
	Operator CompareOp `yaml:"operator,omitempty"`
	Then     *Expr     `yaml:"then,omitempty"`
	Else     *Expr     `yaml:"else,omitempty"`

	// Inner holds the grouped sub-expression (ExprGroup).
	Inner *Expr `yaml:"inner,omitempty"`

	Pos Position `yaml:"-"`
}

// String renders the expression in approximately its source form.
// Used for diagnostics and dependency deduplication keys.
func (x *Expr) String() string {
	if x == nil {
		return ""
	}

	var b strings.Builder

	x.format(&b)

	return b.String()
}

func (x *Expr) format(b *strings.Builder) {
	switch x.Kind {
	case ExprString:
		b.WriteByte('\'')
		b.WriteString(x.Str)
		b.WriteByte('\'')
	case ExprVariable:
		b.WriteString(x.Name)
	case ExprConcat:
		x.Lhs.format(b)
		b.WriteString(" + ")
		x.Rhs.format(b)
	case ExprCall:
		b.WriteString(x.Name)
		b.WriteByte('(')

		for i, arg := range x.Args {
			if i > 0 {
				b.WriteString(", ")
			}

			arg.format(b)
		}

		b.WriteByte(')')
	case ExprIf:
		b.WriteString("if ")
		x.Lhs.format(b)
		b.WriteByte(' ')
		b.WriteString(x.Operator.String())
		b.WriteByte(' ')
		x.Rhs.format(b)
		b.WriteString(" { ")
		x.Then.format(b)
		b.WriteString(" } else { ")
		x.Else.format(b)
		b.WriteString(" }")
	case ExprBacktick:
		b.WriteByte('`')
		b.WriteString(x.Str)
		b.WriteByte('`')
	case ExprGroup:
		b.WriteByte('(')
		x.Inner.format(b)
		b.WriteByte(')')
	}
}
