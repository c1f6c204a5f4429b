package lang

import (
	"errors"
	"log/slog"
	"strings"
)

// Error classes. Every error produced by this package wraps exactly one of
// these roots so callers can map failures to outcome classes with
// [errors.Is].
var (
	// ErrLex is the root of all tokenization failures.
	ErrLex = NewError("lex error")
	// ErrParse is the root of all syntax and structure failures.
	ErrParse = NewError("parse error")
	// ErrEval is the root of all expression evaluation failures.
	ErrEval = NewError("evaluation error")
	// ErrLoad is the root of all file loading and import failures.
	ErrLoad = NewError("load error")
)

// Predefined errors (sentinel values).
var (
	ErrUnterminatedString     = NewError("unterminated string literal")
	ErrUnterminatedInterp     = NewError("unterminated interpolation")
	ErrInvalidEscape          = NewError("invalid escape sequence")
	ErrInvalidToken           = NewError("invalid token")
	ErrInconsistentIndent     = NewError("inconsistent leading whitespace")
	ErrUnexpectedIndent       = NewError("unexpected indentation")
	ErrUnexpectedToken        = NewError("unexpected token")
	ErrUnknownSetting         = NewError("unknown setting")
	ErrDuplicateName          = NewError("duplicate definition")
	ErrDuplicateAttribute     = NewError("duplicate attribute")
	ErrUnknownAttribute       = NewError("unknown attribute")
	ErrRequiredAfterDefault   = NewError("required parameter follows defaulted parameter")
	ErrParameterAfterVariadic = NewError("parameter follows variadic parameter")
	ErrDuplicateParameter     = NewError("duplicate parameter")
	ErrUndefinedVariable      = NewError("undefined variable")
	ErrUnknownFunction        = NewError("unknown function")
	ErrFunctionArity          = NewError("wrong number of arguments")
	ErrVariableCycle          = NewError("variable definition cycle")
	ErrBacktickFailed         = NewError("backtick command failed")
	ErrBadRegex               = NewError("invalid regular expression")
	ErrImportCycle            = NewError("import cycle")
	ErrReadInput              = NewError("failed to read input")
)

// Error is an error with optional structured logging attributes.
// It implements both the error and [slog.LogValuer] interfaces.
type Error struct {
	msg   string
	err   error       // wrapped error (for errors.Unwrap)
	attrs []slog.Attr // attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error carrying the same base message.
// Derived errors produced by [Error.Wrap] and [Error.With] share their
// parent's message, so errors.Is(derived, sentinel) holds.
func (e *Error) Is(target error) bool {
	t := &Error{}
	if !errors.As(target, &t) {
		return false
	}

	return t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// At attaches a source position attribute.
func (e *Error) At(pos Position) *Error {
	return e.With(slog.String("pos", pos.String()))
}
