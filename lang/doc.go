// Package lang implements the recipe language front end: a hand-written
// lexer and recursive-descent parser for the cheffile grammar, the
// abstract syntax tree, and the expression evaluator with its closed set
// of built-in functions.
//
// The token stream is lossless: concatenating every token's lexeme in
// order reproduces the source text byte for byte. All AST nodes are
// immutable once [Parse] or [Load] returns.
//
// Dependency resolution, planning, and execution live in the run
// package; this package knows nothing about processes beyond backtick
// command substitution.
package lang
