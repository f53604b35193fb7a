package ruleforge

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind tells which layer of RuleForge detected an error.
type ErrorKind int

// Error kinds. Grammar-structure errors point to a bug in the engine or an
// unsupported construct; grammar-semantics errors are mistakes of a grammar
// author; parse-tree errors are raised while walking parsed trees; usage errors
// are mistakes of a caller.
const (
	NoErrorKind ErrorKind = iota
	GrammarStructure
	GrammarSemantics
	ParseTree
	Usage
	UnimplementedAction
	NotImplemented
	MemoIntegrity
)

var kindNames = [...]string{
	"error",
	"grammar structure error",
	"grammar error",
	"parse tree error",
	"usage error",
	"unimplemented action",
	"not implemented",
	"memo integrity error",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[0]
	}
	return kindNames[k]
}

// Sentinel causes. Use errors.Is to check for them.
var (
	ErrUndeclared       = errors.New("undeclared rule name")
	ErrReassigned       = errors.New("rule already has a right-hand side")
	ErrNoBaseCase       = errors.New("left-recursive rule has no base case")
	ErrDuplicateAnchor  = errors.New("duplicate anchor")
	ErrCardinality      = errors.New("unexpected number of nodes")
	ErrNotUnique        = errors.New("node reachable from more than one position")
	ErrMaterialized     = errors.New("operands already materialized")
	ErrKindMismatch     = errors.New("node kind mismatch")
	ErrNoGrammar        = errors.New("no grammar defined")
	ErrNoProgram        = errors.New("no program supplied")
	ErrParseFailed      = errors.New("parse failed")
	ErrUnresolvedEntry  = errors.New("unresolved entry point")
	ErrNoAction         = errors.New("no action for rule")
	ErrIntegrity        = errors.New("memo cache integrity violated")
	ErrRecursionLimit   = errors.New("recursion limit exceeded")
	ErrUnknownDirective = errors.New("unknown directive")
	ErrBadDefault       = errors.New("malformed default value")
	ErrAbstract         = errors.New("operation not implemented for node kind")
	ErrSyntax           = errors.New("syntax error in grammar")
)

// Error is the error type of RuleForge. Every error returned by a package of
// this module is an *Error, wrapping one of the sentinel causes.
type Error struct {
	Kind    ErrorKind
	Cause   error  // sentinel, may be nil
	Message string // human readable details
	Rule    string // dotted rule name, if any
	Source  string // name of the grammar or program source, if any
	Line    int    // 1-based line, 0 if unknown
	Col     int    // 1-based column, 0 if unknown
	Offset  int    // byte offset, -1 if unknown
}

// Errorf creates a new error of a given kind and cause.
func Errorf(kind ErrorKind, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Cause:   cause,
		Message: fmt.Sprintf(format, args...),
		Offset:  -1,
	}
}

// At sets the position of an error from an offset within text.
// A negative offset leaves the error without position.
func (e *Error) At(source, text string, offset int) *Error {
	e.Source = source
	if offset >= 0 {
		e.Offset = offset
		e.Line, e.Col = LineCol(text, offset)
	}
	return e
}

// For sets the rule name an error refers to.
func (e *Error) For(rule string) *Error {
	e.Rule = rule
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Source != "" {
		b.WriteString(e.Source)
		b.WriteByte(':')
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, "%d:%d:", e.Line, e.Col)
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(e.Kind.String())
	if e.Rule != "" {
		fmt.Fprintf(&b, " in rule %q", e.Rule)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Unwrap returns the sentinel cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf returns the kind of err if it is (or wraps) an *Error,
// and NoErrorKind otherwise.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return NoErrorKind
}
