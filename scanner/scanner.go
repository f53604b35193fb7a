/*
Package scanner defines token sources for the token-oriented grammar dialect.

Grammars of the token-oriented dialect reference token types by name instead of
spelling out character-level rules for identifiers, numbers and the like. The
matching engine asks a token source for the token starting at a given offset,
with leading whitespace and comments skipped by the source.

Two default token sources are provided: (1) a thin wrapper over the Go std lib
'text/scanner', and (2) an adapter for lexmachine, living in sub-package `lexmach`.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package scanner

import (
	"fmt"
	"strings"
	"text/scanner"

	"github.com/npillmayer/ruleforge"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ruleforge.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("ruleforge.scanner")
}

// EOF is identical to text/scanner.EOF.
// Token types are replicated here for practical reasons.
const (
	EOF       = scanner.EOF
	Ident     = scanner.Ident
	Int       = scanner.Int
	Float     = scanner.Float
	Char      = scanner.Char
	String    = scanner.String
	RawString = scanner.RawString
	Comment   = scanner.Comment
)

// TokenSource is the contract between the matching engine and a tokenizer.
// Tokens are requested by offset, in no particular order, and possibly more
// than once for the same offset.
type TokenSource interface {
	// TokenAt returns the token starting at or after offset, and the number of
	// bytes consumed from offset up to the end of the token.
	TokenAt(input string, offset int) (ruleforge.Token, int, error)
	// TypeOf maps a token type name, as used in a grammar, to a token type.
	TypeOf(name string) (ruleforge.TokType, bool)
}

// --- Default tokens --------------------------------------------------------

// DefaultToken is a very unsophisticated token type, used as default for the Go
// tokenizer as well as the LexMachine scanner.
type DefaultToken struct {
	kind   ruleforge.TokType
	lexeme string
	Val    interface{}
	span   ruleforge.Span
}

// MakeDefaultToken creates a token without a value.
func MakeDefaultToken(typ ruleforge.TokType, lexeme string, span ruleforge.Span) DefaultToken {
	return DefaultToken{
		kind:   typ,
		lexeme: lexeme,
		span:   span,
	}
}

func (t DefaultToken) TokType() ruleforge.TokType {
	return t.kind
}

func (t DefaultToken) Value() interface{} {
	return t.Val
}

func (t DefaultToken) Lexeme() string {
	return t.lexeme
}

func (t DefaultToken) Span() ruleforge.Span {
	return t.span
}

func (t DefaultToken) String() string {
	return fmt.Sprintf("<%d %q %v>", t.kind, t.lexeme, t.span)
}

// --- Go tokens ---------------------------------------------------------------

// GoTokens is a token source accepting tokens similar to the Go language,
// backed by scanner.Scanner. Create one with GoTokenizer.
type GoTokens struct {
	Error        func(error) // error handler
	mode         uint
	unifyStrings bool // convert single chars to strings
	names        map[string]ruleforge.TokType
}

var _ TokenSource = (*GoTokens)(nil)

// Default error reporting function for scanners
func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

var goTokenNames = map[string]ruleforge.TokType{
	"EOF":       EOF,
	"IDENT":     Ident,
	"INT":       Int,
	"FLOAT":     Float,
	"CHAR":      Char,
	"STRING":    String,
	"RAWSTRING": RawString,
	"COMMENT":   Comment,
}

// GoTokenizer creates a token source accepting tokens similar to the Go language.
// Grammars refer to its token types as IDENT, INT, FLOAT, CHAR, STRING,
// RAWSTRING, COMMENT and EOF.
func GoTokenizer(opts ...Option) *GoTokens {
	t := &GoTokens{
		Error: logError,
		mode:  scanner.GoTokens,
		names: make(map[string]ruleforge.TokType, len(goTokenNames)),
	}
	for name, typ := range goTokenNames {
		t.names[name] = typ
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetErrorHandler sets an error handler for the scanner.
func (t *GoTokens) SetErrorHandler(h func(error)) {
	if h == nil {
		t.Error = logError
		return
	}
	t.Error = h
}

// TokenAt is part of the TokenSource interface.
func (t *GoTokens) TokenAt(input string, offset int) (ruleforge.Token, int, error) {
	if offset < 0 || offset > len(input) {
		return nil, 0, fmt.Errorf("offset %d out of range", offset)
	}
	var sc scanner.Scanner
	sc.Init(strings.NewReader(input[offset:]))
	sc.Mode = t.mode
	var scanErr error
	sc.Error = func(s *scanner.Scanner, msg string) {
		scanErr = fmt.Errorf("%d: %s", offset+s.Pos().Offset, msg)
		t.Error(scanErr)
	}
	tok := sc.Scan()
	if scanErr != nil {
		return nil, 0, scanErr
	}
	if t.unifyStrings && (tok == scanner.RawString || tok == scanner.Char) {
		tok = scanner.String
	}
	end := sc.Pos().Offset
	span := ruleforge.Span{offset + sc.Position.Offset, offset + end}
	if tok == scanner.EOF {
		tracer().Debugf("GoTokens reached end of input")
		span = ruleforge.Span{len(input), len(input)}
		end = len(input) - offset
	}
	return MakeDefaultToken(ruleforge.TokType(tok), sc.TokenText(), span), end, nil
}

// TypeOf is part of the TokenSource interface.
func (t *GoTokens) TypeOf(name string) (ruleforge.TokType, bool) {
	typ, ok := t.names[name]
	return typ, ok
}

// --- Scanner options for the default (Go) tokenizer ---------------------------

// Option configures a default tokenizer.
type Option func(p *GoTokens)

const (
	optionSkipComments uint = 1 << 1 // do not pass comments
	optionUnifyStrings uint = 1 << 2 // treat raw strings and single chars as strings
)

// SkipComments set or clears mode-flag SkipComments.
func SkipComments(b bool) Option {
	return func(t *GoTokens) {
		if b {
			t.mode |= scanner.SkipComments
		} else {
			t.mode &^= scanner.SkipComments
		}
	}
}

// UnifyStrings sets or clears option UnifyStrings:
// treat raw strings and single chars as strings.
func UnifyStrings(b bool) Option {
	return func(t *GoTokens) {
		t.unifyStrings = b
	}
}

// TokenName adds a name for a token type, usually for single-character tokens,
// which text/scanner reports with the character as type.
func TokenName(name string, typ ruleforge.TokType) Option {
	return func(t *GoTokens) {
		t.names[name] = typ
	}
}

func (t *GoTokens) hasmode(m uint) bool {
	switch m {
	case optionUnifyStrings:
		return t.unifyStrings
	case optionSkipComments:
		return t.mode&scanner.SkipComments > 0
	}
	return false
}
