package ruleforge

import (
	"fmt"
	"strings"
)

// --- A general purpose interface for tokens --------------------------------

// TokType is a category type for a Token. We do not define any constants here, as
// it is up to token sources to define them.
type TokType int

// Tokens represent input tokens of the token-oriented grammar dialect. They are
// produced by a token source (see package scanner) and are matched by token
// terminals of a grammar.
//
// An example would be a token for a floating point number:
//
//    TokType = Float       // identifier for this kind of tokens (application specific)
//    Lexeme  = "3.1416"    // lexeme as it appeared in the input
//    Value   = 3.1416      // may be set by the token source
//    Span    = 67…73       // occured from position 67 in the input
//
type Token interface {
	TokType() TokType
	Lexeme() string
	Value() interface{}
	Span() Span
}

// --- Spans ------------------------------------------------------------

// Span is a small type for capturing a run of input characters. For every
// node of a parse tree we track which input positions it covers.
// A span denotes a start position and the position just behind the end.
type Span [2]int // (x…y)

// From returns the start value of a span.
func (s Span) From() int {
	return s[0]
}

// To returns the end value of a span.
func (s Span) To() int {
	return s[1]
}

// Len returns the length of (x…y)
func (s Span) Len() int {
	return s[1] - s[0]
}

// IsNull is true for the zero span.
func (s Span) IsNull() bool {
	return s == Span{}
}

// Extend returns the smallest span covering s and other.
func (s Span) Extend(other Span) Span {
	if other[0] < s[0] {
		s[0] = other[0]
	}
	if other[1] > s[1] {
		s[1] = other[1]
	}
	return s
}

// Of returns the text covered by s. Out-of-range positions are clipped.
func (s Span) Of(text string) string {
	from, to := s[0], s[1]
	if from < 0 {
		from = 0
	}
	if to > len(text) {
		to = len(text)
	}
	if from >= to {
		return ""
	}
	return text[from:to]
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}

// --- Positions --------------------------------------------------------

// LineCol maps a byte offset within text to a 1-based line and column.
// Columns count runes, not bytes.
func LineCol(text string, offset int) (line, col int) {
	if offset > len(text) {
		offset = len(text)
	}
	line, col = 1, 1
	head := text[:offset]
	if nl := strings.LastIndexByte(head, '\n'); nl >= 0 {
		line += strings.Count(head, "\n")
		head = head[nl+1:]
	}
	col += len([]rune(head))
	return
}
