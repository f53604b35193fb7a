package lexmach

import (
	"strings"

	"github.com/npillmayer/ruleforge"
	"github.com/npillmayer/ruleforge/scanner"
	"github.com/npillmayer/schuko/tracing"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// tracer traces with key 'ruleforge.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("ruleforge.scanner")
}

// LMAdapter is a lexmachine adapter to use lexmachine as a token source.
// An adapter remembers the scanner for the most recent input, therefore it
// must not be shared between concurrent parses.
type LMAdapter struct {
	Lexer *lexmachine.Lexer
	Error func(error)
	names map[string]ruleforge.TokType
	input string
	scan  *lexmachine.Scanner
}

var _ scanner.TokenSource = (*LMAdapter)(nil)

// NewLMAdapter creates a new lexmachine adapter. It receives a list of
// literals ('[', ';', …), a list of keywords ("if", "for", …) and a
// map for translating token strings to their values.
//
// NewLMAdapter will return an error if compiling the DFA failed.
func NewLMAdapter(init func(*lexmachine.Lexer), literals []string, keywords []string, tokenIds map[string]int) (*LMAdapter, error) {
	adapter := &LMAdapter{Error: logError}
	adapter.Lexer = lexmachine.NewLexer()
	init(adapter.Lexer)
	for _, lit := range literals {
		r := "\\" + strings.Join(strings.Split(lit, ""), "\\")
		adapter.Lexer.Add([]byte(r), MakeToken(lit, tokenIds[lit]))
	}
	for _, name := range keywords {
		adapter.Lexer.Add([]byte(strings.ToLower(name)), MakeToken(name, tokenIds[name]))
	}
	if err := adapter.Lexer.Compile(); err != nil {
		tracer().Errorf("Error compiling DFA: %v", err)
		return nil, err
	}
	adapter.names = make(map[string]ruleforge.TokType, len(tokenIds))
	for name, id := range tokenIds {
		adapter.names[name] = ruleforge.TokType(id)
	}
	adapter.names["EOF"] = scanner.EOF
	return adapter, nil
}

// Default error reporting function for lexmachine-based scanners
func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

// TokenAt is part of the scanner.TokenSource interface.
// Unconsumable input is reported to the error handler and skipped.
func (lm *LMAdapter) TokenAt(input string, offset int) (ruleforge.Token, int, error) {
	if lm.scan == nil || input != lm.input {
		s, err := lm.Lexer.Scanner([]byte(input))
		if err != nil {
			return nil, 0, err
		}
		lm.scan, lm.input = s, input
	}
	lm.scan.TC = offset
	tok, err, eof := lm.scan.Next()
	for err != nil {
		lm.Error(err)
		if ui, is := err.(*machines.UnconsumedInput); is {
			lm.scan.TC = ui.FailTC
		}
		tok, err, eof = lm.scan.Next()
	}
	if eof {
		span := ruleforge.Span{len(input), len(input)}
		return scanner.MakeDefaultToken(scanner.EOF, "", span), len(input) - offset, nil
	}
	tracer().Debugf("tok is %T | %v", tok, tok)
	token := tok.(*lexmachine.Token)
	span := ruleforge.Span{token.TC, token.TC + len(token.Lexeme)}
	t := scanner.MakeDefaultToken(ruleforge.TokType(token.Type), string(token.Lexeme), span)
	t.Val = token.Value
	return t, span.To() - offset, nil
}

// TypeOf is part of the scanner.TokenSource interface.
func (lm *LMAdapter) TypeOf(name string) (ruleforge.TokType, bool) {
	typ, ok := lm.names[name]
	return typ, ok
}

// ---------------------------------------------------------------------------

// Skip is a pre-defined action which ignores the scanned match.
func Skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// MakeToken is a pre-defined action which wraps a scanned match into a token.
func MakeToken(name string, id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}
