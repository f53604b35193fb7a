package forger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/npillmayer/ruleforge"
	"github.com/npillmayer/ruleforge/eval"
	"github.com/npillmayer/ruleforge/scanner"
	"github.com/npillmayer/ruleforge/scanner/lexmach"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timtadh/lexmachine"
)

func atoi(args *eval.Args, text string) (interface{}, error) {
	return strconv.Atoi(strings.TrimSpace(text))
}

func TestWorkedExample(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.forger")
	defer teardown()
	//
	f, err := Compile("digits='0123456789'; num=digits+")
	require.NoError(t, err)
	tr, err := f.Parse("num", "042")
	require.NoError(t, err)
	assert.Equal(t, 3, tr.Len(tr.Root))
	v, err := f.Evaluate("num", "042", eval.Actions{"num": atoi})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestLongestMatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.forger")
	defer teardown()
	//
	grammar := `a="x"; ab="x""y"; pick=ab|a`
	f, err := Compile(grammar)
	require.NoError(t, err)
	tr, err := f.Parse("pick", "xy")
	require.NoError(t, err)
	assert.Equal(t, 2, tr.Len(tr.Root))
	//
	grammar = `a="x"; ab="x""y"; pick=a|ab`
	f, err = Compile(grammar)
	require.NoError(t, err)
	tr, err = f.Parse("pick", "xy")
	require.NoError(t, err)
	assert.Equal(t, 2, tr.Len(tr.Root), "longer alternative should win regardless of order")
	//
	f, err = Compile(grammar, FirstMatch(true), Partial(true))
	require.NoError(t, err)
	tr, err = f.Parse("pick", "xy")
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Len(tr.Root), "first alternative should win with first-match policy")
}

const calc = `
num      = '0123456789'+
expr     = num
expr.add = $v1:expr "+" $v2:num
`

func TestLeftRecursion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.forger")
	defer teardown()
	//
	f, err := Compile(calc, Integrity(true))
	require.NoError(t, err)
	v, err := f.Evaluate("expr", "1+2+3", eval.Actions{
		"num": atoi,
		"expr.add": func(args *eval.Args, _ string) (interface{}, error) {
			return args.Value("v1").(int) + args.Value("v2").(int), nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, v)
	v, err = f.Evaluate("expr", "1+2+3", eval.Actions{
		"num": atoi,
		"expr.add": func(args *eval.Args, _ string) (interface{}, error) {
			return fmt.Sprintf("(%v+%v)", args.Value("v1"), args.Value("v2")), nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "((1+2)+3)", v)
}

func TestSingleTermRules(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.forger")
	defer teardown()
	//
	f, err := Compile("term='0123456789'\nexpr = term; expr.add = $v1:expr '+' $v2:term")
	require.NoError(t, err)
	v, err := f.Evaluate("expr", "1+2", eval.Actions{
		"term": atoi,
		"expr.add": func(args *eval.Args, _ string) (interface{}, error) {
			return args.Value("v1").(int) + args.Value("v2").(int), nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	//
	f, err = Compile("d = '0123456789'\nopt = $x:d? {$y:d(`9`)}\nk = !\"a\" $c:'abc'")
	require.NoError(t, err)
	actions := eval.Actions{
		"d": atoi,
		"opt": func(args *eval.Args, _ string) (interface{}, error) {
			x, ok := args.Value("x").(*eval.List)
			if !ok {
				return nil, fmt.Errorf("$x should be a list")
			}
			return fmt.Sprintf("%d:%v", x.Len(), args.Value("y")), nil
		},
	}
	v, err = f.Evaluate("opt", "", actions)
	require.NoError(t, err)
	assert.Equal(t, "0:9", v)
	v, err = f.Evaluate("opt", "4", actions)
	require.NoError(t, err)
	assert.Equal(t, "1:9", v)
	_, err = f.Parse("k", "a")
	require.Error(t, err)
	t.Logf("error: %v", err)
	assert.NotContains(t, err.Error(), "expected one of")
}

// With longest match, a right-recursive variant takes the whole rest of the
// input, so 1^2+3 groups as 1^(2+3).
func TestMixedRecursion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.forger")
	defer teardown()
	//
	f, err := Compile(`
d     = '0123456789'
e     = d
e.add = $l:e "+" $r:d
e.pow = $b:d "^" $x:e
`)
	require.NoError(t, err)
	actions := eval.Actions{
		"e.add": func(args *eval.Args, _ string) (interface{}, error) {
			return fmt.Sprintf("(%v+%v)", args.Value("l"), args.Value("r")), nil
		},
		"e.pow": func(args *eval.Args, _ string) (interface{}, error) {
			return fmt.Sprintf("(%v^%v)", args.Value("b"), args.Value("x")), nil
		},
	}
	for input, expected := range map[string]string{
		"1^2+3": "(1^(2+3))",
		"1+2+3": "((1+2)+3)",
	} {
		v, err := f.Evaluate("e", input, actions)
		if err != nil {
			t.Errorf("%s: %v", input, err)
			continue
		}
		assert.Equal(t, expected, v, input)
	}
}

func TestGrammarErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.forger")
	defer teardown()
	//
	_, err := Compile("num = '0123456789'\nexpr = expr \"+\" num")
	require.Error(t, err)
	t.Logf("error: %v", err)
	assert.True(t, errors.Is(err, ruleforge.ErrNoBaseCase))
	assert.Equal(t, ruleforge.GrammarSemantics, ruleforge.KindOf(err))
	assert.Equal(t, 2, err.(*ruleforge.Error).Line)
	//
	_, err = Compile("d = '01'; p = $x:d $x:d")
	assert.True(t, errors.Is(err, ruleforge.ErrDuplicateAnchor), "have %v", err)
	//
	f, err := Compile(`a = "x"`)
	require.NoError(t, err)
	err = f.Define(`a = b`)
	assert.True(t, errors.Is(err, ruleforge.ErrUndeclared), "have %v", err)
	_, err = f.Parse("a", "x")
	assert.NoError(t, err, "previous grammar should survive a failed definition")
}

func TestUsageErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.forger")
	defer teardown()
	//
	_, err := New().Parse("a", "x")
	assert.True(t, errors.Is(err, ruleforge.ErrNoGrammar), "have %v", err)
	f, err := Compile(`a = "x" "y"`, SourceName("prog"))
	require.NoError(t, err)
	_, err = f.Parse("b", "xy")
	assert.True(t, errors.Is(err, ruleforge.ErrUnresolvedEntry), "have %v", err)
	_, err = f.ParseReader("a", nil)
	assert.True(t, errors.Is(err, ruleforge.ErrNoProgram), "have %v", err)
	_, err = f.ParseReader("a", strings.NewReader("xy"))
	assert.NoError(t, err)
	//
	_, err = f.Parse("a", "xz")
	require.Error(t, err)
	t.Logf("error: %v", err)
	assert.True(t, errors.Is(err, ruleforge.ErrParseFailed))
	e := err.(*ruleforge.Error)
	assert.Equal(t, ruleforge.Usage, e.Kind)
	assert.Equal(t, "a", e.Rule)
	assert.Equal(t, "prog", e.Source)
	assert.Equal(t, 2, e.Col)
	assert.Contains(t, e.Message, `"y"`)
	//
	_, err = f.Parse("a", "xyz")
	require.Error(t, err)
	t.Logf("error: %v", err)
	assert.True(t, errors.Is(err, ruleforge.ErrParseFailed))
	assert.Equal(t, 3, err.(*ruleforge.Error).Col)
	f, _ = Compile(`a = "x" "y"`, Partial(true))
	tr, err := f.Parse("a", "xyz")
	require.NoError(t, err)
	assert.Equal(t, 2, tr.Len(tr.Root))
}

func TestIterationAndPassThrough(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.forger")
	defer teardown()
	//
	f, err := Compile(`
digit = '0123456789'
list  = "[" $x:digit ("," $x:digit)* "]"
paren = "(" list ")"
pair  = digit digit
`)
	require.NoError(t, err)
	actions := eval.Actions{
		"digit": atoi,
		"list": func(args *eval.Args, _ string) (interface{}, error) {
			return args.Value("x").(*eval.List).Values()
		},
	}
	v, err := f.Evaluate("list", "[1,2,3]", actions)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1, 2, 3}, v)
	v, err = f.Evaluate("paren", "([4,5])", actions)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{4, 5}, v)
	_, err = f.Evaluate("pair", "12", actions)
	assert.True(t, errors.Is(err, ruleforge.ErrNoAction), "have %v", err)
	assert.Equal(t, ruleforge.UnimplementedAction, ruleforge.KindOf(err))
}

func TestDefaultValues(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.forger")
	defer teardown()
	//
	f, err := Compile("digit = '0123456789'\n" +
		"version = $major:digit (\".\" $minor:digit)? {$minor:digit(`0`)}")
	require.NoError(t, err)
	actions := eval.Actions{
		"digit": atoi,
		"version": func(args *eval.Args, _ string) (interface{}, error) {
			minor := args.Value("minor")
			if l, ok := minor.(*eval.List); ok {
				minor, _ = l.At(0)
			}
			return fmt.Sprintf("%d.%d", args.Value("major"), minor), nil
		},
	}
	v, err := f.Evaluate("version", "3", actions)
	require.NoError(t, err)
	assert.Equal(t, "3.0", v)
	v, err = f.Evaluate("version", "3.7", actions)
	require.NoError(t, err)
	assert.Equal(t, "3.7", v)
}

func TestDirectives(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.forger")
	defer teardown()
	//
	digits := func(input string, offset int, args string) (int, bool) {
		n, err := strconv.Atoi(args)
		if err != nil || offset+n > len(input) {
			return 0, false
		}
		for _, c := range input[offset : offset+n] {
			if c < '0' || c > '9' {
				return 0, false
			}
		}
		return n, true
	}
	f, err := Compile(`
last  = "x" @eof()
code  = "#" @digits(3)
`, Partial(true), WithDirective("digits", digits))
	require.NoError(t, err)
	_, err = f.Parse("last", "x")
	assert.NoError(t, err)
	_, err = f.Parse("last", "xx")
	assert.True(t, errors.Is(err, ruleforge.ErrParseFailed), "have %v", err)
	tr, err := f.Parse("code", "#1234")
	require.NoError(t, err)
	assert.Equal(t, 4, tr.Len(tr.Root))
	_, err = f.Parse("code", "#12")
	assert.Error(t, err)
}

func TestPeek(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.forger")
	defer teardown()
	//
	f, err := Compile(`num = '0123456789'+; list = $n:num ("," $n:num)*`)
	require.NoError(t, err)
	var seen []string
	observers := eval.Observers{
		"num": {"collect": func(args *eval.Args, text string) error {
			seen = append(seen, text)
			return nil
		}},
	}
	require.NoError(t, f.Peek("list", "1,22,333", observers, "collect"))
	assert.Equal(t, []string{"1", "22", "333"}, seen)
	seen = nil
	require.NoError(t, f.Peek("list", "1,22,333", observers, "other"))
	assert.Empty(t, seen)
}

func TestGoTokens(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.forger")
	defer teardown()
	//
	f, err := Compile(`sum = $x:INT ("+" $x:INT)*`, WithTokens(scanner.GoTokenizer()))
	require.NoError(t, err)
	v, err := f.Evaluate("sum", "1 + 22 +333", eval.Actions{
		"sum": func(args *eval.Args, _ string) (interface{}, error) {
			total := 0
			err := args.Value("x").(*eval.List).Each(func(_ int, v interface{}) error {
				n, err := strconv.Atoi(strings.TrimSpace(v.(string)))
				total += n
				return err
			})
			return total, err
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 356, v)
}

func TestLexmachineTokens(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.forger")
	defer teardown()
	//
	ids := map[string]int{"NUM": scanner.Int, "ID": scanner.Ident, "(": 10, ")": 11}
	lm, err := lexmach.NewLMAdapter(func(lexer *lexmachine.Lexer) {
		lexer.Add([]byte(`[0-9]+`), lexmach.MakeToken("NUM", ids["NUM"]))
		lexer.Add([]byte(`[a-z]+`), lexmach.MakeToken("ID", ids["ID"]))
		lexer.Add([]byte(`( |\t|\n)+`), lexmach.Skip)
	}, []string{"(", ")"}, nil, ids)
	require.NoError(t, err)
	f, err := Compile(`
call = $fn:ID "(" ($arg:NUM)* ")"
`, WithTokens(lm))
	require.NoError(t, err)
	v, err := f.Evaluate("call", "max( 1 22  3)", eval.Actions{
		"call": func(args *eval.Args, _ string) (interface{}, error) {
			vs, err := args.Value("arg").(*eval.List).Values()
			return fmt.Sprintf("%s%v", args.Text("fn"), vs), err
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "max[ 1  22   3]", v)
}

func TestRuleTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.forger")
	defer teardown()
	//
	assert.Empty(t, New().RuleTable())
	f, err := Compile(calc + "list(sep) = $n:num{1,3} (\",\" num)?\n")
	require.NoError(t, err)
	table := f.RuleTable()
	t.Logf("\n%s", table)
	assert.Contains(t, table, "expr ↺")
	assert.Contains(t, table, `$v1:expr "+" $v2:num`)
	assert.Contains(t, table, "list(sep)")
	assert.Contains(t, table, `$n:num{1,3} ("," num)?`)
}
