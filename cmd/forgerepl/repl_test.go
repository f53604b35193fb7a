package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const calc = `
num      = '0123456789'+
expr     = num
expr.add = $v1:expr "+" $v2:num
`

func TestSettings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.repl")
	defer teardown()
	//
	dir := t.TempDir()
	config := filepath.Join(dir, "calc.toml")
	err := os.WriteFile(config, []byte(`
grammar     = "calc.grammar"
entry       = "expr"
first_match = true
tokens      = "go"
`), 0644)
	require.NoError(t, err)
	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"-c", config, "--entry", "num", "--trace=Debug", "1+2"}))
	p, err := settings(fs)
	require.NoError(t, err)
	assert.Equal(t, Project{
		Grammar:    filepath.Join(dir, "calc.grammar"),
		Entry:      "num",
		FirstMatch: true,
		Tokens:     "go",
		Trace:      "Debug",
	}, p)
	assert.Equal(t, []string{"1+2"}, fs.Args())
	//
	p.Tokens = "lisp"
	_, err = p.options()
	assert.Error(t, err)
}

func TestLoadAndParse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.repl")
	defer teardown()
	//
	dir := t.TempDir()
	grammar := filepath.Join(dir, "calc.grammar")
	require.NoError(t, os.WriteFile(grammar, []byte(calc), 0644))
	intp := &Intp{}
	quit, err := intp.Eval("1+2")
	assert.False(t, quit)
	assert.Error(t, err, "no grammar loaded yet")
	_, err = intp.Eval(":load " + grammar)
	require.NoError(t, err)
	assert.Equal(t, "num", intp.entry, "first rule should become the entry point")
	_, err = intp.Eval(":entry nope")
	assert.Error(t, err)
	_, err = intp.Eval(":entry expr")
	require.NoError(t, err)
	_, err = intp.Eval("1+2")
	assert.NoError(t, err)
	_, err = intp.Eval("1+")
	assert.Error(t, err)
	_, err = intp.Eval(":rules")
	assert.NoError(t, err)
	quit, _ = intp.Eval(":quit")
	assert.True(t, quit)
	//
	tr, err := intp.forger.Parse("expr", "1+2")
	require.NoError(t, err)
	ll := leveled(intp.forger.Grammar(), tr)
	require.NotEmpty(t, ll)
	assert.Equal(t, pterm.LeveledListItem{Level: 0, Text: `expr.add "1+2"`}, ll[0])
	texts := make([]string, len(ll))
	for i, item := range ll {
		texts[i] = item.Text
	}
	assert.Contains(t, texts, `$v2:num "2"`)
}
