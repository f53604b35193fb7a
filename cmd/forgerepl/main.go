package main

import (
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

// tracing keys of the library packages
var traceKeys = []string{
	"ruleforge.tree", "ruleforge.bnf", "ruleforge.ptree", "ruleforge.match", "ruleforge.leftrec", "ruleforge.eval",
	"ruleforge.meta", "ruleforge.scanner", "ruleforge.forger", "ruleforge.repl",
}

// main starts an interactive CLI, where users may enter programs to be
// parsed with a grammar loaded from a file. The parse tree of each line is
// printed to the terminal.
func main() {
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	fs := newFlags()
	if err := fs.Parse(os.Args[1:]); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
	tracer().SetTraceLevel(tracing.LevelInfo) // will set the correct level later
	proj, err := settings(fs)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
	pterm.Info.Println("Welcome to the RuleForge REPL")
	setTraceLevel(proj.Trace)
	tracer().Infof("Trace level is %s", proj.Trace)
	//
	repl, err := readline.New("forge> ")
	if err != nil {
		tracer().Errorf("%v", err)
		os.Exit(3)
	}
	intp := &Intp{project: proj, entry: proj.Entry, repl: repl}
	if proj.Grammar != "" {
		if err := intp.load(proj.Grammar); err != nil {
			pterm.Error.Println(err.Error())
			os.Exit(2)
		}
	}
	if input := strings.TrimSpace(strings.Join(fs.Args(), " ")); input != "" {
		tracer().Infof("Input argument is %q", input)
		intp.Eval(input)
	}
	tracer().Infof("Quit with <ctrl>D or :quit")
	intp.REPL()
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func setTraceLevel(l string) {
	level := tracing.TraceLevelFromString(l)
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}
}
