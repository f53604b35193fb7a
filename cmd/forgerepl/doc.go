/*
Command forgerepl is an interactive command line tool for grammar development.
It loads a grammar, then parses every line entered against an entry point and
prints the parse tree.

Usage:

	forgerepl [-g grammar-file] [-e entry] [-c project.toml] [--trace Debug] [input]

Lines starting with a colon are commands:

	:rules         list the rules of the grammar
	:entry NAME    start parsing with rule NAME
	:load FILE     load a grammar file
	:quit          leave

A project file collects settings in TOML format; flags given on the command
line take precedence:

	grammar     = "calc.grammar"   # relative to the project file
	entry       = "expr"
	first_match = false
	partial     = false
	integrity   = false
	tokens      = "go"             # token dialect, "" for characters
	trace       = "Info"

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ruleforge.repl'
func tracer() tracing.Trace {
	return tracing.Select("ruleforge.repl")
}
