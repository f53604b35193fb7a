/*
Package meta reads grammars from text.

Grammar text is a list of rules, separated by semicolons or newlines:

	digits = '0123456789'
	num    = digits+            // a number
	expr   = term
	expr.add = $v1:expr "+" $v2:term   // variant of expr

A rule name containing a dot declares a variant of the rule named by its
prefix: every reference to expr matches expr.add as well.

Right-hand sides are built from

	"text"        literal, with \ escapes
	i"text"       case-insensitive literal
	'abc'         one of the characters a, b or c; '^abc' negates
	.             any character
	name          reference to a rule (or to a token type, see below)
	( … )         group; newlines are insignificant within parentheses
	a b           sequence
	a | b         choice
	a* a+ a?      repetitions
	a{2,5} a{2} a{2,}   bounded repetitions, bounds are inclusive
	!a &a         negative and positive lookahead
	$x:a          binds a to anchor x
	$name         binds a reference to name to an anchor of the same name
	{$x:rule(`literal`), …}   default values for anchors
	@name(args)   directive

Comments are line comments starting with // and block comments delimited
by slash-star and star-slash. A rule may declare parameters,
name(a, b) = …, which are recorded but carry no meaning.

Grammar text is parsed with the matching engine of package match, using a
grammar for grammars which is built once with a bnf.Builder. Grammar errors
carry line and column of their position in the text.

If a token source is configured, references to names which are not rules but
token types become token terminals.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package meta

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ruleforge.meta'.
func tracer() tracing.Trace {
	return tracing.Select("ruleforge.meta")
}
