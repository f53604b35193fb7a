/*
Package forger bundles grammar reading, left-recursion resolution, matching
and evaluation into a small facade.

A Forger holds one grammar. Grammar text is compiled once; every rule family
is resolved for left recursion at definition time, so grammar errors are
reported before any program is parsed:

	f, err := forger.Compile(`digits = '0123456789'; num = digits+`)
	...
	v, err := f.Evaluate("num", "042", eval.Actions{
	    "num": func(args *eval.Args, text string) (interface{}, error) {
	        return strconv.Atoi(text)
	    },
	})
	// v == 42

Programs must be matched completely by the entry point, unless option Partial
is set. Failed parses report the entry point, the furthest position any
terminal was tried at and the terminals expected there.

Directive @eof() is built in: it matches the empty string at the end of the
input. Clients may register more directives with option WithDirective.

A Forger is not safe for concurrent use.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package forger

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ruleforge.forger'.
func tracer() tracing.Trace {
	return tracing.Select("ruleforge.forger")
}
