/*
Package ruleforge is a runtime parser generator.

RuleForge takes a BNF-like grammar as data, compiles it into a namespace of
rules and parses programs by interpreting the grammar tree. There is no code
generation step. Parsing is recursive descent with memoization, longest-match
resolution of alternatives and support for left-recursive rules. Parse trees
are turned into values by user supplied actions, keyed by rule name.
Package structure is as follows:

■ bnf: Package bnf holds the grammar tree (an arena of grammar nodes) and the
hierarchical rule namespace.

■ ptree: Package ptree holds parse trees of programs.

■ match: Package match implements the test/parse protocol and the memo cache.

■ leftrec: Package leftrec finds left-recursive rules and prepares them for
seed growing.

■ eval: Package eval evaluates parse trees with semantic actions.

■ meta: Package meta reads grammar text.

■ forger: Package forger bundles everything into a small facade.

The base package contains data types which are used throughout all the other
packages: spans, tokens and errors.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package ruleforge
