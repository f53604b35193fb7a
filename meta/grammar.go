package meta

import (
	"sync"

	"github.com/npillmayer/ruleforge/bnf"
	"github.com/npillmayer/ruleforge/leftrec"
)

const (
	lower  = "abcdefghijklmnopqrstuvwxyz"
	upper  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits = "0123456789"
)

var bootstrap struct {
	once sync.Once
	g    *bnf.Grammar
	res  *bnf.Resolution
	err  error
}

// Grammar returns the grammar for grammar text. It is built on first use.
func Grammar() (*bnf.Grammar, *bnf.Resolution, error) {
	bootstrap.once.Do(func() {
		bootstrap.g, bootstrap.err = buildMeta()
		if bootstrap.err == nil {
			start := bootstrap.g.Namespace().Lookup("grammar")
			bootstrap.res, bootstrap.err = leftrec.Resolve(bootstrap.g, start)
		}
		if bootstrap.err != nil {
			tracer().Errorf("cannot build meta grammar: %v", bootstrap.err)
		}
	})
	return bootstrap.g, bootstrap.res, bootstrap.err
}

func buildMeta() (*bnf.Grammar, error) {
	b := bnf.NewBuilder("meta")
	g := b.G()
	lit, ref, seq := g.Literal, g.Ref, g.Seq
	anchor := g.Anchored
	escaped := func(quote string) bnf.Handle {
		return g.Star(g.Choice(seq(lit(`\`), g.Wildcard()), g.CharSet(quote+`\`, true)))
	}
	//
	// whitespace
	blank := g.Choice(g.CharSet(" \t\r", false), lit("\n"), ref("comment"))
	b.Rule("comment.line", seq(lit("//"), g.Star(g.CharSet("\n", true))))
	b.Rule("comment.block", seq(lit("/*"), g.Star(seq(g.Not(lit("*/")), g.Wildcard())), lit("*/")))
	b.Rule("ws", g.Skip(blank, "\n"))
	b.Rule("wsnl", g.Skip(blank, ""))
	b.Rule("sep", g.Skip(g.Choice(blank, lit(";")), ""))
	ws, wsnl := ref("ws"), ref("wsnl")
	//
	// names
	b.Rule("ident", seq(g.CharSet(lower+upper+"_", false), g.Star(g.CharSet(lower+upper+digits+"_", false))))
	b.Rule("dotted", seq(ref("ident"), g.Star(seq(lit("."), ref("ident")))))
	b.Rule("int", g.Plus(g.CharSet(digits, false)))
	//
	// statements
	b.Rule("grammar", seq(ref("sep"),
		g.Option(seq(anchor("s", ref("statement")), g.Star(seq(ref("sep"), anchor("s", ref("statement")))))),
		ref("sep")))
	b.Rule("statement", seq(anchor("name", ref("dotted")), ws, g.Option(anchor("params", ref("params"))),
		ws, lit("="), wsnl, anchor("rhs", ref("choice"))))
	b.Rule("params", seq(lit("("), wsnl,
		g.Option(seq(anchor("p", ref("ident")), g.Star(seq(wsnl, lit(","), wsnl, anchor("p", ref("ident")))))),
		wsnl, lit(")")))
	//
	// expressions
	b.Rule("choice", seq(anchor("alt", ref("sequence")),
		g.Star(seq(wsnl, lit("|"), wsnl, anchor("alt", ref("sequence"))))))
	b.Rule("sequence", seq(anchor("t", ref("term")), g.Star(seq(ws, anchor("t", ref("term"))))))
	b.Rule("term.anchored", seq(lit("$"), anchor("name", ref("ident")), lit(":"), anchor("body", ref("unary"))))
	b.Rule("term.named", seq(lit("$"), g.Option(lit(":")), anchor("ref", ref("dotted")), g.Not(lit(":"))))
	b.Rule("term.plain", anchor("body", ref("unary")))
	b.Rule("unary.not", seq(lit("!"), ws, anchor("body", ref("unary"))))
	b.Rule("unary.and", seq(lit("&"), ws, anchor("body", ref("unary"))))
	b.Rule("unary.postfix", seq(anchor("atom", ref("atom")), g.Star(anchor("suffix", ref("suffix")))))
	b.Rule("suffix.star", lit("*"))
	b.Rule("suffix.plus", lit("+"))
	b.Rule("suffix.option", lit("?"))
	b.Rule("suffix.bounds", seq(lit("{"), ws, anchor("min", ref("int")),
		g.Option(seq(ws, anchor("comma", lit(",")), ws, g.Option(anchor("max", ref("int"))))), ws, lit("}")))
	//
	// atoms
	b.Rule("atom.string", seq(lit(`"`), anchor("s", escaped(`"`)), lit(`"`)))
	b.Rule("atom.istring", seq(lit(`i"`), anchor("s", escaped(`"`)), lit(`"`)))
	b.Rule("atom.charset", seq(lit("'"), g.Option(anchor("neg", lit("^"))), anchor("s", escaped("'")), lit("'")))
	b.Rule("atom.any", lit("."))
	b.Rule("atom.group", g.Group(true, lit("("), ws, anchor("body", ref("choice")), ws, lit(")")))
	b.Rule("atom.defaults", seq(lit("{"), wsnl, anchor("d", ref("default")),
		g.Star(seq(wsnl, lit(","), wsnl, anchor("d", ref("default")))), wsnl, lit("}")))
	b.Rule("default", seq(lit("$"), anchor("anchor", ref("ident")), lit(":"), anchor("rule", ref("dotted")),
		lit("("), lit("`"), anchor("literal", g.Star(g.CharSet("`", true))), lit("`"), lit(")")))
	b.Rule("atom.directive", seq(lit("@"), anchor("name", ref("dotted")),
		lit("("), anchor("args", g.Star(g.CharSet(")", true))), lit(")")))
	// a name followed by '=' starts the next rule
	b.Rule("atom.ref", seq(anchor("name", ref("dotted")),
		g.Not(seq(ws, g.Option(ref("params")), ws, lit("=")))))
	return b.Grammar()
}
