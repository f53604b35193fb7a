package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/ruleforge/bnf"
	"github.com/npillmayer/ruleforge/forger"
	"github.com/npillmayer/ruleforge/ptree"
	"github.com/pterm/pterm"
)

// Intp is our interpreter object
type Intp struct {
	project Project
	forger  *forger.Forger
	entry   string
	repl    *readline.Instance
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if quit, _ := intp.Eval(line); quit {
			break
		}
	}
	println("Good bye!")
}

// Eval executes a command or parses a line of input with the current grammar
// and entry point.
func (intp *Intp) Eval(line string) (bool, error) {
	if strings.HasPrefix(line, ":") {
		return intp.execute(strings.Fields(line[1:]))
	}
	if intp.forger == nil {
		return false, report(fmt.Errorf("no grammar loaded, use :load FILE"))
	}
	if intp.entry == "" {
		return false, report(fmt.Errorf("no entry point, use :entry NAME"))
	}
	t, err := intp.forger.Parse(intp.entry, line)
	if err != nil {
		return false, report(err)
	}
	tracer().Debugf("parse tree:\n%s", t.Dump(intp.forger.Grammar()))
	root := pterm.NewTreeFromLeveledList(leveled(intp.forger.Grammar(), t))
	pterm.DefaultTree.WithRoot(root).Render()
	return false, nil
}

func (intp *Intp) execute(args []string) (bool, error) {
	if len(args) == 0 {
		return false, nil
	}
	switch args[0] {
	case "quit", "q":
		return true, nil
	case "rules":
		if intp.forger == nil {
			return false, report(fmt.Errorf("no grammar loaded"))
		}
		pterm.Println(intp.forger.RuleTable())
	case "entry":
		if len(args) != 2 {
			return false, report(fmt.Errorf("usage: :entry NAME"))
		}
		if intp.forger != nil {
			if _, err := intp.forger.Entry(args[1]); err != nil {
				return false, report(err)
			}
		}
		intp.entry = args[1]
		pterm.Info.Println("entry point is " + intp.entry)
	case "load":
		if len(args) != 2 {
			return false, report(fmt.Errorf("usage: :load FILE"))
		}
		if err := intp.load(args[1]); err != nil {
			return false, report(err)
		}
	default:
		return false, report(fmt.Errorf("unknown command :%s", args[0]))
	}
	return false, nil
}

// load compiles a grammar file. The current entry point is kept if the new
// grammar defines it, otherwise the first rule becomes the entry point.
func (intp *Intp) load(filename string) error {
	text, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	proj := intp.project
	proj.Grammar = filename
	opts, err := proj.options()
	if err != nil {
		return err
	}
	f, err := forger.Compile(string(text), opts...)
	if err != nil {
		return err
	}
	intp.forger = f
	if _, err := f.Entry(intp.entry); intp.entry == "" || err != nil {
		intp.entry = ""
		if entries := f.Grammar().Namespace().Entries(); len(entries) > 0 {
			intp.entry = entries[0].Name
		}
	}
	pterm.Info.Println(fmt.Sprintf("loaded %s, entry point is %s", filename, intp.entry))
	return nil
}

func report(err error) error {
	pterm.Error.Println(err.Error())
	return err
}

// leveled lists the rule calls, anchored nodes and terminals of a parse tree,
// indented by nesting. Other nodes are left out.
func leveled(g *bnf.Grammar, t *ptree.Tree) pterm.LeveledList {
	var ll pterm.LeveledList
	var visit func(n, level int)
	visit = func(n, level int) {
		node := t.Node(n)
		k := g.Node(node.Grammar).Kind
		shown := node.Boundary || node.Anchor != "" || (k.Is(bnf.TerminalClass) && t.Len(n) > 0)
		if shown {
			ll = append(ll, pterm.LeveledListItem{Level: level, Text: label(g, t, n)})
			level++
		}
		for _, ch := range t.Children(n) {
			visit(ch, level)
		}
	}
	if t.Root != ptree.None {
		visit(t.Root, 0)
	}
	return ll
}

func label(g *bnf.Grammar, t *ptree.Tree, n int) string {
	node := t.Node(n)
	var name string
	if node.Rule != nil {
		name = node.Rule.Name
	} else {
		name = g.Node(node.Grammar).String()
	}
	if node.Anchor != "" && !strings.HasPrefix(name, "$") {
		name = "$" + node.Anchor + ":" + name
	}
	return fmt.Sprintf("%s %q", name, t.Matched(n))
}
