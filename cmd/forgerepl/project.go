package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/npillmayer/ruleforge/forger"
	"github.com/npillmayer/ruleforge/scanner"
	"github.com/spf13/pflag"
)

// Project holds the settings of a REPL session.
type Project struct {
	Grammar    string `toml:"grammar"`
	Entry      string `toml:"entry"`
	FirstMatch bool   `toml:"first_match"`
	Partial    bool   `toml:"partial"`
	Integrity  bool   `toml:"integrity"`
	Tokens     string `toml:"tokens"`
	Trace      string `toml:"trace"`
}

// LoadProject reads a project file. A relative grammar path is taken relative
// to the directory of the project file.
func LoadProject(path string) (Project, error) {
	p := Project{Trace: "Info"}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("project file %s: %w", path, err)
	}
	if p.Grammar != "" && !filepath.IsAbs(p.Grammar) {
		p.Grammar = filepath.Join(filepath.Dir(path), p.Grammar)
	}
	tracer().Debugf("project %s: %+v", path, p)
	return p, nil
}

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("forgerepl", pflag.ContinueOnError)
	fs.StringP("grammar", "g", "", "Load the grammar from the given file.")
	fs.StringP("entry", "e", "", "Start parsing with the given rule.")
	fs.StringP("config", "c", "", "Read settings from the given TOML project file.")
	fs.String("trace", "Info", "Trace level [Debug|Info|Error].")
	fs.Bool("first-match", false, "Select the first matching alternative instead of the longest one.")
	fs.Bool("partial", false, "Accept input if a prefix of it matches.")
	fs.String("tokens", "", `Token dialect, "go" for Go tokens.`)
	return fs
}

// settings merges a project file, if given, with the flags set on the command
// line.
func settings(fs *pflag.FlagSet) (Project, error) {
	p := Project{Trace: "Info"}
	if config, _ := fs.GetString("config"); config != "" {
		var err error
		if p, err = LoadProject(config); err != nil {
			return p, err
		}
	}
	if fs.Lookup("grammar").Changed {
		p.Grammar, _ = fs.GetString("grammar")
	}
	if fs.Lookup("entry").Changed {
		p.Entry, _ = fs.GetString("entry")
	}
	if fs.Lookup("trace").Changed {
		p.Trace, _ = fs.GetString("trace")
	}
	if fs.Lookup("first-match").Changed {
		p.FirstMatch, _ = fs.GetBool("first-match")
	}
	if fs.Lookup("partial").Changed {
		p.Partial, _ = fs.GetBool("partial")
	}
	if fs.Lookup("tokens").Changed {
		p.Tokens, _ = fs.GetString("tokens")
	}
	return p, nil
}

// options translates project settings to forger options.
func (p Project) options() ([]forger.Option, error) {
	opts := []forger.Option{
		forger.FirstMatch(p.FirstMatch),
		forger.Partial(p.Partial),
		forger.Integrity(p.Integrity),
		forger.SourceName("input"),
	}
	if p.Grammar != "" {
		opts = append(opts, forger.GrammarName(filepath.Base(p.Grammar)))
	}
	switch p.Tokens {
	case "":
	case "go":
		opts = append(opts, forger.WithTokens(scanner.GoTokenizer(scanner.SkipComments(true))))
	default:
		return nil, fmt.Errorf("unknown token dialect %q", p.Tokens)
	}
	return opts, nil
}
