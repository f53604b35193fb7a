package match

import (
	"fmt"
	"strings"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/npillmayer/ruleforge"
	"github.com/npillmayer/ruleforge/bnf"
	"github.com/npillmayer/ruleforge/ptree"
	"github.com/npillmayer/ruleforge/scanner"
	"github.com/npillmayer/schuko/gconf"
)

// Result is the outcome of testing a grammar node at an input offset.
type Result struct {
	OK     bool
	Length int // number of bytes consumed
}

var fail = Result{}

// Directive matches an extension construct @name(args) at an input offset.
type Directive func(input string, offset int, args string) (length int, ok bool)

// DefaultMaxDepth is the default limit for nested rule calls.
const DefaultMaxDepth = 10000

type key struct {
	h      bnf.Handle
	offset int
	seed   int
	inBr   bool // inside brackets
}

type entry struct {
	Result
	inProgress bool
	digest     string
}

// seed is a provisional match of a left-recursive rule family. Seeds are
// interned by value; a seed id of 0 denotes the absence of a seed.
type seed struct {
	target *bnf.Entry
	offset int
	length int
	outer  int // seed active when this seed was planted
}

type tokenAt struct {
	tok ruleforge.Token
	n   int
	err error
}

// Session holds the state for matching one input against one grammar: the memo
// cache, the seeds of left-recursive rules, the parse tree and the cursor.
// Sessions are not safe for concurrent use.
type Session struct {
	G          *bnf.Grammar
	res        *bnf.Resolution
	input      string
	source     string
	cursor     int
	tree       *ptree.Tree
	memo       map[key]*entry
	seeds      []seed
	seedIDs    map[seed]int
	tokens     scanner.TokenSource
	tokCache   map[int]tokenAt
	directives map[string]Directive
	firstMatch bool
	integrity  bool
	verifying  bool
	probing    bool
	depth      int
	maxDepth   int
	lookahead  int
	furthest   int
	expected   *treeset.Set
	tests      int
	hits       int
}

// Option configures a session.
type Option func(*Session)

// FirstMatch lets choices and rule families select the first successful
// alternative instead of the longest one.
func FirstMatch(b bool) Option {
	return func(s *Session) {
		s.firstMatch = b
	}
}

// Integrity switches memo integrity checks on or off.
func Integrity(b bool) Option {
	return func(s *Session) {
		s.integrity = b
	}
}

// WithTokens sets a token source for token terminals. With a token source,
// literals are matched against the lexemes of tokens.
func WithTokens(ts scanner.TokenSource) Option {
	return func(s *Session) {
		s.tokens = ts
	}
}

// WithDirective registers a handler for directive @name(…).
func WithDirective(name string, d Directive) Option {
	return func(s *Session) {
		s.directives[name] = d
	}
}

// MaxDepth sets the limit for nested rule calls.
func MaxDepth(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// SourceName sets the name of the input used in error messages.
func SourceName(name string) Option {
	return func(s *Session) {
		s.source = name
	}
}

// NewSession creates a session for matching input against grammar g. res is
// the left-recursion resolution for the entry point to be parsed; it may be
// nil for grammars without left recursion.
func NewSession(g *bnf.Grammar, res *bnf.Resolution, input string, opts ...Option) *Session {
	s := &Session{
		G:          g,
		res:        res,
		input:      input,
		source:     "input",
		tree:       ptree.New(input),
		memo:       make(map[key]*entry),
		seeds:      make([]seed, 1),
		seedIDs:    make(map[seed]int),
		tokCache:   make(map[int]tokenAt),
		directives: make(map[string]Directive),
		integrity:  gconf.GetBool("ruleforge.memo-integrity"),
		maxDepth:   DefaultMaxDepth,
		furthest:   -1,
		expected:   treeset.NewWithStringComparator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Input returns the input text of the session.
func (s *Session) Input() string {
	return s.input
}

// Tree returns the parse tree built by calls to Parse.
func (s *Session) Tree() *ptree.Tree {
	return s.tree
}

// Cursor returns the offset where the next call to Parse starts.
func (s *Session) Cursor() int {
	return s.cursor
}

// Seek moves the cursor.
func (s *Session) Seek(offset int) {
	if offset < 0 {
		offset = 0
	} else if offset > len(s.input) {
		offset = len(s.input)
	}
	s.cursor = offset
}

// Test finds out if grammar node h matches the input at offset, and how many
// bytes it would consume. Test does not move the cursor.
func (s *Session) Test(h bnf.Handle, offset int) (r Result, err error) {
	defer s.recoverError(&err)
	r = s.test(h, offset, 0, false)
	return
}

// Parse matches grammar node h at the cursor, builds a parse tree node for it
// and advances the cursor. The new node becomes the root of the session's tree.
// If h does not match, Parse returns an error naming the furthest position any
// terminal was tried at, and the terminals expected there.
func (s *Session) Parse(h bnf.Handle) (n int, err error) {
	defer s.recoverError(&err)
	r := s.test(h, s.cursor, 0, false)
	if !r.OK {
		return ptree.None, s.failure(h)
	}
	n = s.parse(h, s.cursor, 0, false)
	s.tree.Root, s.tree.Base = n, s.cursor
	s.cursor += r.Length
	tracer().Infof("parsed %d of %d bytes with %d tests and %d cache hits",
		r.Length, len(s.input), s.tests, s.hits)
	return n, nil
}

// Expected returns the furthest offset a terminal was tried at without
// success, and a sorted list of the terminals tried there.
func (s *Session) Expected() (int, []string) {
	vals := s.expected.Values()
	exp := make([]string, len(vals))
	for i, v := range vals {
		exp[i] = v.(string)
	}
	return s.furthest, exp
}

func (s *Session) failure(h bnf.Handle) *ruleforge.Error {
	what := s.G.Node(h).String()
	if n := s.G.Node(h); n.Kind == bnf.Ref {
		what = n.Text
	}
	at, exp := s.Expected()
	if at < 0 {
		at = s.cursor
	}
	msg := fmt.Sprintf("no match for %s at offset %d", what, at)
	if len(exp) > 0 { // empty if the failure is a lookahead verdict
		msg = fmt.Sprintf("no match for %s, expected one of %s", what, strings.Join(exp, " "))
	}
	return ruleforge.Errorf(ruleforge.Usage, ruleforge.ErrParseFailed, "%s", msg).At(s.source, s.input, at)
}

// recoverError turns panics carrying an *ruleforge.Error into errors. After a
// recovered error, the memo cache is no longer trustworthy and is dropped.
func (s *Session) recoverError(err *error) {
	if r := recover(); r != nil {
		e, ok := r.(*ruleforge.Error)
		if !ok {
			panic(r)
		}
		tracer().Errorf("%v", e)
		s.memo = make(map[key]*entry)
		s.depth, s.lookahead, s.verifying = 0, 0, false
		*err = e
	}
}

// --- Memoization -------------------------------------------------------------

// test is the memoizing wrapper around match. Seeds which cannot be consumed
// at offset are dropped before consulting the cache.
func (s *Session) test(h bnf.Handle, offset, sd int, inBr bool) Result {
	if sd != 0 && s.seeds[sd].offset < offset {
		sd = 0
	}
	k := key{h: h, offset: offset, seed: sd, inBr: inBr}
	if e, ok := s.memo[k]; ok {
		if e.inProgress {
			tracer().Debugf("node %d at %d re-entered while in progress", h, offset)
			return fail
		}
		s.hits++
		if s.integrity && !s.verifying {
			s.verify(k, e)
		}
		return e.Result
	}
	s.tests++
	e := &entry{inProgress: true}
	s.memo[k] = e
	r := s.match(h, offset, sd, inBr)
	e.Result, e.inProgress = r, false
	if s.integrity {
		e.digest = digest(r)
	}
	return r
}

// verify recomputes a cached result and compares it to the cache entry.
func (s *Session) verify(k key, e *entry) {
	s.verifying, e.inProgress = true, true
	fresh := s.match(k.h, k.offset, k.seed, k.inBr)
	s.verifying, e.inProgress = false, false
	stored := digest(e.Result)
	if stored == e.digest && digest(fresh) == stored && fresh == e.Result {
		return
	}
	msg := fmt.Sprintf(`node %d (%s) at offset %d, seed %d: cached %+v, recomputed %+v.
The fault may be in the serialization of results, in the storage of cache
entries, or in the comparison of cache keys`,
		k.h, s.G.Node(k.h), k.offset, k.seed, e.Result, fresh)
	tracer().Errorf(msg)
	if gconf.GetBool("panic-on-integrity-error") {
		panic(`Memo cache integrity violated.

Configuration flag panic-on-integrity-error is set to true. It is aimed at
helping to debug the matching engine. However, if this is a production
environment and you did not expect this to panic, please unset
panic-on-integrity-error to its default (false).

` + msg)
	}
	panic(ruleforge.Errorf(ruleforge.MemoIntegrity, ruleforge.ErrIntegrity, msg))
}

func digest(r Result) string {
	h, err := structhash.Hash(r, 1)
	if err != nil {
		panic(ruleforge.Errorf(ruleforge.MemoIntegrity, ruleforge.ErrIntegrity,
			"cannot serialize memo entry %+v: %v", r, err))
	}
	return h
}

// --- Seeds ---------------------------------------------------------------------

// seedID interns a seed and returns its id.
func (s *Session) seedID(target *bnf.Entry, offset, length, outer int) int {
	sd := seed{target: target, offset: offset, length: length, outer: outer}
	if id, ok := s.seedIDs[sd]; ok {
		return id
	}
	s.seeds = append(s.seeds, sd)
	id := len(s.seeds) - 1
	s.seedIDs[sd] = id
	return id
}

// seedFor searches the chain of active seeds for a seed of target planted
// at offset.
func (s *Session) seedFor(target *bnf.Entry, offset, sd int) int {
	for id := sd; id != 0; id = s.seeds[id].outer {
		if s.seeds[id].target == target && s.seeds[id].offset == offset {
			return id
		}
	}
	return 0
}

// --- Diagnostics ---------------------------------------------------------------

func (s *Session) expect(n *bnf.Node, offset int) {
	if s.lookahead > 0 || s.verifying || s.probing {
		return
	}
	if offset > s.furthest {
		s.furthest = offset
		s.expected.Clear()
	}
	if offset == s.furthest {
		d := n.String()
		if n.Anchor != "" {
			d = strings.TrimPrefix(d, "$"+n.Anchor+":")
		}
		s.expected.Add(d)
	}
}

func (s *Session) enter(e *bnf.Entry) {
	s.depth++
	if s.depth > s.maxDepth {
		panic(ruleforge.Errorf(ruleforge.GrammarSemantics, ruleforge.ErrRecursionLimit,
			"rule calls nested more than %d levels deep", s.maxDepth).For(e.Name))
	}
}

func (s *Session) leave() {
	s.depth--
}
