// Package scope tracks nesting during asynchronous re-expansion: the
// current title, the parameter bindings, the depth, and the ancestry used
// for loop detection.
//
// Scopes live in a Table owned by the parse. A scope refers to its parent
// by ID only, so discarding a finished expansion never keeps its ancestors
// alive and a released parent simply stops being reachable.
package scope

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/open-cli-collective/parsoid-go/pkg/diag"
	"github.com/open-cli-collective/parsoid-go/pkg/token"
)

// DefaultMaxDepth limits nested expansion when Env.MaxDepth is unset.
const DefaultMaxDepth = 40

var (
	// ErrRecursiveExpansion is returned when a title reappears in its own ancestry.
	ErrRecursiveExpansion = errors.New("recursive expansion")
	// ErrDepthExceeded is returned when nesting would exceed the depth limit.
	ErrDepthExceeded = errors.New("expansion depth limit exceeded")
)

// ExpansionError describes a rejected child expansion.
type ExpansionError struct {
	Err   error    // ErrRecursiveExpansion or ErrDepthExceeded
	Title string   // title that was about to be expanded
	Chain []string // ancestry from the innermost scope to the root
}

func (e *ExpansionError) Error() string {
	return fmt.Sprintf("%v at %s (via %s)", e.Err, e.Title, strings.Join(e.Chain, " <- "))
}

func (e *ExpansionError) Unwrap() error {
	return e.Err
}

// Env is the per-parse environment shared by every scope of one parse.
type Env struct {
	MaxDepth int
	Logger   *slog.Logger
	Diags    *diag.Log
}

// NewEnv creates an environment with defaults filled in.
func NewEnv(maxDepth int, logger *slog.Logger) *Env {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Env{MaxDepth: maxDepth, Logger: logger, Diags: diag.NewLog(logger)}
}

// ID identifies a scope within its table.
type ID uint64

// Table owns the scopes of one parse.
type Table struct {
	scopes map[ID]*Scope
	next   ID
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{scopes: make(map[ID]*Scope)}
}

func (t *Table) add(s *Scope) *Scope {
	t.next++
	s.id = t.next
	s.table = t
	t.scopes[s.id] = s
	return s
}

// NewRoot creates a depth-0 scope for a top-level parse of title.
func (t *Table) NewRoot(env *Env, title string, params token.Attributes) *Scope {
	return t.add(&Scope{title: title, params: params, env: env})
}

// Lookup returns a live scope by ID.
func (t *Table) Lookup(id ID) (*Scope, bool) {
	s, ok := t.scopes[id]
	return s, ok
}

// Release discards a scope once its expansion emitted its final message.
func (t *Table) Release(s *Scope) {
	delete(t.scopes, s.id)
}

// Len returns the number of live scopes.
func (t *Table) Len() int {
	return len(t.scopes)
}

// Scope is one level of expansion.
type Scope struct {
	id     ID
	parent ID // zero for roots
	depth  int
	title  string
	params token.Attributes
	env    *Env
	table  *Table
}

func (s *Scope) ID() ID                   { return s.id }
func (s *Scope) Depth() int               { return s.depth }
func (s *Scope) Title() string            { return s.title }
func (s *Scope) Params() token.Attributes { return s.params }
func (s *Scope) Env() *Env                { return s.env }

// IsInclude reports whether the scope belongs to a nested expansion.
func (s *Scope) IsInclude() bool {
	return s.depth > 0
}

// Parent returns the parent scope while it is still live.
func (s *Scope) Parent() (*Scope, bool) {
	if s.parent == 0 {
		return nil, false
	}
	return s.table.Lookup(s.parent)
}

// Chain returns the titles from s up to the root.
func (s *Scope) Chain() []string {
	var out []string
	for cur, ok := s, true; ok; cur, ok = cur.Parent() {
		out = append(out, cur.title)
	}
	return out
}

// Check reports whether expanding title below s would loop or nest too deep.
func (s *Scope) Check(title string) error {
	if s.depth+1 > s.env.MaxDepth {
		return &ExpansionError{Err: ErrDepthExceeded, Title: title, Chain: s.Chain()}
	}
	for cur, ok := s, true; ok; cur, ok = cur.Parent() {
		if cur.title == title {
			return &ExpansionError{Err: ErrRecursiveExpansion, Title: title, Chain: s.Chain()}
		}
	}
	return nil
}

// NewChild creates the scope for expanding title with params one level below s.
func (s *Scope) NewChild(title string, params token.Attributes) (*Scope, error) {
	if err := s.Check(title); err != nil {
		return nil, err
	}
	return s.table.add(&Scope{
		parent: s.id,
		depth:  s.depth + 1,
		title:  title,
		params: params,
		env:    s.env,
	}), nil
}

// Release discards s from its table.
func (s *Scope) Release() {
	s.table.Release(s)
}

// Param returns the binding for name (last binding wins).
func (s *Scope) Param(name string) ([]*token.Token, bool) {
	return s.params.Get(name)
}
