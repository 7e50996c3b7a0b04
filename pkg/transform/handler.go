// Package transform runs token chunks through registered handlers in
// ascending rank order.
//
// Handlers are registered per token kind (and tag name for tags) or for any
// token. For every token the manager merges the kind-specific and wildcard
// handlers ranked above the chunk's current rank and calls them in order
// until one rewrites the token. Rewritten output is reprocessed by the
// handlers ranked after the one that produced it.
//
// SyncManager supports rewrite-only handlers. AsyncManager additionally
// lets a handler defer its output to a nested expansion; the accumulator
// package keeps such output in document order.
package transform

import (
	"github.com/open-cli-collective/parsoid-go/pkg/pipeline"
	"github.com/open-cli-collective/parsoid-go/pkg/scope"
	"github.com/open-cli-collective/parsoid-go/pkg/token"
)

// Handler transforms one token. Returning an error marks a content
// problem: the token passes through unchanged and a diagnostic is
// recorded.
type Handler func(ctx *Context, tok *token.Token) (Result, error)

// Context is what a handler sees of the manager calling it.
type Context struct {
	Scope        *scope.Scope
	Prev         *token.Token // last token the manager emitted, nil at the start
	Registration *Registration
}

// Env returns the environment of the current parse.
func (c *Context) Env() *scope.Env {
	return c.Scope.Env()
}

// Launcher starts a deferred expansion. It must eventually call ret with a
// final message; it may call ret with non-final messages before that, and
// may do so before it returns.
type Launcher func(ret pipeline.Receiver[token.Message]) error

type resultKind int

const (
	resultPass resultKind = iota
	resultReplace
	resultAsync
)

// Result is the outcome of a handler call.
type Result struct {
	kind   resultKind
	tokens []*token.Token
	launch Launcher
}

// Pass leaves the token unchanged and lets the next handler see it.
func Pass() Result {
	return Result{kind: resultPass}
}

// Replace substitutes toks for the token. The replacement is processed by
// the handlers ranked after the current one.
func Replace(toks ...*token.Token) Result {
	return Result{kind: resultReplace, tokens: toks}
}

// Drop removes the token.
func Drop() Result {
	return Result{kind: resultReplace}
}

// Async defers the token's output to an expansion started by launch.
// Only the AsyncManager accepts it.
func Async(launch Launcher) Result {
	return Result{kind: resultAsync, launch: launch}
}

// IsPass reports whether the result leaves the token unchanged.
func (r Result) IsPass() bool {
	return r.kind == resultPass
}

// Tokens returns the replacement of a Replace result.
func (r Result) Tokens() []*token.Token {
	return r.tokens
}
