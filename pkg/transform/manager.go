package transform

import (
	"fmt"
	"log/slog"

	"github.com/open-cli-collective/parsoid-go/pkg/diag"
	"github.com/open-cli-collective/parsoid-go/pkg/rank"
	"github.com/open-cli-collective/parsoid-go/pkg/scope"
	"github.com/open-cli-collective/parsoid-go/pkg/token"
)

// core is the dispatch logic shared by both managers.
type core struct {
	Registry
	kind  string
	scope *scope.Scope
	prev  *token.Token
}

func newCore(kind string, phase rank.Phase, s *scope.Scope) core {
	if s == nil {
		s = scope.NewTable().NewRoot(scope.NewEnv(0, nil), "", token.Attributes{})
	}
	return core{
		Registry: newRegistry(phase, s.Env().Logger.With(slog.String("manager", kind))),
		kind:     kind,
		scope:    s,
	}
}

// SetScope points handlers at the expansion scope of the input.
func (c *core) SetScope(s *scope.Scope) {
	c.scope = s
}

// Scope returns the expansion scope handlers see.
func (c *core) Scope() *scope.Scope {
	return c.scope
}

// frame is a run of tokens still to be processed, all of which have
// already been through the handlers up to and including rank.
type frame struct {
	toks []*token.Token
	i    int
	rank rank.Rank
}

type workStack []*frame

func (w *workStack) push(toks []*token.Token, r rank.Rank) {
	if len(toks) > 0 {
		*w = append(*w, &frame{toks: toks, rank: r})
	}
}

// next pops the next token and the rank it has been processed up to.
func (w *workStack) next() (*token.Token, rank.Rank, bool) {
	for len(*w) > 0 {
		top := (*w)[len(*w)-1]
		if top.i < len(top.toks) {
			tok := top.toks[top.i]
			top.i++
			return tok, top.rank, true
		}
		*w = (*w)[:len(*w)-1]
	}
	return nil, 0, false
}

// apply runs the handlers ranked above min on tok until one of them
// changes it. The returned registration is nil when the token passed
// every handler.
func (c *core) apply(tok *token.Token, min rank.Rank, allowAsync bool) (Result, *Registration) {
	for _, reg := range c.handlersFor(tok, min) {
		res, err := c.invoke(reg, tok)
		if err == nil && res.kind == resultAsync && !allowAsync {
			err = ErrAsyncUnsupported
		}
		if err != nil {
			c.contentError(reg, tok, err)
			continue
		}
		if res.kind == resultPass {
			continue
		}
		if res.kind == resultReplace && len(res.tokens) == 1 && res.tokens[0] == tok {
			continue
		}
		return res, reg
	}
	return Pass(), nil
}

func (c *core) invoke(reg *Registration, tok *token.Token) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	ctx := &Context{Scope: c.scope, Prev: c.prev, Registration: reg}
	return reg.handler(ctx, tok)
}

func (c *core) contentError(reg *Registration, tok *token.Token, err error) {
	herr := &HandlerError{Handler: reg.Name, Rank: reg.Rank, Token: tok, Err: err}
	d := diag.Diagnostic{Kind: diag.KindHandlerContent, Message: herr.Error(), Title: c.scope.Title()}
	if r, ok := tok.Range(); ok {
		d.Start, d.End = r.Start, r.End
	}
	c.scope.Env().Diags.Add(d)
}

// replacement returns the tokens a Replace result substitutes for tok,
// restoring the end-of-input marker if the handler dropped it.
func (c *core) replacement(tok *token.Token, reg *Registration, res Result) []*token.Token {
	toks := res.tokens
	if tok.Kind() != token.KindEOF {
		return toks
	}
	if n := len(toks); n > 0 && toks[n-1].Kind() == token.KindEOF {
		return toks
	}
	c.scope.Env().Diags.Addf(diag.KindEOFDropped, c.scope.Title(),
		"handler %s dropped the end-of-input marker", reg.Name)
	return append(append([]*token.Token(nil), toks...), tok)
}

func (c *core) emitted(tok *token.Token) {
	if tok.Kind() == token.KindEOF {
		c.prev = nil
		return
	}
	c.prev = tok
}

func maxRank(a, b rank.Rank) rank.Rank {
	if rank.Less(a, b) {
		return b
	}
	return a
}
