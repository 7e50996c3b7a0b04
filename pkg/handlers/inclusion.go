package handlers

import (
	"github.com/open-cli-collective/parsoid-go/pkg/token"
	"github.com/open-cli-collective/parsoid-go/pkg/transform"
)

var inclusionTags = map[string]bool{
	"noinclude":   true,
	"includeonly": true,
	"onlyinclude": true,
}

// inclusion implements noinclude, includeonly and onlyinclude.
//
// On a page viewed directly, includeonly content is dropped and the other
// two tags are removed keeping their content. In an included page,
// noinclude content is dropped and includeonly tags are removed; if the
// page has any onlyinclude section only those sections are kept. That
// cannot be known before the end of the input, so included pages are
// buffered and released with the EndOfInput token.
type inclusion struct {
	open      map[string]int
	foundOnly bool
	all       []*token.Token
	only      []*token.Token
}

// NewInclusion returns the inclusion control handler. It is stateful; each
// pipeline needs its own.
func NewInclusion() transform.Handler {
	st := &inclusion{open: make(map[string]int)}
	return st.handle
}

func (st *inclusion) handle(ctx *transform.Context, tok *token.Token) (transform.Result, error) {
	included := ctx.Scope.IsInclude()

	if tok.Kind() == token.KindEOF {
		if !included {
			st.reset()
			return transform.Pass(), nil
		}
		out := st.all
		if st.foundOnly {
			out = st.only
		}
		st.reset()
		return transform.Replace(append(out, tok)...), nil
	}

	if name, ok := tok.Name(); ok && inclusionTags[name] {
		if tok.Kind() == token.KindStartTag {
			st.open[name]++
			if name == "onlyinclude" {
				st.foundOnly = true
			}
		} else if st.open[name] > 0 {
			st.open[name]--
		}
		return transform.Drop(), nil
	}

	if !included {
		if st.open["includeonly"] > 0 {
			return transform.Drop(), nil
		}
		return transform.Pass(), nil
	}
	if st.open["noinclude"] > 0 {
		return transform.Drop(), nil
	}
	st.all = append(st.all, tok)
	if st.open["onlyinclude"] > 0 {
		st.only = append(st.only, tok)
	}
	return transform.Drop(), nil
}

func (st *inclusion) reset() {
	clear(st.open)
	st.foundOnly = false
	st.all = nil
	st.only = nil
}
