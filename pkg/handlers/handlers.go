// Package handlers holds the token handlers a converter registers by
// default.
//
// The synchronous manager runs inclusion control. The asynchronous manager
// resolves template arguments and then expands templates. The output
// manager sees fully expanded content, including substituted arguments,
// and runs extension tags and then the sanitizer.
package handlers

import (
	"fmt"

	"github.com/yuin/goldmark"

	"github.com/open-cli-collective/parsoid-go/pkg/diag"
	"github.com/open-cli-collective/parsoid-go/pkg/pipeline"
	"github.com/open-cli-collective/parsoid-go/pkg/scope"
	"github.com/open-cli-collective/parsoid-go/pkg/token"
	"github.com/open-cli-collective/parsoid-go/pkg/tokenizer"
	"github.com/open-cli-collective/parsoid-go/pkg/transform"
)

// Expander runs a nested expansion of child.Title() in child and reports
// its output through ret.
type Expander interface {
	Expand(child *scope.Scope, ret pipeline.Receiver[token.Message]) error
}

// Deps are the collaborators of the default handlers.
type Deps struct {
	Expander Expander
	Markdown goldmark.Markdown // nil uses a GFM-table renderer
}

// transformerHost is a manager that hands out transformer slots.
type transformerHost interface {
	AddTransformer(name string) (*transform.Transformer, error)
}

type binding struct {
	kind token.Kind
	tag  string
}

type step struct {
	host    transformerHost
	name    string
	handler transform.Handler
	on      []binding
}

// Register installs the handlers of a pipeline's input and expansion
// phases. Every nested expansion gets them too.
func Register(sm *transform.SyncManager, am *transform.AsyncManager, deps Deps) error {
	if deps.Expander == nil {
		return fmt.Errorf("registering handlers: no expander")
	}
	return install([]step{
		{sm, "inclusion", NewInclusion(), []binding{{transform.Any, ""}}},
		{am, "templatearg", TemplateArg(), []binding{{token.KindStartTag, tokenizer.TagTemplateArg}}},
		{am, "template", Template(deps.Expander), []binding{{token.KindStartTag, tokenizer.TagTemplate}}},
	})
}

// RegisterOutput installs the handlers that run once on the expanded
// output of the top-level pipeline.
func RegisterOutput(om *transform.SyncManager, deps Deps) error {
	return install([]step{
		{om, "extension", Extension(deps.Markdown), []binding{{token.KindStartTag, tokenizer.TagExtension}}},
		{om, "sanitizer", Sanitizer(), []binding{{token.KindStartTag, ""}, {token.KindEndTag, ""}}},
	})
}

func install(steps []step) error {
	for _, st := range steps {
		tr, err := st.host.AddTransformer(st.name)
		if err != nil {
			return err
		}
		for _, b := range st.on {
			if _, err := tr.On(b.kind, b.tag, st.handler); err != nil {
				return err
			}
		}
	}
	return nil
}

// report records a diagnostic located at tok.
func report(ctx *transform.Context, kind diag.Kind, tok *token.Token, format string, args ...any) {
	d := diag.Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Title: ctx.Scope.Title()}
	if r, ok := tok.Range(); ok {
		d.Start, d.End = r.Start, r.End
	}
	ctx.Env().Diags.Add(d)
}

// Marker builds the visible stand-in for content that could not be
// produced: a span with the given class holding text.
func Marker(class, text string) []*token.Token {
	return []*token.Token{
		token.NewStartTag("span", token.StringAttr("class", class)),
		token.NewText(text),
		token.NewEndTag("span"),
	}
}
