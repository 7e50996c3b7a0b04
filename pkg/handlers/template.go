package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/open-cli-collective/parsoid-go/pkg/diag"
	"github.com/open-cli-collective/parsoid-go/pkg/pipeline"
	"github.com/open-cli-collective/parsoid-go/pkg/scope"
	"github.com/open-cli-collective/parsoid-go/pkg/templates"
	"github.com/open-cli-collective/parsoid-go/pkg/token"
	"github.com/open-cli-collective/parsoid-go/pkg/tokenizer"
	"github.com/open-cli-collective/parsoid-go/pkg/transform"
)

// Marker classes.
const (
	ClassError           = "error"
	ClassMissingTemplate = "mw-missing-template"
)

// TemplateArg returns the handler resolving {{{name|default}}} against the
// parameters of the current scope. An unbound argument without a default
// renders as its source text.
func TemplateArg() transform.Handler {
	return func(ctx *transform.Context, tok *token.Token) (transform.Result, error) {
		return transform.Replace(resolveArg(ctx.Scope, tok)...), nil
	}
}

func resolveArg(s *scope.Scope, tok *token.Token) []*token.Token {
	attrs, _ := tok.Attributes()
	nameToks, _ := attrs.Get("name")
	name := strings.TrimSpace(token.ToText(nameToks))
	if v, ok := s.Param(name); ok {
		return v
	}
	if def, ok := attrs.Get("default"); ok {
		return substitute(s, def)
	}
	source, _ := attrs.GetString("source")
	return []*token.Token{token.NewText(source)}
}

// substitute resolves template arguments in toks against s, including
// those nested in the parameters of template calls.
func substitute(s *scope.Scope, toks []*token.Token) []*token.Token {
	out := make([]*token.Token, 0, len(toks))
	for _, tok := range toks {
		switch {
		case tok.Is(token.KindStartTag, tokenizer.TagTemplateArg):
			out = append(out, resolveArg(s, tok)...)
		case tok.Is(token.KindStartTag, tokenizer.TagTemplate):
			attrs, _ := tok.Attributes()
			list := attrs.All()
			for i := range list {
				list[i].Value = substitute(s, list[i].Value)
			}
			out = append(out, tok.WithAttributes(token.NewAttributes(list...)))
		default:
			out = append(out, tok)
		}
	}
	return out
}

// Template returns the handler expanding template calls. Arguments are
// resolved in the calling scope and bound in a child scope; the expansion
// itself is deferred to exp. A call that would recurse or nest too deep
// is replaced by an error marker.
func Template(exp Expander) transform.Handler {
	return func(ctx *transform.Context, tok *token.Token) (transform.Result, error) {
		attrs, _ := tok.Attributes()
		titleToks, _ := attrs.Get("title")
		title := templates.NormalizeTitle(token.ToText(substitute(ctx.Scope, titleToks)))
		if title == "" {
			return transform.Result{}, fmt.Errorf("template call without title")
		}

		params := token.NewAttributes()
		for _, a := range attrs.All() {
			if a.KeyText() == "title" {
				continue
			}
			params = params.Append(token.Attribute{Key: a.Key, Value: substitute(ctx.Scope, a.Value)})
		}

		child, err := ctx.Scope.NewChild(title, params)
		if err != nil {
			kind := diag.KindRecursiveExpansion
			text := "Template loop detected: " + title
			if errors.Is(err, scope.ErrDepthExceeded) {
				kind = diag.KindDepthExceeded
				text = "Template nesting too deep: " + title
			}
			report(ctx, kind, tok, "%v", err)
			return transform.Replace(Marker(ClassError, text)...), nil
		}

		return transform.Async(func(ret pipeline.Receiver[token.Message]) error {
			return exp.Expand(child, ret)
		}), nil
	}
}

// MissingTemplate is the marker shown for a template no source has.
func MissingTemplate(title string) []*token.Token {
	return Marker(ClassMissingTemplate, title)
}
