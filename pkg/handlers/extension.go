package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"

	"github.com/open-cli-collective/parsoid-go/pkg/token"
	"github.com/open-cli-collective/parsoid-go/pkg/transform"
)

// defaultMarkdown is a pre-configured goldmark instance with GFM tables
// and strikethrough.
var defaultMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
)

// Extension returns the handler expanding extension tags: nowiki bodies
// become text, pre bodies a pre element with text, and markdown bodies
// the tokens of their rendered HTML.
func Extension(md goldmark.Markdown) transform.Handler {
	if md == nil {
		md = defaultMarkdown
	}
	return func(_ *transform.Context, tok *token.Token) (transform.Result, error) {
		attrs, _ := tok.Attributes()
		name, _ := attrs.GetString("name")
		source, _ := attrs.GetString("source")

		switch name {
		case "nowiki":
			if source == "" {
				return transform.Drop(), nil
			}
			return transform.Replace(token.NewText(source)), nil
		case "pre":
			extra := attrs.Filter(func(a token.Attribute) bool {
				k := a.KeyText()
				return k != "name" && k != "source"
			})
			return transform.Replace(
				token.NewStartTag("pre", extra.All()...),
				token.NewText(source),
				token.NewEndTag("pre"),
			), nil
		case "markdown":
			var buf bytes.Buffer
			if err := md.Convert([]byte(source), &buf); err != nil {
				return transform.Result{}, fmt.Errorf("rendering markdown: %w", err)
			}
			toks, err := htmlTokens(buf.String())
			if err != nil {
				return transform.Result{}, err
			}
			return transform.Replace(toks...), nil
		}
		return transform.Result{}, fmt.Errorf("unknown extension tag %q", name)
	}
}

// htmlTokens converts an HTML fragment into pipeline tokens.
func htmlTokens(src string) ([]*token.Token, error) {
	var out []*token.Token
	z := html.NewTokenizer(strings.NewReader(src))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				return out, nil
			}
			return nil, z.Err()
		}
		t := z.Token()
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			attrs := make([]token.Attribute, 0, len(t.Attr))
			for _, a := range t.Attr {
				attrs = append(attrs, token.StringAttr(a.Key, a.Val))
			}
			out = append(out, token.NewStartTag(t.Data, attrs...))
			if tt == html.SelfClosingTagToken {
				out = append(out, token.NewEndTag(t.Data))
			}
		case html.EndTagToken:
			out = append(out, token.NewEndTag(t.Data))
		case html.TextToken:
			out = appendText(out, t.Data)
		case html.CommentToken:
			out = append(out, token.NewComment(t.Data))
		}
	}
}

// appendText adds text, turning line breaks into newline tokens.
func appendText(out []*token.Token, text string) []*token.Token {
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			out = append(out, token.NewNewline())
		}
		if line != "" {
			out = append(out, token.NewText(line))
		}
	}
	return out
}
