package treebuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/open-cli-collective/parsoid-go/pkg/pipeline"
	"github.com/open-cli-collective/parsoid-go/pkg/token"
)

func build(t *testing.T, toks ...*token.Token) (*Document, int) {
	t.Helper()
	b := New()
	var docs []*Document
	b.SetReceiver(func(d *Document) error {
		docs = append(docs, d)
		return nil
	})
	require.NoError(t, b.Receive(token.NewSync(token.NewChunk(toks...))))
	if len(docs) == 0 {
		return nil, 0
	}
	return docs[len(docs)-1], len(docs)
}

func render(t *testing.T, d *Document) string {
	t.Helper()
	s, err := d.HTML()
	require.NoError(t, err)
	return s
}

func TestBuilder_SingleElement(t *testing.T) {
	doc, n := build(t,
		token.NewStartTag("b"), token.NewText("hi"), token.NewEndTag("b"), token.NewEOF())
	require.Equal(t, 1, n)

	body := doc.Body()
	require.NotNil(t, body.FirstChild)
	assert.Same(t, body.FirstChild, body.LastChild, "exactly one child")
	b := body.FirstChild
	assert.Equal(t, html.ElementNode, b.Type)
	assert.Equal(t, "b", b.Data)
	require.NotNil(t, b.FirstChild)
	assert.Equal(t, html.TextNode, b.FirstChild.Type)
	assert.Equal(t, "hi", b.FirstChild.Data)
	assert.Nil(t, b.FirstChild.NextSibling)
}

func TestBuilder_HTML(t *testing.T) {
	tests := []struct {
		name string
		toks []*token.Token
		want string
	}{
		{
			name: "nested",
			toks: []*token.Token{token.NewStartTag("p"), token.NewStartTag("i"), token.NewText("x"), token.NewEndTag("i"), token.NewEndTag("p")},
			want: "<p><i>x</i></p>",
		},
		{
			name: "unclosed closed at end",
			toks: []*token.Token{token.NewStartTag("i"), token.NewText("x")},
			want: "<i>x</i>",
		},
		{
			name: "stray end tag ignored",
			toks: []*token.Token{token.NewText("a"), token.NewEndTag("div"), token.NewText("b")},
			want: "ab",
		},
		{
			name: "end tag closes inner elements",
			toks: []*token.Token{token.NewStartTag("div"), token.NewStartTag("b"), token.NewText("x"), token.NewEndTag("div"), token.NewText("y")},
			want: "<div><b>x</b></div>y",
		},
		{
			name: "text and newlines merge",
			toks: []*token.Token{token.NewText("a"), token.NewNewline(), token.NewText("b")},
			want: "a\nb",
		},
		{
			name: "void element",
			toks: []*token.Token{token.NewText("a"), token.NewStartTag("br"), token.NewEndTag("br"), token.NewText("b")},
			want: "a<br/>b",
		},
		{
			name: "attributes",
			toks: []*token.Token{token.NewStartTag("a", token.StringAttr("href", "/x")), token.NewText("t"), token.NewEndTag("a")},
			want: `<a href="/x">t</a>`,
		},
		{
			name: "attribute order kept",
			toks: []*token.Token{token.NewStartTag("span", token.StringAttr("class", "a"), token.StringAttr("id", "i"))},
			want: `<span class="a" id="i"></span>`,
		},
		{
			name: "comment",
			toks: []*token.Token{token.NewComment("c"), token.NewText("x")},
			want: "<!--c-->x",
		},
		{
			name: "escaping",
			toks: []*token.Token{token.NewText("a < b & c")},
			want: "a &lt; b &amp; c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := append(tt.toks, token.NewEOF())
			doc, n := build(t, toks...)
			require.Equal(t, 1, n)
			assert.Equal(t, tt.want, render(t, doc))
		})
	}
}

func TestBuilder_NoDocumentBeforeEndOfInput(t *testing.T) {
	doc, n := build(t, token.NewText("x"))
	assert.Nil(t, doc)
	assert.Equal(t, 0, n)
}

func TestBuilder_ResetsBetweenDocuments(t *testing.T) {
	b := New()
	var docs []*Document
	b.SetReceiver(func(d *Document) error {
		docs = append(docs, d)
		return nil
	})

	require.NoError(t, b.Receive(token.NewPending(token.NewChunk(token.NewStartTag("i"), token.NewText("one")))))
	require.NoError(t, b.Receive(token.NewSync(token.NewChunk(token.NewEOF()))))
	require.NoError(t, b.Receive(token.NewSync(token.NewChunk(token.NewText("two"), token.NewEOF()))))

	require.Len(t, docs, 2)
	assert.Equal(t, "<i>one</i>", render(t, docs[0]))
	assert.Equal(t, "two", render(t, docs[1]))
}

func TestBuilder_WithoutReceiver(t *testing.T) {
	err := New().Receive(token.NewSync(token.NewChunk(token.NewEOF())))
	assert.ErrorIs(t, err, pipeline.ErrNoReceiverConfigured)
}

func TestDocument_Markdown(t *testing.T) {
	doc, _ := build(t, token.NewStartTag("b"), token.NewText("hi"), token.NewEndTag("b"), token.NewEOF())
	md, err := doc.Markdown()
	require.NoError(t, err)
	assert.Equal(t, "**hi**", md)

	empty, _ := build(t, token.NewEOF())
	md, err = empty.Markdown()
	require.NoError(t, err)
	assert.Empty(t, md)
}
