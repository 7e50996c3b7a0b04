// Package treebuilder is the last pipeline stage: it turns the token stream
// into an HTML node tree.
//
// The builder keeps a stack of open elements. It does not implement the
// HTML5 tree construction rules; end tags without a matching open element
// are ignored and elements still open at the end are closed implicitly.
package treebuilder

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/open-cli-collective/parsoid-go/pkg/diag"
	"github.com/open-cli-collective/parsoid-go/pkg/pipeline"
	"github.com/open-cli-collective/parsoid-go/pkg/token"
)

// voidElements never have children and are not pushed on the stack. The
// last three are unexpanded wikitext constructs.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
	"template": true, "templatearg": true, "extension": true,
}

// Document is a finished tree.
type Document struct {
	Root        *html.Node // the document node
	body        *html.Node
	Diagnostics []diag.Diagnostic
}

func newDocument() *Document {
	root := &html.Node{Type: html.DocumentNode}
	htmlEl := element(atom.Html)
	head := element(atom.Head)
	body := element(atom.Body)
	root.AppendChild(htmlEl)
	htmlEl.AppendChild(head)
	htmlEl.AppendChild(body)
	return &Document{Root: root, body: body}
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

// Body returns the body element.
func (d *Document) Body() *html.Node {
	return d.body
}

// HTML renders the content of the body element.
func (d *Document) HTML() (string, error) {
	var sb strings.Builder
	for c := d.body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// Markdown converts the body content to markdown.
func (d *Document) Markdown() (string, error) {
	s, err := d.HTML()
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", nil
	}
	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(markdown), nil
}

// Builder assembles documents from token messages and emits each one when
// its EndOfInput token arrives.
type Builder struct {
	pipeline.Emitter[*Document]
	doc   *Document
	stack []*html.Node // open elements, body at the bottom
}

// New creates an unwired builder.
func New() *Builder {
	b := &Builder{}
	b.reset()
	return b
}

func (b *Builder) reset() {
	b.doc = newDocument()
	b.stack = []*html.Node{b.doc.body}
}

// Receive adds the tokens of msg to the current document.
func (b *Builder) Receive(msg token.Message) error {
	for _, tok := range msg.Tokens() {
		if err := b.add(tok); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) add(tok *token.Token) error {
	switch tok.Kind() {
	case token.KindStartTag:
		b.addElement(tok)
	case token.KindEndTag:
		name, _ := tok.Name()
		b.popUntil(name)
	case token.KindText:
		text, _ := tok.Text()
		b.addText(text)
	case token.KindNewline:
		b.addText("\n")
	case token.KindComment:
		text, _ := tok.Text()
		b.top().AppendChild(&html.Node{Type: html.CommentNode, Data: text})
	case token.KindEOF:
		doc := b.doc
		b.reset()
		return b.Emit(doc)
	}
	return nil
}

func (b *Builder) top() *html.Node {
	return b.stack[len(b.stack)-1]
}

func (b *Builder) addElement(tok *token.Token) {
	name, _ := tok.Name()
	attrs, _ := tok.Attributes()
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(name)),
		Data:     name,
		Attr:     make([]html.Attribute, 0, attrs.Len()),
	}
	for _, a := range attrs.All() {
		n.Attr = append(n.Attr, html.Attribute{Key: a.KeyText(), Val: a.ValueText()})
	}
	b.top().AppendChild(n)
	if !voidElements[name] {
		b.stack = append(b.stack, n)
	}
}

// popUntil closes the innermost open element called name and everything
// opened inside it. The body element is never closed.
func (b *Builder) popUntil(name string) {
	for i := len(b.stack) - 1; i > 0; i-- {
		if b.stack[i].Data == name {
			b.stack = b.stack[:i]
			return
		}
	}
}

// addText appends to the preceding text node when there is one.
func (b *Builder) addText(text string) {
	if text == "" {
		return
	}
	t := b.top()
	if n := t.LastChild; n != nil && n.Type == html.TextNode {
		n.Data += text
		return
	}
	t.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}
