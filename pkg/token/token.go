// Package token defines the token model passed between pipeline stages.
//
// Tokens are immutable once constructed and are shared by pointer between
// chunks and messages; the With* helpers return modified copies instead of
// mutating the receiver.
package token

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a token.
type Kind int

const (
	KindStartTag Kind = iota // <name attrs>
	KindEndTag               // </name>
	KindText                 // character data
	KindComment              // <!-- ... -->
	KindNewline              // a single line break
	KindEOF                  // end of input
)

var kindNames = [...]string{
	KindStartTag: "StartTag",
	KindEndTag:   "EndTag",
	KindText:     "Text",
	KindComment:  "Comment",
	KindNewline:  "Newline",
	KindEOF:      "EndOfInput",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Range is a [Start, End) byte range into the original input.
type Range struct {
	Start int
	End   int
}

// Token is a single unit of the intermediate representation. Only the
// fields valid for its kind are populated.
type Token struct {
	kind     Kind
	name     string     // StartTag, EndTag
	attrs    Attributes // StartTag, EndTag
	text     string     // Text, Comment
	rng      Range
	hasRange bool
}

// NewStartTag creates a start tag token.
func NewStartTag(name string, attrs ...Attribute) *Token {
	return &Token{kind: KindStartTag, name: name, attrs: NewAttributes(attrs...)}
}

// NewEndTag creates an end tag token.
func NewEndTag(name string, attrs ...Attribute) *Token {
	return &Token{kind: KindEndTag, name: name, attrs: NewAttributes(attrs...)}
}

// NewText creates a text token.
func NewText(text string) *Token {
	return &Token{kind: KindText, text: text}
}

// NewComment creates a comment token.
func NewComment(text string) *Token {
	return &Token{kind: KindComment, text: text}
}

// NewNewline creates a newline token.
func NewNewline() *Token {
	return &Token{kind: KindNewline}
}

// NewEOF creates an end-of-input token.
func NewEOF() *Token {
	return &Token{kind: KindEOF}
}

// Kind returns the token variant.
func (t *Token) Kind() Kind {
	return t.kind
}

// IsTag reports whether t is a start or end tag.
func (t *Token) IsTag() bool {
	return t.kind == KindStartTag || t.kind == KindEndTag
}

// Is reports whether t has the given kind and, for tags, the given name.
func (t *Token) Is(kind Kind, name string) bool {
	if t.kind != kind {
		return false
	}
	return !t.IsTag() || t.name == name
}

// Name returns the tag name; ok is false for non-tag tokens.
func (t *Token) Name() (string, bool) {
	if !t.IsTag() {
		return "", false
	}
	return t.name, true
}

// Attributes returns the tag attributes; ok is false for non-tag tokens.
func (t *Token) Attributes() (Attributes, bool) {
	if !t.IsTag() {
		return Attributes{}, false
	}
	return t.attrs, true
}

// Attribute looks up a single attribute as text (last match wins).
func (t *Token) Attribute(name string) (string, bool) {
	if !t.IsTag() {
		return "", false
	}
	return t.attrs.GetString(name)
}

// Text returns the content of a text or comment token.
func (t *Token) Text() (string, bool) {
	if t.kind != KindText && t.kind != KindComment {
		return "", false
	}
	return t.text, true
}

// Range returns the source range, if one was recorded.
func (t *Token) Range() (Range, bool) {
	return t.rng, t.hasRange
}

// WithRange returns a copy of t carrying the given source range.
func (t *Token) WithRange(start, end int) *Token {
	c := *t
	c.rng = Range{Start: start, End: end}
	c.hasRange = true
	return &c
}

// WithAttributes returns a copy of the tag t with attrs replacing its attributes.
// Non-tag tokens are returned unchanged.
func (t *Token) WithAttributes(attrs Attributes) *Token {
	if !t.IsTag() {
		return t
	}
	c := *t
	c.attrs = attrs
	return &c
}

// WithText returns a copy of a text or comment token with new content.
// Other tokens are returned unchanged.
func (t *Token) WithText(text string) *Token {
	if t.kind != KindText && t.kind != KindComment {
		return t
	}
	c := *t
	c.text = text
	return &c
}

// Equal compares two tokens by value, ignoring source ranges.
func Equal(a, b *Token) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindStartTag, KindEndTag:
		return a.name == b.name && a.attrs.Equal(b.attrs)
	case KindText, KindComment:
		return a.text == b.text
	default:
		return true
	}
}

// EqualSlices compares two token sequences element-wise with Equal.
func EqualSlices(a, b []*Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// String renders the token for debugging.
func (t *Token) String() string {
	switch t.kind {
	case KindStartTag, KindEndTag:
		if t.attrs.Len() == 0 {
			return fmt.Sprintf("%s(%s)", t.kind, t.name)
		}
		return fmt.Sprintf("%s(%s %s)", t.kind, t.name, t.attrs)
	case KindText, KindComment:
		return fmt.Sprintf("%s(%q)", t.kind, t.text)
	default:
		return t.kind.String() + "()"
	}
}

// ToText flattens a token sequence into plain text. Text tokens contribute
// their content and newlines a line break; everything else is skipped.
func ToText(toks []*Token) string {
	var sb strings.Builder
	for _, t := range toks {
		switch t.kind {
		case KindText:
			sb.WriteString(t.text)
		case KindNewline:
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// StripEOF returns toks without any EndOfInput tokens.
func StripEOF(toks []*Token) []*Token {
	out := toks[:0:0]
	for _, t := range toks {
		if t.kind != KindEOF {
			out = append(out, t)
		}
	}
	return out
}
