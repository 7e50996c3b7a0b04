package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_Accessors(t *testing.T) {
	tests := []struct {
		name     string
		tok      *Token
		kind     Kind
		wantName string
		nameOK   bool
		wantText string
		textOK   bool
	}{
		{"start tag", NewStartTag("b"), KindStartTag, "b", true, "", false},
		{"end tag", NewEndTag("b"), KindEndTag, "b", true, "", false},
		{"text", NewText("hi"), KindText, "", false, "hi", true},
		{"comment", NewComment(" c "), KindComment, "", false, " c ", true},
		{"newline", NewNewline(), KindNewline, "", false, "", false},
		{"eof", NewEOF(), KindEOF, "", false, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.tok.Kind())

			name, ok := tt.tok.Name()
			assert.Equal(t, tt.nameOK, ok)
			assert.Equal(t, tt.wantName, name)

			text, ok := tt.tok.Text()
			assert.Equal(t, tt.textOK, ok)
			assert.Equal(t, tt.wantText, text)

			_, ok = tt.tok.Attributes()
			assert.Equal(t, tt.tok.IsTag(), ok)
		})
	}
}

func TestToken_WithRangeCopies(t *testing.T) {
	orig := NewText("hello")
	ranged := orig.WithRange(3, 8)

	_, ok := orig.Range()
	assert.False(t, ok, "original token must not change")

	r, ok := ranged.Range()
	require.True(t, ok)
	assert.Equal(t, Range{Start: 3, End: 8}, r)
	assert.True(t, Equal(orig, ranged), "ranges are ignored by Equal")
}

func TestToken_WithAttributesOnlyForTags(t *testing.T) {
	attrs := NewAttributes(StringAttr("class", "x"))

	tag := NewStartTag("div").WithAttributes(attrs)
	v, ok := tag.Attribute("class")
	require.True(t, ok)
	assert.Equal(t, "x", v)

	text := NewText("t")
	assert.Same(t, text, text.WithAttributes(attrs))
}

func TestToken_Is(t *testing.T) {
	assert.True(t, NewStartTag("b").Is(KindStartTag, "b"))
	assert.False(t, NewStartTag("b").Is(KindStartTag, "i"))
	assert.False(t, NewEndTag("b").Is(KindStartTag, "b"))
	assert.True(t, NewText("x").Is(KindText, "ignored"))
}

func TestEqual(t *testing.T) {
	a := NewStartTag("a", StringAttr("href", "x"))
	b := NewStartTag("a", StringAttr("href", "x"))
	c := NewStartTag("a", StringAttr("href", "y"))

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(a, NewEndTag("a", StringAttr("href", "x"))))
	assert.True(t, Equal(NewEOF(), NewEOF()))
	assert.False(t, Equal(nil, NewEOF()))
}

func TestToText(t *testing.T) {
	toks := []*Token{NewText("a"), NewStartTag("b"), NewText("c"), NewNewline(), NewComment("x"), NewText("d")}
	assert.Equal(t, "ac\nd", ToText(toks))
}

func TestStripEOF(t *testing.T) {
	toks := []*Token{NewText("a"), NewEOF(), NewText("b"), NewEOF()}
	out := StripEOF(toks)
	assert.True(t, EqualSlices([]*Token{NewText("a"), NewText("b")}, out))
	assert.Len(t, toks, 4, "input must not be modified")
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "StartTag", KindStartTag.String())
	assert.Equal(t, "EndOfInput", KindEOF.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
