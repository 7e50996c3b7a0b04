package tokenizer

import (
	"fmt"
	"strings"

	"github.com/open-cli-collective/parsoid-go/pkg/token"
)

// rawTag is an HTML-like tag as written in the source.
type rawTag struct {
	name        string // lower-cased
	closing     bool   // </name>
	selfClosing bool   // <name/>
	attrs       []rawAttr
	end         int // position after '>'
}

// rawAttr is one attribute; the value span is empty for bare attributes.
type rawAttr struct {
	key   string
	value span
}

// tag recognizes start, end and self-closing tags. Extension tags swallow
// their body up to the matching end tag.
func (s *scanner) tag() bool {
	start := s.pos
	t, err := parseTag(s.src, start)
	if err != nil {
		return false
	}
	if !t.closing && IsExtensionTag(t.name) {
		return s.extension(start, t)
	}

	if t.closing {
		s.emit(token.NewEndTag(t.name), start, t.end)
		return true
	}
	attrs := make([]token.Attribute, 0, len(t.attrs))
	for _, a := range t.attrs {
		attrs = append(attrs, token.Attr(a.key, s.nested(a.value.start, a.value.end)...))
	}
	s.emit(token.NewStartTag(t.name, attrs...), start, t.end)
	if t.selfClosing {
		s.emit(token.NewEndTag(t.name), t.end, t.end)
	}
	return true
}

// extension emits a single extension token holding the raw body. An
// extension tag without its end tag is not a tag at all.
func (s *scanner) extension(start int, t rawTag) bool {
	body, end := t.end, t.end
	if !t.selfClosing {
		closeAt, closeEnd := findEndTag(s.src, t.end, t.name)
		if closeAt < 0 {
			return false
		}
		body, end = closeAt, closeEnd
	}
	attrs := []token.Attribute{
		token.StringAttr("name", t.name),
		token.StringAttr("source", s.src[t.end:body]),
	}
	for _, a := range t.attrs {
		attrs = append(attrs, token.StringAttr(a.key, s.src[a.value.start:a.value.end]))
	}
	s.emit(token.NewStartTag(TagExtension, attrs...), start, end)
	return true
}

// findEndTag locates </name> (any case, optional spaces before '>') at or
// after from. It returns the start and end of the end tag, or -1.
func findEndTag(src string, from int, name string) (int, int) {
	lower := strings.ToLower(src)
	needle := "</" + name
	for i := from; i < len(src); {
		j := strings.Index(lower[i:], needle)
		if j < 0 {
			return -1, -1
		}
		at := i + j
		p := at + len(needle)
		for p < len(src) && isSpace(src[p]) {
			p++
		}
		if p < len(src) && src[p] == '>' {
			return at, p + 1
		}
		i = at + len(needle)
	}
	return -1, -1
}

// parseTag attempts to parse a tag starting at pos.
func parseTag(input string, pos int) (rawTag, error) {
	if pos >= len(input) || input[pos] != '<' {
		return rawTag{}, fmt.Errorf("expected '<'")
	}
	pos++ // skip '<'

	var t rawTag
	if pos < len(input) && input[pos] == '/' {
		t.closing = true
		pos++
	}

	// Tag names start with a letter
	if pos >= len(input) || !isLetter(input[pos]) {
		return rawTag{}, fmt.Errorf("invalid tag name")
	}
	nameStart := pos
	for pos < len(input) && isNameChar(input[pos]) {
		pos++
	}
	t.name = strings.ToLower(input[nameStart:pos])

	// End tags take no attributes
	if t.closing {
		for pos < len(input) && isSpace(input[pos]) {
			pos++
		}
		if pos >= len(input) || input[pos] != '>' {
			return rawTag{}, fmt.Errorf("unclosed end tag")
		}
		t.end = pos + 1
		return t, nil
	}

	// The name must end at whitespace, '/' or '>'
	if pos < len(input) && !isSpace(input[pos]) && input[pos] != '/' && input[pos] != '>' {
		return rawTag{}, fmt.Errorf("invalid tag name")
	}

	attrs, end, selfClosing, err := parseAttributes(input, pos)
	if err != nil {
		return rawTag{}, err
	}
	t.attrs, t.end, t.selfClosing = attrs, end, selfClosing
	return t, nil
}

// parseAttributes parses attributes until '>' or '/>'.
// Returns the attributes, the position after the tag, and whether it was self-closing.
func parseAttributes(input string, pos int) ([]rawAttr, int, bool, error) {
	var attrs []rawAttr

	for pos < len(input) {
		// Skip whitespace
		for pos < len(input) && isSpace(input[pos]) {
			pos++
		}
		if pos >= len(input) {
			break
		}

		// Check for end of tag
		switch {
		case input[pos] == '>':
			return attrs, pos + 1, false, nil
		case strings.HasPrefix(input[pos:], "/>"):
			return attrs, pos + 2, true, nil
		case input[pos] == '<' || input[pos] == '\n':
			return nil, pos, false, fmt.Errorf("unterminated tag")
		}

		// Parse attribute key
		keyStart := pos
		for pos < len(input) && isAttrKeyChar(input[pos]) {
			pos++
		}
		if pos == keyStart {
			return nil, pos, false, fmt.Errorf("expected attribute name or '>'")
		}
		attr := rawAttr{key: strings.ToLower(input[keyStart:pos]), value: span{pos, pos}}

		// Bare attribute without '='
		p := pos
		for p < len(input) && input[p] == ' ' {
			p++
		}
		if p >= len(input) || input[p] != '=' {
			attrs = append(attrs, attr)
			continue
		}
		pos = p + 1 // skip '='
		for pos < len(input) && input[pos] == ' ' {
			pos++
		}

		value, newPos, err := parseAttrValue(input, pos)
		if err != nil {
			return nil, pos, false, err
		}
		attr.value = value
		attrs = append(attrs, attr)
		pos = newPos
	}

	return nil, pos, false, fmt.Errorf("unclosed tag")
}

// parseAttrValue parses a quoted or unquoted value and returns its span
// and the position after it.
func parseAttrValue(input string, pos int) (span, int, error) {
	if pos >= len(input) {
		return span{}, pos, fmt.Errorf("unexpected end of input")
	}

	// Quoted value
	if input[pos] == '"' || input[pos] == '\'' {
		quoteChar := input[pos]
		end := strings.IndexByte(input[pos+1:], quoteChar)
		if end < 0 {
			return span{}, pos, fmt.Errorf("unclosed quoted value")
		}
		valueStart := pos + 1
		return span{valueStart, valueStart + end}, valueStart + end + 1, nil
	}

	// Unquoted value - read until space or '>'
	valueStart := pos
	for pos < len(input) && !isSpace(input[pos]) && input[pos] != '>' && !strings.HasPrefix(input[pos:], "/>") {
		pos++
	}
	return span{valueStart, pos}, pos, nil
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == ':'
}

func isAttrKeyChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == ':'
}
