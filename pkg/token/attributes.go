package token

import "strings"

// Attribute is a key/value pair whose key and value are token sequences,
// since either may still contain unexpanded templates.
type Attribute struct {
	Key   []*Token
	Value []*Token
}

// Attr builds an attribute with a plain-text key.
func Attr(key string, value ...*Token) Attribute {
	return Attribute{Key: []*Token{NewText(key)}, Value: value}
}

// StringAttr builds an attribute with a plain-text key and value.
func StringAttr(key, value string) Attribute {
	return Attr(key, NewText(value))
}

// KeyText returns the key flattened to text.
func (a Attribute) KeyText() string {
	return ToText(a.Key)
}

// ValueText returns the value flattened to text.
func (a Attribute) ValueText() string {
	return ToText(a.Value)
}

// Attributes is an ordered attribute list. Lookups scan from the end so the
// last pair for a key wins, while all pairs stay recorded in insertion
// order for round-tripping. The zero value is an empty list.
//
// Attributes values are copy-on-write: every modifying method returns a
// new list and leaves the receiver untouched.
type Attributes struct {
	list []Attribute
}

// NewAttributes builds a list from pairs in order.
func NewAttributes(attrs ...Attribute) Attributes {
	if len(attrs) == 0 {
		return Attributes{}
	}
	list := make([]Attribute, len(attrs))
	copy(list, attrs)
	return Attributes{list: list}
}

// Len returns the number of recorded pairs, duplicates included.
func (a Attributes) Len() int {
	return len(a.list)
}

// At returns the i-th pair in insertion order.
func (a Attributes) At(i int) Attribute {
	return a.list[i]
}

// All returns a copy of the recorded pairs in insertion order.
func (a Attributes) All() []Attribute {
	out := make([]Attribute, len(a.list))
	copy(out, a.list)
	return out
}

// Get returns the value of the last pair whose key text equals name.
func (a Attributes) Get(name string) ([]*Token, bool) {
	for i := len(a.list) - 1; i >= 0; i-- {
		if a.list[i].KeyText() == name {
			return a.list[i].Value, true
		}
	}
	return nil, false
}

// GetString is Get flattened to text.
func (a Attributes) GetString(name string) (string, bool) {
	v, ok := a.Get(name)
	if !ok {
		return "", false
	}
	return ToText(v), true
}

// Has reports whether any pair has the given key.
func (a Attributes) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Set appends a new pair for key. Earlier pairs with the same key are kept
// but shadowed by the new one.
func (a Attributes) Set(key string, value ...*Token) Attributes {
	return a.Append(Attr(key, value...))
}

// SetString is Set with a plain-text value.
func (a Attributes) SetString(key, value string) Attributes {
	return a.Append(StringAttr(key, value))
}

// Append returns a new list with attr added at the end.
func (a Attributes) Append(attr Attribute) Attributes {
	list := make([]Attribute, len(a.list), len(a.list)+1)
	copy(list, a.list)
	return Attributes{list: append(list, attr)}
}

// Remove returns a new list without any pair keyed name, and whether one was removed.
func (a Attributes) Remove(name string) (Attributes, bool) {
	list := make([]Attribute, 0, len(a.list))
	removed := false
	for _, attr := range a.list {
		if attr.KeyText() == name {
			removed = true
			continue
		}
		list = append(list, attr)
	}
	if !removed {
		return a, false
	}
	return Attributes{list: list}, true
}

// Filter returns a new list with only the pairs keep accepts.
func (a Attributes) Filter(keep func(Attribute) bool) Attributes {
	list := make([]Attribute, 0, len(a.list))
	for _, attr := range a.list {
		if keep(attr) {
			list = append(list, attr)
		}
	}
	return Attributes{list: list}
}

// Equal compares two lists pair by pair.
func (a Attributes) Equal(b Attributes) bool {
	if len(a.list) != len(b.list) {
		return false
	}
	for i := range a.list {
		if !EqualSlices(a.list[i].Key, b.list[i].Key) || !EqualSlices(a.list[i].Value, b.list[i].Value) {
			return false
		}
	}
	return true
}

func (a Attributes) String() string {
	parts := make([]string, 0, len(a.list))
	for _, attr := range a.list {
		parts = append(parts, attr.KeyText()+"="+`"`+attr.ValueText()+`"`)
	}
	return strings.Join(parts, " ")
}
