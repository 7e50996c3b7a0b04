package handlers

import (
	"strings"

	"github.com/open-cli-collective/parsoid-go/pkg/diag"
	"github.com/open-cli-collective/parsoid-go/pkg/token"
	"github.com/open-cli-collective/parsoid-go/pkg/tokenizer"
	"github.com/open-cli-collective/parsoid-go/pkg/transform"
)

// allowedTags are the HTML elements wikitext may use directly.
var allowedTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "big": true,
	"blockquote": true, "br": true, "caption": true, "center": true, "cite": true,
	"code": true, "data": true, "dd": true, "del": true, "dfn": true, "div": true,
	"dl": true, "dt": true, "em": true, "font": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "hr": true, "i": true,
	"img": true, "ins": true, "kbd": true, "li": true, "mark": true, "ol": true,
	"p": true, "pre": true, "q": true, "rb": true, "rp": true, "rt": true,
	"rtc": true, "ruby": true, "s": true, "samp": true, "small": true, "span": true,
	"strike": true, "strong": true, "sub": true, "sup": true, "table": true,
	"tbody": true, "td": true, "tfoot": true, "th": true, "thead": true, "time": true,
	"tr": true, "tt": true, "u": true, "ul": true, "var": true, "wbr": true,

	tokenizer.TagTemplate:    true,
	tokenizer.TagTemplateArg: true,
	tokenizer.TagExtension:   true,
}

// urlAttributes are checked for script URLs.
var urlAttributes = map[string]bool{"href": true, "src": true, "action": true, "formaction": true}

// Sanitizer returns the handler that turns disallowed tags back into
// literal text and strips event handler attributes and script URLs.
func Sanitizer() transform.Handler {
	return func(ctx *transform.Context, tok *token.Token) (transform.Result, error) {
		name, _ := tok.Name()
		if !allowedTags[name] {
			report(ctx, diag.KindSanitized, tok, "tag <%s> is not allowed", name)
			return transform.Replace(token.NewText(literal(tok))), nil
		}

		attrs, _ := tok.Attributes()
		var dropped []string
		kept := attrs.Filter(func(a token.Attribute) bool {
			if unsafeAttribute(a) {
				dropped = append(dropped, a.KeyText())
				return false
			}
			return true
		})
		if len(dropped) == 0 {
			return transform.Pass(), nil
		}
		report(ctx, diag.KindSanitized, tok, "removed attributes %s from <%s>", strings.Join(dropped, ", "), name)
		return transform.Replace(tok.WithAttributes(kept)), nil
	}
}

func unsafeAttribute(a token.Attribute) bool {
	key := strings.ToLower(a.KeyText())
	if strings.HasPrefix(key, "on") {
		return true
	}
	if !urlAttributes[key] {
		return false
	}
	v := strings.ToLower(strings.Join(strings.Fields(a.ValueText()), ""))
	return strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "vbscript:")
}

// literal renders a tag token back to source form.
func literal(tok *token.Token) string {
	name, _ := tok.Name()
	if tok.Kind() == token.KindEndTag {
		return "</" + name + ">"
	}
	attrs, _ := tok.Attributes()
	if attrs.Len() == 0 {
		return "<" + name + ">"
	}
	return "<" + name + " " + attrs.String() + ">"
}
