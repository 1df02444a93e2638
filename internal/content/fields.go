// Package content implements the schema-less editor for module content
// objects. A display kind is inferred per top-level key purely for
// editing convenience; inference is recomputed from values every time and
// never persisted back to the server.
package content

import (
	"path"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Kind string

const (
	KindText     Kind = "text"
	KindRichText Kind = "richtext"
	KindImageURL Kind = "imageurl"
	KindNumber   Kind = "number"
	KindBoolean  Kind = "boolean"
	KindArray    Kind = "array"
	KindObject   Kind = "object"
)

// Field is one editable top-level entry of a content object.
type Field struct {
	Key   string
	Kind  Kind
	Value any
}

// InferKind maps a decoded JSON value to its display kind. The string
// split into text/richtext/imageurl is lossy: a rich-text value saved and
// reloaded is just a string again, and only this inference brings it
// back. That is accepted, not fixable client-side.
func InferKind(v any) Kind {
	switch val := v.(type) {
	case bool:
		return KindBoolean
	case float64:
		return KindNumber
	case int, int64:
		return KindNumber
	case []any:
		return KindArray
	case map[string]any:
		return KindObject
	case string:
		if isImageURL(val) {
			return KindImageURL
		}
		if isRichText(val) {
			return KindRichText
		}
		return KindText
	default:
		return KindText
	}
}

// FieldsOf derives the ordered field list for a content object. Keys are
// sorted so repeated derivations of the same object agree.
func FieldsOf(obj map[string]any) []Field {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Field{Key: k, Kind: InferKind(obj[k]), Value: obj[k]})
	}
	return fields
}

// Rebuild reconstructs the whole content object from a field list. All
// mutations funnel through this; there is no per-key patch path.
func Rebuild(fields []Field) map[string]any {
	obj := make(map[string]any, len(fields))
	for _, f := range fields {
		obj[f.Key] = f.Value
	}
	return obj
}

var imageExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {}, ".svg": {}, ".avif": {},
}

func isImageURL(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") && !strings.HasPrefix(s, "/") {
		return false
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	_, ok := imageExtensions[strings.ToLower(path.Ext(s))]
	return ok
}

// isRichText reports whether the string carries HTML markup: it must
// parse and contain at least one recognized element. Plain prose parses
// as HTML too, so the element check is what separates the kinds.
func isRichText(s string) bool {
	if !strings.Contains(s, "<") {
		return false
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		return false
	}
	for _, n := range nodes {
		if hasKnownElement(n) {
			return true
		}
	}
	return false
}

func hasKnownElement(n *html.Node) bool {
	if n.Type == html.ElementNode && n.DataAtom != 0 {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasKnownElement(c) {
			return true
		}
	}
	return false
}
