package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// DocumentQuery is the capability set the harness needs from a parsed
// document.
type DocumentQuery interface {
	// ElementByID returns the first element in document order whose id
	// attribute equals id. The bool is false when no such element exists.
	ElementByID(id string) (Element, bool)

	// Body returns the document's <body> element.
	Body() (Element, bool)
}

// Element is a read-only view of one element.
type Element interface {
	ID() string
	Tag() string
	ClassName() string
	ClassList() []string
	HasClass(name string) bool
	Attr(name string) (string, bool)
	Style(property string) string
	StyleDeclarations() []Declaration
	Text() string
}

// Parser builds a DocumentQuery from markup.
type Parser func(markup string) (DocumentQuery, error)

// Document is the x/net/html backed DocumentQuery.
type Document struct {
	root *html.Node
	body *html.Node
	ids  map[string]*html.Node
}

var _ DocumentQuery = (*Document)(nil)

// Parse builds a fresh Document. Each call returns an independent tree.
func Parse(markup string) (DocumentQuery, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	doc := &Document{
		root: root,
		ids:  make(map[string]*html.Node),
	}
	doc.index(root)
	return doc, nil
}

// index walks the tree once in document order, recording the body and the
// first element seen for every id.
func (d *Document) index(n *html.Node) {
	if n.Type == html.ElementNode {
		if d.body == nil && n.DataAtom == atom.Body {
			d.body = n
		}
		if id, ok := attr(n, "id"); ok && id != "" {
			if _, seen := d.ids[id]; !seen {
				d.ids[id] = n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.index(c)
	}
}

func (d *Document) ElementByID(id string) (Element, bool) {
	n, ok := d.ids[id]
	if !ok {
		return nil, false
	}
	return &node{n: n}, true
}

func (d *Document) Body() (Element, bool) {
	if d.body == nil {
		return nil, false
	}
	return &node{n: d.body}, true
}

// node adapts *html.Node to Element. The parsed style is cached on first use.
type node struct {
	n     *html.Node
	style *Style
}

func (e *node) ID() string {
	v, _ := attr(e.n, "id")
	return v
}

func (e *node) Tag() string {
	return e.n.Data
}

func (e *node) ClassName() string {
	v, _ := attr(e.n, "class")
	return v
}

func (e *node) ClassList() []string {
	return strings.Fields(e.ClassName())
}

func (e *node) HasClass(name string) bool {
	for _, c := range e.ClassList() {
		if c == name {
			return true
		}
	}
	return false
}

func (e *node) Attr(name string) (string, bool) {
	return attr(e.n, strings.ToLower(name))
}

func (e *node) Style(property string) string {
	return e.inlineStyle().Get(property)
}

func (e *node) StyleDeclarations() []Declaration {
	return e.inlineStyle().Declarations()
}

func (e *node) inlineStyle() *Style {
	if e.style == nil {
		raw, _ := attr(e.n, "style")
		e.style = ParseStyle(raw)
	}
	return e.style
}

// Text returns the element's text content with whitespace runs collapsed to
// single spaces, NFC normalized.
func (e *node) Text() string {
	var b strings.Builder
	collectText(e.n, &b)
	return norm.NFC.String(strings.Join(strings.Fields(b.String()), " "))
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
