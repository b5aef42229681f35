// Package xmldoc reads the text of a document being edited into the element
// view the content-model engine consumes. Input is usually incomplete:
// parsing stops at the first syntax error and every element still open at
// that point is reported as unclosed.
package xmldoc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/jacoelho/xmlassist/internal/derivative"
	"github.com/jacoelho/xmlassist/pkg/pattern"
)

const (
	xmlnsPrefix    = "xmlns"
	xmlnsNamespace = "http://www.w3.org/2000/xmlns/"
)

var errNoRoot = errors.New("xmldoc: no root element")

// Element is one element of a parsed document.
type Element struct {
	name     pattern.QName
	parent   *Element
	attrs    []derivative.Attr
	children []*Element

	// Start is the offset of '<' of the start tag, End the offset just past
	// the end tag. End is -1 while the element is unclosed.
	Start int
	End   int
	// ContentStart is the offset just past the start tag, ContentEnd the
	// offset of the end tag.
	ContentStart int
	ContentEnd   int
	Closed       bool
	SelfClosing  bool
}

// Name returns the namespace-resolved element name.
func (e *Element) Name() pattern.QName { return e.name }

// Parent returns the enclosing element, or nil for the root.
func (e *Element) Parent() *Element { return e.parent }

// Ancestors returns the names of the enclosing elements, outermost first.
func (e *Element) Ancestors() []pattern.QName {
	var out []pattern.QName
	for p := e.parent; p != nil; p = p.parent {
		out = append(out, p.name)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Attributes returns the attributes of the start tag in document order.
func (e *Element) Attributes() []derivative.Attr { return e.attrs }

// Children returns the child elements with their offsets.
func (e *Element) Children() []derivative.Child {
	out := make([]derivative.Child, len(e.children))
	for i, c := range e.children {
		out[i] = derivative.Child{Name: c.name, Start: c.Start, End: c.End, Closed: c.Closed}
	}
	return out
}

// Offset returns the offset of the start tag.
func (e *Element) Offset() int { return e.Start }

// ChildElements returns the child elements themselves.
func (e *Element) ChildElements() []*Element { return e.children }

// Document is a parsed, possibly truncated, document.
type Document struct {
	Root *Element
	// Elements lists every element in document order.
	Elements []*Element
	// Err is the syntax error that stopped parsing, if any.
	Err error
}

// Parse reads data into a Document. A syntax error after the root start tag
// is kept in Document.Err rather than returned.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	var stack []*Element
	for {
		start := int(dec.InputOffset())
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			doc.Err = fmt.Errorf("xmldoc: %w", err)
			break
		}
		end := int(dec.InputOffset())
		switch t := tok.(type) {
		case xml.StartElement:
			e := &Element{
				name:         qname(t.Name),
				Start:        start,
				End:          -1,
				ContentStart: end,
				ContentEnd:   -1,
			}
			raw := data[start:min(end, len(data))]
			e.SelfClosing = bytes.HasSuffix(raw, []byte("/>"))
			e.attrs = attributes(t.Attr, raw)
			if n := len(stack); n > 0 {
				e.parent = stack[n-1]
				e.parent.children = append(e.parent.children, e)
			} else if doc.Root == nil {
				doc.Root = e
			}
			doc.Elements = append(doc.Elements, e)
			stack = append(stack, e)
		case xml.EndElement:
			n := len(stack)
			if n == 0 {
				continue
			}
			e := stack[n-1]
			stack = stack[:n-1]
			e.Closed = true
			e.End = end
			if e.SelfClosing {
				e.ContentEnd = e.ContentStart
			} else {
				e.ContentEnd = start
			}
		}
	}
	if doc.Root == nil {
		if doc.Err != nil {
			return nil, doc.Err
		}
		return nil, errNoRoot
	}
	return doc, nil
}

// ElementAt returns the innermost element whose content contains offset.
func (d *Document) ElementAt(offset int) *Element {
	var found *Element
	for _, e := range d.Elements {
		if e.SelfClosing || offset < e.ContentStart {
			continue
		}
		if e.Closed && offset > e.ContentEnd {
			continue
		}
		// Elements are in document order, so a later match is nested deeper.
		found = e
	}
	return found
}

// Find returns the first element whose path from the root matches path.
func (d *Document) Find(path ...pattern.QName) *Element {
	if len(path) == 0 || d.Root == nil || !d.Root.name.Equal(path[0]) {
		return nil
	}
	e := d.Root
	for _, name := range path[1:] {
		var next *Element
		for _, c := range e.children {
			if c.name.Equal(name) {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		e = next
	}
	return e
}

func qname(n xml.Name) pattern.QName {
	if n.Space == xmlnsPrefix {
		return pattern.Name(xmlnsNamespace, n.Local)
	}
	return pattern.Name(n.Space, n.Local)
}

func attributes(attrs []xml.Attr, raw []byte) []derivative.Attr {
	if len(attrs) == 0 {
		return nil
	}
	delimited := scanDelimiters(raw)
	out := make([]derivative.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = derivative.Attr{Name: qname(a.Name), Value: a.Value, Delimited: true}
		if i < len(delimited) && delimited[i].local == a.Name.Local {
			out[i].Delimited = delimited[i].quoted
		}
	}
	return out
}
