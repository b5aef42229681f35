package xmlassist

import (
	"github.com/jacoelho/xmlassist/internal/derivative"
	"github.com/jacoelho/xmlassist/pkg/pattern"
)

// Element is the view of a document element under edit. Any document model
// can provide it; internal/xmldoc builds one from XML text.
type Element interface {
	// Name is the namespace-resolved element name.
	Name() pattern.QName
	// Ancestors lists the names of the enclosing elements, outermost first.
	Ancestors() []pattern.QName
	// Attributes lists the start-tag attributes in document order.
	Attributes() []Attr
	// Children lists the child elements in document order.
	Children() []Child
	// Offset is the text offset of the start tag.
	Offset() int
}

// Attr is a start-tag attribute. Delimited is false while the value is
// still being typed and has no closing quote.
type Attr = derivative.Attr

// Child is a child element with its text offsets. End is only meaningful
// when Closed is set.
type Child = derivative.Child

// Location is a declaration's source position: 1-based line and column.
// ZeroBased maps it to editor coordinates.
type Location = pattern.Position

func elementPath(elem Element) []pattern.QName {
	return append(elem.Ancestors(), elem.Name())
}

func formatPath(path []pattern.QName) string {
	var out []byte
	for _, name := range path {
		out = append(out, '/')
		out = append(out, name.String()...)
	}
	return string(out)
}
