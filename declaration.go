package xmlassist

import (
	"slices"
	"sync"

	"github.com/jacoelho/xmlassist/pkg/pattern"
)

// ElementDeclaration is the facade of one Element pattern node.
type ElementDeclaration struct {
	doc  *Document
	p    *pattern.Element
	name pattern.QName

	children      func() []*ElementDeclaration
	attributes    func() []*AttributeDeclaration
	required      func() []string
	possible      func() []string
	requiredAttrs func() []pattern.QName
	enumeration   func() []string
	documentation func() (string, bool)
}

func newElementDeclaration(d *Document, p *pattern.Element, name pattern.QName) *ElementDeclaration {
	e := &ElementDeclaration{doc: d, p: p, name: name}
	e.children = sync.OnceValue(func() []*ElementDeclaration {
		return d.elementDeclarations(pattern.ChildElements(p.Content()))
	})
	e.attributes = sync.OnceValue(func() []*AttributeDeclaration {
		attrs := pattern.ChildAttributes(p.Content())
		out := make([]*AttributeDeclaration, 0, len(attrs))
		for _, a := range attrs {
			if decl := d.attributeDeclaration(e, a); decl != nil {
				out = append(out, decl)
			}
		}
		return out
	})
	e.required = sync.OnceValue(func() []string {
		return d.analyzer.RequiredChildNames(p.Content())
	})
	e.possible = sync.OnceValue(func() []string {
		return d.analyzer.PossibleRequiredChildNames(p.Content())
	})
	e.requiredAttrs = sync.OnceValue(func() []pattern.QName {
		return d.analyzer.RequiredAttributeNames(p.Content())
	})
	e.enumeration = sync.OnceValue(func() []string {
		return pattern.ContentValueLiterals(p.Content())
	})
	e.documentation = sync.OnceValues(func() (string, bool) {
		return lookupDocumentation(d, p.Documentation(), p.Position)
	})
	return e
}

// Name returns the declared element name.
func (e *ElementDeclaration) Name() pattern.QName { return e.name }

// Pattern returns the underlying node.
func (e *ElementDeclaration) Pattern() *pattern.Element { return e.p }

// Children returns the declarations of the child elements, in document order.
func (e *ElementDeclaration) Children() []*ElementDeclaration { return e.children() }

// Attributes returns the attribute declarations, in document order.
func (e *ElementDeclaration) Attributes() []*AttributeDeclaration { return e.attributes() }

// Attribute returns the attribute declaration named name, or nil.
func (e *ElementDeclaration) Attribute(name pattern.QName) *AttributeDeclaration {
	for _, a := range e.attributes() {
		if a.name.Equal(name) {
			return a
		}
	}
	return nil
}

// Child returns the first child declaration named name, or nil.
func (e *ElementDeclaration) Child(name pattern.QName) *ElementDeclaration {
	return findDeclaration(e.children(), name)
}

// RequiredChildNames returns the local names of the children that occur in
// every valid content.
func (e *ElementDeclaration) RequiredChildNames() []string { return e.required() }

// PossibleRequiredChildNames returns the local names of the children that
// are required by at least one alternative of the content.
func (e *ElementDeclaration) PossibleRequiredChildNames() []string { return e.possible() }

// RequiredAttributeNames returns the attributes that occur on every valid start tag.
func (e *ElementDeclaration) RequiredAttributeNames() []pattern.QName { return e.requiredAttrs() }

// IsRequired reports whether a child named child occurs in every valid content.
func (e *ElementDeclaration) IsRequired(child pattern.QName) bool {
	_, found := slices.BinarySearch(e.required(), child.Local)
	return found
}

// IsPossiblyRequired reports whether some alternative of the content requires child.
func (e *ElementDeclaration) IsPossiblyRequired(child pattern.QName) bool {
	_, found := slices.BinarySearch(e.possible(), child.Local)
	return found
}

func (e *ElementDeclaration) requiresAttribute(name pattern.QName) bool {
	_, found := slices.BinarySearchFunc(e.requiredAttrs(), name, pattern.QName.Compare)
	return found
}

// EnumerationValues returns the literal values the text content may take,
// in declaration order.
func (e *ElementDeclaration) EnumerationValues() []string { return e.enumeration() }

// Documentation returns the inline documentation of the declaration or,
// failing that, the documentation found in its grammar source.
func (e *ElementDeclaration) Documentation() (string, bool) { return e.documentation() }

// DefinitionLocation returns where the element was declared, or nil.
func (e *ElementDeclaration) DefinitionLocation() *Location {
	return definitionLocation(e.p.Position)
}

// AttributeDeclaration is the facade of one Attribute pattern node as seen
// from its owning element.
type AttributeDeclaration struct {
	owner *ElementDeclaration
	p     *pattern.Attribute
	name  pattern.QName

	enumeration   func() []string
	documentation func() (string, bool)
}

func newAttributeDeclaration(owner *ElementDeclaration, p *pattern.Attribute, name pattern.QName) *AttributeDeclaration {
	return &AttributeDeclaration{
		owner: owner,
		p:     p,
		name:  name,
		enumeration: sync.OnceValue(func() []string {
			return pattern.CollectValueLiterals(p.Value())
		}),
		documentation: sync.OnceValues(func() (string, bool) {
			return lookupDocumentation(owner.doc, p.Documentation(), p.Position)
		}),
	}
}

// Name returns the declared attribute name.
func (a *AttributeDeclaration) Name() pattern.QName { return a.name }

// Pattern returns the underlying node.
func (a *AttributeDeclaration) Pattern() *pattern.Attribute { return a.p }

// Owner returns the declaration of the element the attribute belongs to.
func (a *AttributeDeclaration) Owner() *ElementDeclaration { return a.owner }

// Required reports whether every valid start tag of the owner carries the attribute.
func (a *AttributeDeclaration) Required() bool { return a.owner.requiresAttribute(a.name) }

// DefaultValue returns the declared default value.
func (a *AttributeDeclaration) DefaultValue() (string, bool) { return a.p.DefaultValue() }

// EnumerationValues returns the literal values the attribute may take, in
// declaration order.
func (a *AttributeDeclaration) EnumerationValues() []string { return a.enumeration() }

// Documentation returns the inline or source documentation of the attribute.
func (a *AttributeDeclaration) Documentation() (string, bool) { return a.documentation() }

// DefinitionLocation returns where the attribute was declared, or nil.
func (a *AttributeDeclaration) DefinitionLocation() *Location {
	return definitionLocation(a.p.Position)
}

func lookupDocumentation(d *Document, inline string, position func() (pattern.Position, bool)) (string, bool) {
	if inline != "" {
		return inline, true
	}
	pos, ok := position()
	if !ok {
		return "", false
	}
	return d.DocumentationAt(pos)
}

func definitionLocation(position func() (pattern.Position, bool)) *Location {
	pos, ok := position()
	if !ok {
		return nil
	}
	return &pos
}
