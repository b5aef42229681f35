// Package xmlassist answers authoring questions about a document being
// edited against an already-built grammar: which elements and attributes
// are declared where, which names may come next at a cursor, and what a
// declared name means.
//
// A Document wraps one grammar. All of its methods are safe for concurrent
// use; lazily computed results are computed once and shared.
package xmlassist

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/erni27/imcache"
	"github.com/untillpro/goutils/logger"

	"github.com/jacoelho/xmlassist/internal/docstore"
	"github.com/jacoelho/xmlassist/pkg/pattern"
)

type attributeKey struct {
	owner pattern.ID
	attr  pattern.ID
}

// Document is the content-model view of one grammar.
type Document struct {
	uri      string
	root     pattern.Pattern
	analyzer *pattern.Analyzer
	docs     *docstore.Store
	poll     int

	elements   *imcache.Cache[pattern.ID, *ElementDeclaration]
	attributes *imcache.Cache[attributeKey, *AttributeDeclaration]

	declarations func() []*ElementDeclaration
	dirty        atomic.Bool
}

// NewDocument wraps the start pattern root of the grammar at uri. The tree
// must be fully resolved: a remaining Ref is an error.
func NewDocument(uri string, root pattern.Pattern, opts Options) (*Document, error) {
	resolved, err := opts.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", uri, err)
	}
	docs, err := docstore.New(resolved.docLoader, resolved.docCacheSize)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", uri, err)
	}
	return newDocument(uri, root, resolved, docs)
}

func newDocument(uri string, root pattern.Pattern, opts resolvedOptions, docs *docstore.Store) (*Document, error) {
	if root == nil {
		return nil, fmt.Errorf("document %s: nil start pattern", uri)
	}
	if err := pattern.Check(root); err != nil {
		return nil, fmt.Errorf("document %s: %w", uri, err)
	}
	d := &Document{
		uri:        uri,
		root:       root,
		analyzer:   pattern.NewAnalyzer(),
		docs:       docs,
		poll:       opts.replayPollInterval,
		elements:   imcache.New[pattern.ID, *ElementDeclaration](),
		attributes: imcache.New[attributeKey, *AttributeDeclaration](),
	}
	d.declarations = sync.OnceValue(func() []*ElementDeclaration {
		return d.elementDeclarations(pattern.ChildElements(d.root))
	})
	return d, nil
}

// URI returns the grammar URI.
func (d *Document) URI() string { return d.uri }

// Root returns the start pattern.
func (d *Document) Root() pattern.Pattern { return d.root }

// Analyzer returns the analyzer shared by the document's declarations.
func (d *Document) Analyzer() *pattern.Analyzer { return d.analyzer }

// IsDirty reports whether the grammar source changed since the document was built.
func (d *Document) IsDirty() bool { return d.dirty.Load() }

// MarkDirty flags the document as out of date.
func (d *Document) MarkDirty() {
	if !d.dirty.Swap(true) {
		logger.Verbose(fmt.Sprintf("xmlassist: %s marked dirty", d.uri))
	}
}

// Declarations returns the declarations of the elements allowed as the
// document root.
func (d *Document) Declarations() []*ElementDeclaration {
	return d.declarations()
}

// ElementDeclaration returns the declaration facade of p. Repeated calls
// for the same node return the same facade. Elements named by a wildcard
// have no declaration.
func (d *Document) ElementDeclaration(p *pattern.Element) *ElementDeclaration {
	if p == nil {
		return nil
	}
	name, ok := pattern.SimpleNameOf(p.NameClass())
	if !ok {
		return nil
	}
	decl, present := d.elements.GetOrSet(p.ID(), newElementDeclaration(d, p, name), imcache.WithNoExpiration())
	if !present && logger.IsVerbose() {
		logger.Verbose(fmt.Sprintf("xmlassist: element declaration %s (#%d)", name, p.ID()))
	}
	return decl
}

func (d *Document) attributeDeclaration(owner *ElementDeclaration, p *pattern.Attribute) *AttributeDeclaration {
	name, ok := pattern.SimpleNameOf(p.NameClass())
	if !ok {
		return nil
	}
	key := attributeKey{owner: owner.p.ID(), attr: p.ID()}
	decl, _ := d.attributes.GetOrSet(key, newAttributeDeclaration(owner, p, name), imcache.WithNoExpiration())
	return decl
}

func (d *Document) elementDeclarations(elems []*pattern.Element) []*ElementDeclaration {
	out := make([]*ElementDeclaration, 0, len(elems))
	for _, e := range elems {
		if decl := d.ElementDeclaration(e); decl != nil {
			out = append(out, decl)
		}
	}
	return out
}

// Lookup follows path from the document root through child declarations.
// When several declarations share a name the first in document order wins.
func (d *Document) Lookup(path ...pattern.QName) *ElementDeclaration {
	candidates := d.Declarations()
	var decl *ElementDeclaration
	for _, name := range path {
		decl = findDeclaration(candidates, name)
		if decl == nil {
			return nil
		}
		candidates = decl.Children()
	}
	return decl
}

func findDeclaration(decls []*ElementDeclaration, name pattern.QName) *ElementDeclaration {
	for _, decl := range decls {
		if decl.name.Equal(name) {
			return decl
		}
	}
	return nil
}

// Resolve returns the declaration of elem, found through its ancestors.
func (d *Document) Resolve(elem Element) *ElementDeclaration {
	if elem == nil {
		return nil
	}
	return d.Lookup(elementPath(elem)...)
}

// ListChildDeclarations returns the child element declarations of elem.
func (d *Document) ListChildDeclarations(elem Element) []*ElementDeclaration {
	decl := d.Resolve(elem)
	if decl == nil {
		return nil
	}
	return decl.Children()
}

// ListAttributeDeclarations returns the attribute declarations of elem.
func (d *Document) ListAttributeDeclarations(elem Element) []*AttributeDeclaration {
	decl := d.Resolve(elem)
	if decl == nil {
		return nil
	}
	return decl.Attributes()
}

// IsRequired reports whether a child named child must occur in every valid
// content of parent.
func (d *Document) IsRequired(child pattern.QName, parent Element) bool {
	decl := d.Resolve(parent)
	if decl == nil {
		return false
	}
	return decl.IsRequired(child)
}

// DocumentationAt returns the documentation recorded in the grammar source
// for the declaration at pos.
func (d *Document) DocumentationAt(pos pattern.Position) (string, bool) {
	return d.docs.Documentation(pos)
}
