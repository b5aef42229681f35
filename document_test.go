package xmlassist_test

import (
	"context"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/jacoelho/xmlassist"
	"github.com/jacoelho/xmlassist/internal/xmldoc"
	"github.com/jacoelho/xmlassist/pkg/pattern"
)

func name(local string) pattern.QName { return pattern.Name("", local) }

func elem(b *pattern.Builder, local string, content pattern.Pattern, line int, opts ...pattern.NodeOption) *pattern.Element {
	var loc pattern.Locator
	if line > 0 {
		loc = &pattern.Cursor{Line: line, Column: 1}
	}
	return b.Element(pattern.Simple("", local), content, loc, opts...)
}

func newDocument(t *testing.T, root pattern.Pattern, opts ...xmlassist.Options) *xmlassist.Document {
	t.Helper()
	o := xmlassist.NewOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	doc, err := xmlassist.NewDocument("test.rnc", root, o)
	require.NoError(t, err)
	return doc
}

func parse(t *testing.T, src string) *xmldoc.Document {
	t.Helper()
	doc, err := xmldoc.Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

// element a { element b, element c? }
func scenarioA() pattern.Pattern {
	b := pattern.NewBuilder("test.rnc")
	return elem(b, "a", b.Group(elem(b, "b", nil, 2), b.Optional(elem(b, "c", nil, 3))), 1)
}

func TestScenarioA(t *testing.T) {
	doc := newDocument(t, scenarioA())

	a := doc.Lookup(name("a"))
	require.NotNil(t, a)
	require.Equal(t, []string{"b"}, a.RequiredChildNames())
	require.Subset(t, a.PossibleRequiredChildNames(), []string{"b"})
	require.True(t, a.IsRequired(name("b")))
	require.False(t, a.IsRequired(name("c")))

	src := `<a><b/></a>`
	parsed := parse(t, src)
	names, err := doc.PossibleNextElementNames(context.Background(), parsed.Root, len(`<a><b/>`))
	require.NoError(t, err)
	require.Equal(t, []pattern.QName{name("c")}, names)

	require.True(t, doc.IsRequired(name("b"), parsed.Root))
	require.False(t, doc.IsRequired(name("c"), parsed.Root))
}

func TestScenarioB(t *testing.T) {
	b := pattern.NewBuilder("test.rnc")
	root := elem(b, "a", b.Choice(elem(b, "x", nil, 2), elem(b, "y", nil, 3)), 1)
	doc := newDocument(t, root)

	a := doc.Lookup(name("a"))
	require.Equal(t, []string{"x", "y"}, a.PossibleRequiredChildNames())
	require.Empty(t, a.RequiredChildNames())

	parsed := parse(t, `<a><x/></a>`)
	names, err := doc.PossibleNextElementNames(context.Background(), parsed.Root, len(`<a><x/>`))
	require.NoError(t, err)
	require.Empty(t, names)

	names, err = doc.PossibleNextElementNames(context.Background(), parsed.Root, len(`<a>`))
	require.NoError(t, err)
	require.Equal(t, []pattern.QName{name("x"), name("y")}, names)
}

func TestScenarioC(t *testing.T) {
	b := pattern.NewBuilder("test.rnc")
	root := elem(b, "a", b.Interleave(elem(b, "p", nil, 2), elem(b, "q", nil, 3)), 1)
	doc := newDocument(t, root)

	src := `<a><q/>`
	names, err := doc.PossibleNextElementNames(context.Background(), parse(t, src).Root, len(src))
	require.NoError(t, err)
	require.Contains(t, names, name("p"))
	require.NotContains(t, names, name("q"))
}

func TestScenarioD(t *testing.T) {
	b := pattern.NewBuilder("test.rnc")
	v := b.Attribute(pattern.Simple("", "v"), b.Choice(b.Value("A", nil), b.Value("B", nil)), &pattern.Cursor{Line: 2, Column: 3})
	w := b.Attribute(pattern.Simple("", "w"), nil, nil, pattern.WithDefault("0"))
	root := elem(b, "e", b.Group(v, b.Optional(w)), 1)
	doc := newDocument(t, root)

	attrs := doc.ListAttributeDeclarations(parse(t, `<e/>`).Root)
	require.Len(t, attrs, 2)

	require.Equal(t, name("v"), attrs[0].Name())
	require.Equal(t, []string{"A", "B"}, attrs[0].EnumerationValues())
	require.True(t, attrs[0].Required())
	_, ok := attrs[0].DefaultValue()
	require.False(t, ok)
	loc := attrs[0].DefinitionLocation()
	require.NotNil(t, loc)
	require.Equal(t, xmlassist.Location{URI: "test.rnc", Line: 2, Column: 3}, *loc)
	line, col := loc.ZeroBased()
	require.Equal(t, []int{1, 2}, []int{line, col})

	require.False(t, attrs[1].Required())
	def, ok := attrs[1].DefaultValue()
	require.True(t, ok)
	require.Equal(t, "0", def)
	require.Nil(t, attrs[1].DefinitionLocation())
	require.Same(t, doc.Lookup(name("e")), attrs[1].Owner())
}

func TestFacadeIdentity(t *testing.T) {
	b := pattern.NewBuilder("test.rnc")
	child := elem(b, "c", nil, 2)
	root := elem(b, "r", b.Group(b.Attribute(pattern.Simple("", "id"), nil, nil), child), 1)
	doc := newDocument(t, root)

	const workers = 24
	decls := make([]*xmlassist.ElementDeclaration, workers)
	attrs := make([]*xmlassist.AttributeDeclaration, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := range workers {
		go func() {
			defer wg.Done()
			decls[i] = doc.ElementDeclaration(child)
			attrs[i] = doc.Lookup(name("r")).Attribute(name("id"))
			_ = decls[i].RequiredChildNames()
		}()
	}
	wg.Wait()

	for i := range workers {
		require.Same(t, decls[0], decls[i])
		require.Same(t, attrs[0], attrs[i])
	}
	require.Same(t, decls[0], doc.Lookup(name("r")).Children()[0])
	require.Same(t, decls[0], doc.Lookup(name("r"), name("c")))
}

func TestWildcardElementsHaveNoDeclaration(t *testing.T) {
	b := pattern.NewBuilder("test.rnc")
	wild := b.Element(pattern.AnyName{}, nil, nil)
	root := elem(b, "r", b.ZeroOrMore(b.Choice(wild, elem(b, "x", nil, 2))), 1)
	doc := newDocument(t, root)

	require.Nil(t, doc.ElementDeclaration(wild))
	require.Nil(t, doc.ElementDeclaration(nil))
	children := doc.Lookup(name("r")).Children()
	require.Len(t, children, 1)
	require.Equal(t, name("x"), children[0].Name())

	parsed := parse(t, `<r><foo/></r>`)
	require.Nil(t, doc.Resolve(parsed.Elements[1]))
	require.Nil(t, doc.ListChildDeclarations(parsed.Elements[1]))
	names, err := doc.PossibleNextElementNames(context.Background(), parsed.Elements[1], -1)
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestNewDocumentRejectsUnresolvedRef(t *testing.T) {
	b := pattern.NewBuilder("")
	_, err := xmlassist.NewDocument("g", elem(b, "a", pattern.NewRef("body"), 0), xmlassist.NewOptions())
	var refErr *pattern.UnresolvedRefError
	require.ErrorAs(t, err, &refErr)
	require.Equal(t, "body", refErr.Name)

	_, err = xmlassist.NewDocument("g", nil, xmlassist.NewOptions())
	require.Error(t, err)

	_, err = xmlassist.NewDocument("g", elem(b, "a", nil, 0), xmlassist.NewOptions().WithDocCacheSize(-1))
	require.Error(t, err)
}

func TestDocumentation(t *testing.T) {
	files := fstest.MapFS{"g.rnc": {Data: []byte("## Root docs.\nstart = element r {\n  ## Child docs.\n  element c { empty }\n}\n")}}
	b := pattern.NewBuilder("g.rnc")
	inline := elem(b, "i", nil, 4, pattern.WithDocumentation("Inline wins."))
	child := b.Element(pattern.Simple("", "c"), nil, &pattern.Cursor{Line: 4, Column: 3})
	root := b.Element(pattern.Simple("", "r"), b.Group(child, inline, elem(b, "none", nil, 0)), &pattern.Cursor{Line: 2, Column: 1})
	opts := xmlassist.NewOptions().WithDocLoader(func(uri string) ([]byte, error) { return files.ReadFile(uri) })
	doc := newDocument(t, root, opts)

	r := doc.Lookup(name("r"))
	text, ok := r.Documentation()
	require.True(t, ok)
	require.Equal(t, "Root docs.", text)

	text, ok = r.Child(name("c")).Documentation()
	require.True(t, ok)
	require.Equal(t, "Child docs.", text)

	text, ok = r.Child(name("i")).Documentation()
	require.True(t, ok)
	require.Equal(t, "Inline wins.", text)

	_, ok = r.Child(name("none")).Documentation()
	require.False(t, ok)

	_, ok = doc.DocumentationAt(pattern.Position{URI: "missing.rnc", Line: 1, Column: 1})
	require.False(t, ok)
}

func TestResolveFollowsAncestors(t *testing.T) {
	b := pattern.NewBuilder("test.rnc")
	innerA := elem(b, "item", b.Attribute(pattern.Simple("", "in-a"), nil, nil), 3)
	innerB := elem(b, "item", b.Attribute(pattern.Simple("", "in-b"), nil, nil), 5)
	root := elem(b, "doc", b.Group(elem(b, "a", innerA, 2), elem(b, "b", innerB, 4)), 1)
	doc := newDocument(t, root)

	parsed := parse(t, `<doc><a><item/></a><b><item/></b></doc>`)
	require.Same(t, doc.ElementDeclaration(innerA), doc.Resolve(parsed.Find(name("doc"), name("a"), name("item"))))
	require.Same(t, doc.ElementDeclaration(innerB), doc.Resolve(parsed.Find(name("doc"), name("b"), name("item"))))

	attrs := doc.ListAttributeDeclarations(parsed.Find(name("doc"), name("b"), name("item")))
	require.Len(t, attrs, 1)
	require.Equal(t, name("in-b"), attrs[0].Name())

	require.Len(t, doc.Declarations(), 1)
	require.Nil(t, doc.Lookup(name("item")))
}

func TestPossibleAttributeNames(t *testing.T) {
	b := pattern.NewBuilder("test.rnc")
	root := elem(b, "e", b.Group(
		b.Attribute(pattern.Simple("", "id"), nil, nil),
		b.Optional(b.Attribute(pattern.Simple("", "class"), nil, nil)),
	), 1)
	doc := newDocument(t, root)

	require.Equal(t, []pattern.QName{name("class"), name("id")}, doc.PossibleAttributeNames(parse(t, `<e/>`).Root))
	require.Equal(t, []pattern.QName{name("class")}, doc.PossibleAttributeNames(parse(t, `<e id="1"/>`).Root))
}

func TestPossibleNextElementNamesCancelled(t *testing.T) {
	b := pattern.NewBuilder("test.rnc")
	root := elem(b, "list", b.ZeroOrMore(elem(b, "item", nil, 2)), 1)
	doc := newDocument(t, root, xmlassist.NewOptions().WithReplayPollInterval(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := doc.PossibleNextElementNames(ctx, parse(t, `<list><item/><item/></list>`).Root, -1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDirtyFlag(t *testing.T) {
	doc := newDocument(t, scenarioA())
	require.False(t, doc.IsDirty())
	doc.MarkDirty()
	doc.MarkDirty()
	require.True(t, doc.IsDirty())
	require.Equal(t, "test.rnc", doc.URI())
	require.NotNil(t, doc.Root())
	require.NotNil(t, doc.Analyzer())
}
