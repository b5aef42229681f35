package pattern

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilderCopiesSharedCursor(t *testing.T) {
	b := NewBuilder("grammar.rng")
	cursor := &Cursor{URI: "grammar.rng"}

	cursor.Move(3, 5)
	first := b.Element(Simple("", "first"), nil, cursor)
	cursor.Move(10, 2)
	second := b.Element(Simple("", "second"), nil, cursor)
	cursor.Move(99, 99)
	cursor.URI = "other.rng"

	pos, ok := first.Position()
	require.True(t, ok)
	require.Equal(t, Position{URI: "grammar.rng", Line: 3, Column: 5}, pos)

	pos, ok = second.Position()
	require.True(t, ok)
	require.Equal(t, Position{URI: "grammar.rng", Line: 10, Column: 2}, pos)
}

func TestBuilderPositionFallsBackToBaseURI(t *testing.T) {
	b := NewBuilder("base.rnc")
	cursor := &Cursor{Line: 1, Column: 1}

	attr := b.Attribute(Simple("", "id"), nil, cursor, WithDefault("x"), WithDocumentation("identifier"))
	pos, ok := attr.Position()
	require.True(t, ok)
	require.Equal(t, "base.rnc", pos.URI)

	def, ok := attr.DefaultValue()
	require.True(t, ok)
	require.Equal(t, "x", def)
	require.Equal(t, "identifier", attr.Documentation())
	require.Equal(t, KindText, attr.Value().Kind())

	_, ok = b.Element(Simple("", "a"), nil, nil).Position()
	require.False(t, ok)
}

func TestBuilderAssignsDistinctIDs(t *testing.T) {
	b := NewBuilder("")
	x1 := b.Element(Simple("", "x"), nil, nil)
	x2 := b.Element(Simple("", "x"), nil, nil)

	require.NotEqual(t, x1.ID(), x2.ID())
	require.Equal(t, NewEmpty().ID(), b.Empty().ID())
}

func TestBuilderFolds(t *testing.T) {
	b := NewBuilder("")
	x := b.Element(Simple("", "x"), nil, nil)

	require.Equal(t, KindEmpty, b.Group().Kind())
	require.Equal(t, KindNotAllowed, b.Choice().Kind())
	require.Same(t, x, b.Group(x))
	require.Equal(t, "((element x { empty } | element x { empty }) | text)", Format(b.Choice(x, x, NewText())))
}

func TestPositionZeroBasedClamps(t *testing.T) {
	line, col := Position{Line: 1, Column: 1}.ZeroBased()
	require.Equal(t, 0, line)
	require.Equal(t, 0, col)

	line, col = Position{Line: 0, Column: -4}.ZeroBased()
	require.Equal(t, 0, line)
	require.Equal(t, 0, col)

	line, col = Position{Line: 12, Column: 7}.ZeroBased()
	require.Equal(t, 11, line)
	require.Equal(t, 6, col)
}

func TestNameClasses(t *testing.T) {
	ns := "urn:x"
	require.True(t, Simple(ns, "a").Contains(Name(ns, "a")))
	require.False(t, Simple(ns, "a").Contains(Name("", "a")))
	require.True(t, AnyName{}.Contains(Name("urn:y", "z")))
	require.False(t, AnyName{Except: Simple("", "z")}.Contains(Name("", "z")))
	require.True(t, NsName{Namespace: ns}.Contains(Name(ns, "q")))
	require.False(t, NsName{Namespace: ns}.Contains(Name("", "q")))

	choice := NameClassChoice{Classes: []NameClass{Simple("", "a"), AnyName{}, Simple(ns, "b")}}
	require.True(t, choice.Contains(Name("", "zzz")))
	require.Equal(t, []QName{{Local: "a"}, {Namespace: ns, Local: "b"}}, ListedNames(choice))

	_, ok := SimpleNameOf(choice)
	require.False(t, ok)
	require.Equal(t, Name(ns, "a"), ParseQName("{urn:x}a"))
	require.Equal(t, "{urn:x}a", Name(ns, "a").String())
}

func TestChildDeclarationsWalk(t *testing.T) {
	b := NewBuilder("")
	shared := b.Element(Simple("", "shared"), nil, nil)
	id := b.Attribute(Simple("", "id"), nil, nil)
	inner := b.Attribute(Simple("", "inner"), nil, nil)
	content := b.Group(
		id,
		b.Choice(shared, b.Element(Simple("", "other"), inner, nil)),
		b.ZeroOrMore(shared),
	)

	children := ChildElements(content)
	require.Len(t, children, 2)
	require.Same(t, shared, children[0])
	require.Equal(t, []*Attribute{id}, ChildAttributes(content))
}
