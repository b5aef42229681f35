package xmldoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jacoelho/xmlassist/internal/derivative"
	"github.com/jacoelho/xmlassist/pkg/pattern"
)

func TestParseOffsetsAndClosedFlags(t *testing.T) {
	src := `<a><b/><c></c><d>`
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Error(t, doc.Err)

	root := doc.Root
	require.Equal(t, pattern.Name("", "a"), root.Name())
	require.False(t, root.Closed)
	require.Equal(t, -1, root.End)

	kids := root.Children()
	require.Len(t, kids, 3)
	require.Equal(t, derivative.Child{Name: pattern.Name("", "b"), Start: 3, End: 7, Closed: true}, kids[0])
	require.Equal(t, derivative.Child{Name: pattern.Name("", "c"), Start: 7, End: 14, Closed: true}, kids[1])
	require.Equal(t, pattern.Name("", "d"), kids[2].Name)
	require.Equal(t, 14, kids[2].Start)
	require.False(t, kids[2].Closed)

	b := root.ChildElements()[0]
	require.True(t, b.SelfClosing)
	require.Same(t, root, b.Parent())
	require.Equal(t, []pattern.QName{pattern.Name("", "a")}, b.Ancestors())
}

func TestParseCompleteDocument(t *testing.T) {
	src := "<a>\n  <b>text</b>\n</a>\n"
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	require.NoError(t, doc.Err)
	require.True(t, doc.Root.Closed)
	require.Equal(t, len(strings.TrimRight(src, "\n")), doc.Root.End)
	require.Len(t, doc.Elements, 2)

	b := doc.Elements[1]
	require.Equal(t, strings.Index(src, "<b>"), b.Start)
	require.Equal(t, strings.Index(src, "text"), b.ContentStart)
	require.Equal(t, strings.Index(src, "</b>"), b.ContentEnd)
}

func TestParseNamespaces(t *testing.T) {
	src := `<r xmlns="urn:r" xmlns:p="urn:p" p:id="1"><p:x/></r>`
	doc, err := Parse([]byte(src))
	require.NoError(t, err)

	require.Equal(t, pattern.Name("urn:r", "r"), doc.Root.Name())
	attrs := doc.Root.Attributes()
	require.Len(t, attrs, 3)
	require.True(t, derivative.IsNamespaceDeclaration(attrs[0].Name))
	require.True(t, derivative.IsNamespaceDeclaration(attrs[1].Name))
	require.Equal(t, pattern.Name("urn:p", "id"), attrs[2].Name)
	require.Equal(t, "1", attrs[2].Value)
	require.Equal(t, pattern.Name("urn:p", "x"), doc.Root.Children()[0].Name)
}

func TestParseAttributeDelimiters(t *testing.T) {
	doc, err := Parse([]byte(`<a x="1" y='2' z=3 w></a>`))
	require.NoError(t, err)

	attrs := doc.Root.Attributes()
	require.Len(t, attrs, 4)
	require.True(t, attrs[0].Delimited)
	require.True(t, attrs[1].Delimited)
	require.False(t, attrs[2].Delimited)
	require.Equal(t, "3", attrs[2].Value)
	require.False(t, attrs[3].Delimited)
}

func TestParseRejectsInputWithoutRoot(t *testing.T) {
	_, err := Parse([]byte("   "))
	require.Error(t, err)

	_, err = Parse([]byte("<"))
	require.Error(t, err)
}

func TestElementAt(t *testing.T) {
	src := `<a><b></b><c>`
	doc, err := Parse([]byte(src))
	require.NoError(t, err)

	require.Same(t, doc.Root, doc.ElementAt(3))
	require.Equal(t, "b", doc.ElementAt(6).Name().Local)
	require.Same(t, doc.Root, doc.ElementAt(10))
	require.Equal(t, "c", doc.ElementAt(len(src)).Name().Local)
	require.Nil(t, doc.ElementAt(0))
}

func TestFind(t *testing.T) {
	doc, err := Parse([]byte(`<a><b><c/></b></a>`))
	require.NoError(t, err)

	a, b, c := pattern.Name("", "a"), pattern.Name("", "b"), pattern.Name("", "c")
	require.Same(t, doc.Root, doc.Find(a))
	require.Equal(t, c, doc.Find(a, b, c).Name())
	require.Nil(t, doc.Find(b))
	require.Nil(t, doc.Find(a, c))
	require.Nil(t, doc.Find())
}
