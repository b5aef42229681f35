// Package patternyaml reads resolved pattern trees from YAML. Grammar
// front-ends that run out of process hand trees over in this form, and the
// command line tool reads its grammars from it.
//
// A document has an optional uri, used for positions that name no source,
// and a start node. Every node has exactly one kind key:
//
//	uri: book.rnc
//	start:
//	  element: book
//	  line: 3
//	  column: 1
//	  doc: A book.
//	  content:
//	    group:
//	      - attribute: lang
//	        content: {choice: [{value: en}, {value: fr}]}
//	        default: en
//	      - element: title
//	        content: {text: true}
//	      - zeroOrMore: {element: "{urn:x}note"}
//
// Names are "local" or "{namespace}local"; "*" and "{namespace}*" are
// wildcards, optionally narrowed by an except list, and "a|b" accepts
// either name.
package patternyaml

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/jacoelho/xmlassist/pkg/pattern"
)

// Grammar is the top-level YAML document.
type Grammar struct {
	URI   string `yaml:"uri,omitempty"`
	Start *Node  `yaml:"start"`
}

// Node is one pattern node.
type Node struct {
	Element   string   `yaml:"element,omitempty"`
	Attribute string   `yaml:"attribute,omitempty"`
	Except    []string `yaml:"except,omitempty"`
	Content   *Node    `yaml:"content,omitempty"`
	Default   *string  `yaml:"default,omitempty"`
	Doc       string   `yaml:"doc,omitempty"`

	Value      *string `yaml:"value,omitempty"`
	Group      []*Node `yaml:"group,omitempty"`
	Choice     []*Node `yaml:"choice,omitempty"`
	Interleave []*Node `yaml:"interleave,omitempty"`
	OneOrMore  *Node   `yaml:"oneOrMore,omitempty"`
	ZeroOrMore *Node   `yaml:"zeroOrMore,omitempty"`
	Optional   *Node   `yaml:"optional,omitempty"`
	Mixed      *Node   `yaml:"mixed,omitempty"`
	Text       bool    `yaml:"text,omitempty"`
	Empty      bool    `yaml:"empty,omitempty"`
	NotAllowed bool    `yaml:"notAllowed,omitempty"`

	URI    string `yaml:"uri,omitempty"`
	Line   int    `yaml:"line,omitempty"`
	Column int    `yaml:"column,omitempty"`
}

// LoadFile reads and decodes the grammar file at path. Positions without a
// uri default to path.
func LoadFile(path string) (pattern.Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grammar %s: %w", path, err)
	}
	p, err := Decode(data, path)
	if err != nil {
		return nil, fmt.Errorf("grammar %s: %w", path, err)
	}
	return p, nil
}

// Decode builds the start pattern of a YAML grammar. baseURI is used when
// the document names no uri.
func Decode(data []byte, baseURI string) (pattern.Pattern, error) {
	var g Grammar
	if err := yaml.UnmarshalStrict(data, &g); err != nil {
		return nil, fmt.Errorf("decode grammar: %w", err)
	}
	if g.Start == nil {
		return nil, fmt.Errorf("decode grammar: missing start")
	}
	if g.URI != "" {
		baseURI = g.URI
	}
	d := &decoder{b: pattern.NewBuilder(baseURI), cursor: &pattern.Cursor{}}
	return d.node(g.Start, "start")
}

type decoder struct {
	b      *pattern.Builder
	cursor *pattern.Cursor
}

func (d *decoder) node(n *Node, path string) (pattern.Pattern, error) {
	if n == nil {
		return nil, fmt.Errorf("%s: empty node", path)
	}
	if kinds := n.kinds(); len(kinds) != 1 {
		return nil, fmt.Errorf("%s: want exactly one node kind, got %d (%s)", path, len(kinds), strings.Join(kinds, ", "))
	}
	switch {
	case n.Element != "":
		return d.element(n, path)
	case n.Attribute != "":
		return d.attribute(n, path)
	case n.Value != nil:
		return d.b.Value(*n.Value, d.locate(n)), nil
	case n.Group != nil:
		return d.list(n.Group, path+".group", d.b.Group)
	case n.Choice != nil:
		return d.list(n.Choice, path+".choice", d.b.Choice)
	case n.Interleave != nil:
		return d.list(n.Interleave, path+".interleave", d.b.Interleave)
	case n.OneOrMore != nil:
		return d.unary(n.OneOrMore, path+".oneOrMore", d.b.OneOrMore)
	case n.ZeroOrMore != nil:
		return d.unary(n.ZeroOrMore, path+".zeroOrMore", d.b.ZeroOrMore)
	case n.Optional != nil:
		return d.unary(n.Optional, path+".optional", d.b.Optional)
	case n.Mixed != nil:
		return d.unary(n.Mixed, path+".mixed", d.b.Mixed)
	case n.Text:
		return d.b.Text(), nil
	case n.Empty:
		return d.b.Empty(), nil
	default:
		return d.b.NotAllowed(), nil
	}
}

func (n *Node) kinds() []string {
	var out []string
	add := func(set bool, kind string) {
		if set {
			out = append(out, kind)
		}
	}
	add(n.Element != "", "element")
	add(n.Attribute != "", "attribute")
	add(n.Value != nil, "value")
	add(n.Group != nil, "group")
	add(n.Choice != nil, "choice")
	add(n.Interleave != nil, "interleave")
	add(n.OneOrMore != nil, "oneOrMore")
	add(n.ZeroOrMore != nil, "zeroOrMore")
	add(n.Optional != nil, "optional")
	add(n.Mixed != nil, "mixed")
	add(n.Text, "text")
	add(n.Empty, "empty")
	add(n.NotAllowed, "notAllowed")
	return out
}

// locate moves the shared cursor to the node position. Nodes without a line
// have no position.
func (d *decoder) locate(n *Node) pattern.Locator {
	if n.Line <= 0 {
		return nil
	}
	d.cursor.URI = n.URI
	d.cursor.Move(n.Line, n.Column)
	return d.cursor
}

func (d *decoder) element(n *Node, path string) (pattern.Pattern, error) {
	nc, err := nameClass(n.Element, n.Except)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var content pattern.Pattern
	if n.Content != nil {
		if content, err = d.node(n.Content, path+".content"); err != nil {
			return nil, err
		}
	}
	return d.b.Element(nc, content, d.locate(n), d.options(n)...), nil
}

func (d *decoder) attribute(n *Node, path string) (pattern.Pattern, error) {
	nc, err := nameClass(n.Attribute, n.Except)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var value pattern.Pattern
	if n.Content != nil {
		if value, err = d.node(n.Content, path+".content"); err != nil {
			return nil, err
		}
	}
	return d.b.Attribute(nc, value, d.locate(n), d.options(n)...), nil
}

func (d *decoder) options(n *Node) []pattern.NodeOption {
	var opts []pattern.NodeOption
	if n.Doc != "" {
		opts = append(opts, pattern.WithDocumentation(n.Doc))
	}
	if n.Default != nil {
		opts = append(opts, pattern.WithDefault(*n.Default))
	}
	return opts
}

func (d *decoder) list(nodes []*Node, path string, join func(...pattern.Pattern) pattern.Pattern) (pattern.Pattern, error) {
	out := make([]pattern.Pattern, 0, len(nodes))
	for i, child := range nodes {
		p, err := d.node(child, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return join(out...), nil
}

func (d *decoder) unary(n *Node, path string, wrap func(pattern.Pattern) pattern.Pattern) (pattern.Pattern, error) {
	p, err := d.node(n, path)
	if err != nil {
		return nil, err
	}
	return wrap(p), nil
}

func nameClass(name string, except []string) (pattern.NameClass, error) {
	if alternatives := strings.Split(name, "|"); len(alternatives) > 1 {
		if len(except) > 0 {
			return nil, fmt.Errorf("except on name choice %q", name)
		}
		classes := make([]pattern.NameClass, 0, len(alternatives))
		for _, alt := range alternatives {
			nc, err := nameClass(alt, nil)
			if err != nil {
				return nil, err
			}
			classes = append(classes, nc)
		}
		return pattern.NameClassChoice{Classes: classes}, nil
	}
	name = strings.TrimSpace(name)
	var exceptClass pattern.NameClass
	if len(except) > 0 {
		nc, err := nameClass(strings.Join(except, "|"), nil)
		if err != nil {
			return nil, fmt.Errorf("except: %w", err)
		}
		exceptClass = nc
	}
	switch {
	case name == "*":
		return pattern.AnyName{Except: exceptClass}, nil
	case strings.HasPrefix(name, "{") && strings.HasSuffix(name, "}*"):
		return pattern.NsName{Namespace: name[1 : len(name)-2], Except: exceptClass}, nil
	case exceptClass != nil:
		return nil, fmt.Errorf("except on non-wildcard name %q", name)
	}
	q := pattern.ParseQName(name)
	if q.Local == "" || strings.ContainsAny(q.Local, "{}*") {
		return nil, fmt.Errorf("invalid name %q", name)
	}
	return pattern.SimpleName{Name: q}, nil
}
