package derivative

import (
	"slices"

	"github.com/jacoelho/xmlassist/pkg/pattern"
)

// NameSet is the set of names that may legally open next.
type NameSet struct {
	// Names lists the explicitly named candidates, sorted.
	Names []pattern.QName
	// Wildcard reports that a wildcard name class also accepts names not listed.
	Wildcard bool
}

// Contains reports whether name is listed.
func (s NameSet) Contains(name pattern.QName) bool {
	_, found := slices.BinarySearchFunc(s.Names, name, pattern.QName.Compare)
	return found
}

type firstCollector struct {
	d     *deriver
	seen  map[pattern.ID]struct{}
	names map[pattern.QName]struct{}
	any   bool
	attrs bool
}

func (d *deriver) firstSet(p pattern.Pattern, attrs bool) NameSet {
	c := &firstCollector{
		d:     d,
		seen:  make(map[pattern.ID]struct{}),
		names: make(map[pattern.QName]struct{}),
		attrs: attrs,
	}
	c.visit(p)
	out := NameSet{Wildcard: c.any}
	for name := range c.names {
		out.Names = append(out.Names, name)
	}
	slices.SortFunc(out.Names, pattern.QName.Compare)
	return out
}

func (c *firstCollector) add(nc pattern.NameClass) {
	if nc == nil {
		return
	}
	for _, name := range pattern.ListedNames(nc) {
		c.names[name] = struct{}{}
	}
	if !onlySimple(nc) {
		c.any = true
	}
}

func onlySimple(nc pattern.NameClass) bool {
	switch nc := nc.(type) {
	case pattern.SimpleName:
		return true
	case pattern.NameClassChoice:
		for _, member := range nc.Classes {
			if !onlySimple(member) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// visit walks the positions that may be matched by the next event. For
// elements a group only exposes its right operand when the left may be
// skipped; attributes are unordered, so both operands are always exposed.
func (c *firstCollector) visit(p pattern.Pattern) {
	if _, ok := c.seen[p.ID()]; ok {
		return
	}
	c.seen[p.ID()] = struct{}{}
	switch p := p.(type) {
	case *pattern.Element:
		if !c.attrs {
			c.add(p.NameClass())
		}
	case *pattern.Attribute:
		if c.attrs {
			c.add(p.NameClass())
		}
	case *pattern.Choice:
		c.visit(p.Left())
		c.visit(p.Right())
	case *pattern.Interleave:
		c.visit(p.Left())
		c.visit(p.Right())
	case *pattern.Group:
		c.visit(p.Left())
		if c.attrs || c.d.nullable(p.Left()) {
			c.visit(p.Right())
		}
	case *pattern.OneOrMore:
		c.visit(p.Operand())
	case *pattern.After:
		c.visit(p.Left())
	case *pattern.Value, *pattern.Text, *pattern.Empty, *pattern.NotAllowed:
	case *pattern.Ref:
		panic(&pattern.UnresolvedRefError{Name: p.Name()})
	default:
		panic(unexpected(p))
	}
}
