package pattern

import (
	"maps"
	"slices"
	"sync"
)

// Analyzer computes structural properties of pattern trees. Nullability is
// memoized per combinator node; since trees never change, the memo may live
// as long as the tree. The zero value is ready to use and safe for
// concurrent use.
type Analyzer struct {
	nullable sync.Map // ID -> bool
}

// NewAnalyzer returns an analyzer with an empty memo.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Nullable reports whether p matches empty content.
func Nullable(p Pattern) bool {
	return new(Analyzer).Nullable(p)
}

// RequiredChildNames returns the local names of child elements that appear
// in every instance of content, sorted.
func RequiredChildNames(content Pattern) []string {
	return new(Analyzer).RequiredChildNames(content)
}

// PossibleRequiredChildNames returns the local names of child elements that
// are required within at least one alternative of content, sorted.
func PossibleRequiredChildNames(content Pattern) []string {
	return new(Analyzer).PossibleRequiredChildNames(content)
}

// RequiredAttributeNames returns the attribute names that appear in every
// instance of content, sorted.
func RequiredAttributeNames(content Pattern) []QName {
	return new(Analyzer).RequiredAttributeNames(content)
}

// Nullable reports whether p matches empty content.
func (a *Analyzer) Nullable(p Pattern) bool {
	switch p := p.(type) {
	case *Empty, *Text:
		return true
	case *NotAllowed, *Element, *Attribute, *Value:
		return false
	case *Group, *Choice, *Interleave, *OneOrMore, *After:
		if v, ok := a.nullable.Load(p.ID()); ok {
			return v.(bool)
		}
		v := a.combinatorNullable(p)
		a.nullable.Store(p.ID(), v)
		return v
	case *Ref:
		panic(&UnresolvedRefError{Name: p.name})
	default:
		panic(unexpected(p))
	}
}

// combinatorNullable evaluates both operands so an unresolved reference is
// reported whatever its position.
func (a *Analyzer) combinatorNullable(p Pattern) bool {
	switch p := p.(type) {
	case *Choice:
		l, r := a.Nullable(p.left), a.Nullable(p.right)
		return l || r
	case *Group:
		l, r := a.Nullable(p.left), a.Nullable(p.right)
		return l && r
	case *Interleave:
		l, r := a.Nullable(p.left), a.Nullable(p.right)
		return l && r
	case *After:
		l, r := a.Nullable(p.left), a.Nullable(p.right)
		return l && r
	case *OneOrMore:
		return a.Nullable(p.operand)
	default:
		panic(unexpected(p))
	}
}

// RequiredChildNames returns the local names of child elements that appear
// in every instance of content, sorted.
func (a *Analyzer) RequiredChildNames(content Pattern) []string {
	return sortedNames(requiredSet(a, content, elementLocalName))
}

// PossibleRequiredChildNames returns the local names of child elements that
// are required within at least one alternative of content, sorted.
func (a *Analyzer) PossibleRequiredChildNames(content Pattern) []string {
	return sortedNames(possibleSet(a, content, elementLocalName))
}

// RequiredAttributeNames returns the attribute names that appear in every
// instance of content, sorted.
func (a *Analyzer) RequiredAttributeNames(content Pattern) []QName {
	return slices.SortedFunc(maps.Keys(requiredSet(a, content, attributeName)), QName.Compare)
}

// PossibleRequiredAttributeNames returns the attribute names required within
// at least one alternative of content, sorted.
func (a *Analyzer) PossibleRequiredAttributeNames(content Pattern) []QName {
	return slices.SortedFunc(maps.Keys(possibleSet(a, content, attributeName)), QName.Compare)
}

type nameSet[K comparable] map[K]struct{}

func elementLocalName(p Pattern) (string, bool) {
	e, ok := p.(*Element)
	if !ok {
		return "", false
	}
	name, ok := SimpleNameOf(e.name)
	return name.Local, ok
}

func attributeName(p Pattern) (QName, bool) {
	attr, ok := p.(*Attribute)
	if !ok {
		return QName{}, false
	}
	return SimpleNameOf(attr.name)
}

func sortedNames(set nameSet[string]) []string {
	return slices.Sorted(maps.Keys(set))
}

// requiredSet collects names that every match of p must contain. A nullable
// subtree contributes nothing; a choice contributes what both branches share.
// Element and Attribute nodes are boundaries: content below them belongs to
// another element.
func requiredSet[K comparable](a *Analyzer, p Pattern, pick func(Pattern) (K, bool)) nameSet[K] {
	if k, ok := pick(p); ok {
		return nameSet[K]{k: {}}
	}
	if a.Nullable(p) {
		return nil
	}
	switch p := p.(type) {
	case *Group:
		return union(requiredSet(a, p.left, pick), requiredSet(a, p.right, pick))
	case *Interleave:
		return union(requiredSet(a, p.left, pick), requiredSet(a, p.right, pick))
	case *After:
		// the right operand follows the end tag and belongs to the parent
		return requiredSet(a, p.left, pick)
	case *OneOrMore:
		return requiredSet(a, p.operand, pick)
	case *Choice:
		// a notAllowed branch can never be taken
		if _, ok := p.left.(*NotAllowed); ok {
			return requiredSet(a, p.right, pick)
		}
		if _, ok := p.right.(*NotAllowed); ok {
			return requiredSet(a, p.left, pick)
		}
		return intersect(requiredSet(a, p.left, pick), requiredSet(a, p.right, pick))
	case *Element, *Attribute, *Value, *Text, *Empty, *NotAllowed:
		return nil
	case *Ref:
		panic(&UnresolvedRefError{Name: p.name})
	default:
		panic(unexpected(p))
	}
}

// possibleSet unions, across binary combinators, the names contributed by
// every non-nullable operand.
func possibleSet[K comparable](a *Analyzer, p Pattern, pick func(Pattern) (K, bool)) nameSet[K] {
	if k, ok := pick(p); ok {
		return nameSet[K]{k: {}}
	}
	switch p := p.(type) {
	case *Group:
		return possibleBinary(a, p.left, p.right, pick)
	case *Choice:
		return possibleBinary(a, p.left, p.right, pick)
	case *Interleave:
		return possibleBinary(a, p.left, p.right, pick)
	case *OneOrMore:
		return possibleSet(a, p.operand, pick)
	case *After:
		return possibleSet(a, p.left, pick)
	case *Element, *Attribute, *Value, *Text, *Empty, *NotAllowed:
		return nil
	case *Ref:
		panic(&UnresolvedRefError{Name: p.name})
	default:
		panic(unexpected(p))
	}
}

func possibleBinary[K comparable](a *Analyzer, left, right Pattern, pick func(Pattern) (K, bool)) nameSet[K] {
	var out nameSet[K]
	if !a.Nullable(left) {
		out = union(out, possibleSet(a, left, pick))
	}
	if !a.Nullable(right) {
		out = union(out, possibleSet(a, right, pick))
	}
	return out
}

func union[K comparable](a, b nameSet[K]) nameSet[K] {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make(nameSet[K], len(a)+len(b))
	maps.Copy(out, a)
	maps.Copy(out, b)
	return out
}

func intersect[K comparable](a, b nameSet[K]) nameSet[K] {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	out := make(nameSet[K])
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}
