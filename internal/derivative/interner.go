package derivative

import "github.com/jacoelho/xmlassist/pkg/pattern"

type consKey struct {
	kind        pattern.Kind
	left, right pattern.ID
}

// interner builds residual combinators, applying the usual simplifications
// and sharing structurally identical nodes so memo entries are reused.
type interner struct {
	nodes map[consKey]pattern.Pattern
}

func newInterner() *interner {
	return &interner{nodes: make(map[consKey]pattern.Pattern)}
}

func isNotAllowed(p pattern.Pattern) bool { return p.Kind() == pattern.KindNotAllowed }
func isEmpty(p pattern.Pattern) bool      { return p.Kind() == pattern.KindEmpty }

func (in *interner) lookup(key consKey, build func() pattern.Pattern) pattern.Pattern {
	if p, ok := in.nodes[key]; ok {
		return p
	}
	p := build()
	in.nodes[key] = p
	return p
}

// ordered normalizes operand order for commutative combinators.
func ordered(kind pattern.Kind, l, r pattern.Pattern) consKey {
	if l.ID() > r.ID() {
		l, r = r, l
	}
	return consKey{kind: kind, left: l.ID(), right: r.ID()}
}

func (in *interner) choice(l, r pattern.Pattern) pattern.Pattern {
	switch {
	case isNotAllowed(l):
		return r
	case isNotAllowed(r):
		return l
	case l.ID() == r.ID():
		return l
	}
	return in.lookup(ordered(pattern.KindChoice, l, r), func() pattern.Pattern {
		return pattern.NewChoice(l, r)
	})
}

func (in *interner) group(l, r pattern.Pattern) pattern.Pattern {
	switch {
	case isNotAllowed(l) || isNotAllowed(r):
		return pattern.NewNotAllowed()
	case isEmpty(l):
		return r
	case isEmpty(r):
		return l
	}
	return in.lookup(consKey{kind: pattern.KindGroup, left: l.ID(), right: r.ID()}, func() pattern.Pattern {
		return pattern.NewGroup(l, r)
	})
}

func (in *interner) interleave(l, r pattern.Pattern) pattern.Pattern {
	switch {
	case isNotAllowed(l) || isNotAllowed(r):
		return pattern.NewNotAllowed()
	case isEmpty(l):
		return r
	case isEmpty(r):
		return l
	}
	return in.lookup(ordered(pattern.KindInterleave, l, r), func() pattern.Pattern {
		return pattern.NewInterleave(l, r)
	})
}

func (in *interner) after(l, r pattern.Pattern) pattern.Pattern {
	if isNotAllowed(l) || isNotAllowed(r) {
		return pattern.NewNotAllowed()
	}
	return in.lookup(consKey{kind: pattern.KindAfter, left: l.ID(), right: r.ID()}, func() pattern.Pattern {
		return pattern.NewAfter(l, r)
	})
}

func (in *interner) oneOrMore(p pattern.Pattern) pattern.Pattern {
	if isNotAllowed(p) || isEmpty(p) {
		return p
	}
	return in.lookup(consKey{kind: pattern.KindOneOrMore, left: p.ID()}, func() pattern.Pattern {
		return pattern.NewOneOrMore(p)
	})
}
