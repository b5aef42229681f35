package derivative

import (
	"strings"

	"github.com/jacoelho/xmlassist/pkg/pattern"
)

type nameKey struct {
	name pattern.QName
	id   pattern.ID
}

type textKey struct {
	text string
	id   pattern.ID
}

type closeKey struct {
	id      pattern.ID
	lenient bool
}

// deriver computes derivatives of residual patterns with respect to
// structural events. Results are memoized for the lifetime of one matcher.
type deriver struct {
	in       *interner
	analyzer *pattern.Analyzer

	startTagOpen  map[nameKey]pattern.Pattern
	attName       map[nameKey]pattern.Pattern
	text          map[textKey]pattern.Pattern
	startTagClose map[closeKey]pattern.Pattern
}

func newDeriver() *deriver {
	return &deriver{
		in:            newInterner(),
		analyzer:      pattern.NewAnalyzer(),
		startTagOpen:  make(map[nameKey]pattern.Pattern),
		attName:       make(map[nameKey]pattern.Pattern),
		text:          make(map[textKey]pattern.Pattern),
		startTagClose: make(map[closeKey]pattern.Pattern),
	}
}

func (d *deriver) nullable(p pattern.Pattern) bool {
	return d.analyzer.Nullable(p)
}

// applyAfter rewrites the continuation of every After reachable through
// choices.
func (d *deriver) applyAfter(f func(pattern.Pattern) pattern.Pattern, p pattern.Pattern) pattern.Pattern {
	switch p := p.(type) {
	case *pattern.After:
		return d.in.after(p.Left(), f(p.Right()))
	case *pattern.Choice:
		return d.in.choice(d.applyAfter(f, p.Left()), d.applyAfter(f, p.Right()))
	default:
		return pattern.NewNotAllowed()
	}
}

func (d *deriver) startTagOpenDeriv(p pattern.Pattern, name pattern.QName) pattern.Pattern {
	key := nameKey{id: p.ID(), name: name}
	if r, ok := d.startTagOpen[key]; ok {
		return r
	}
	r := d.computeStartTagOpen(p, name)
	d.startTagOpen[key] = r
	return r
}

func (d *deriver) computeStartTagOpen(p pattern.Pattern, name pattern.QName) pattern.Pattern {
	switch p := p.(type) {
	case *pattern.Choice:
		return d.in.choice(d.startTagOpenDeriv(p.Left(), name), d.startTagOpenDeriv(p.Right(), name))
	case *pattern.Element:
		if p.NameClass() != nil && p.NameClass().Contains(name) {
			return d.in.after(p.Content(), pattern.NewEmpty())
		}
		return pattern.NewNotAllowed()
	case *pattern.Interleave:
		l, r := p.Left(), p.Right()
		return d.in.choice(
			d.applyAfter(func(x pattern.Pattern) pattern.Pattern { return d.in.interleave(x, r) }, d.startTagOpenDeriv(l, name)),
			d.applyAfter(func(x pattern.Pattern) pattern.Pattern { return d.in.interleave(l, x) }, d.startTagOpenDeriv(r, name)),
		)
	case *pattern.OneOrMore:
		rest := d.in.choice(p, pattern.NewEmpty())
		return d.applyAfter(func(x pattern.Pattern) pattern.Pattern { return d.in.group(x, rest) }, d.startTagOpenDeriv(p.Operand(), name))
	case *pattern.Group:
		l, r := p.Left(), p.Right()
		x := d.applyAfter(func(x pattern.Pattern) pattern.Pattern { return d.in.group(x, r) }, d.startTagOpenDeriv(l, name))
		if d.nullable(l) {
			return d.in.choice(x, d.startTagOpenDeriv(r, name))
		}
		return x
	case *pattern.After:
		r := p.Right()
		return d.applyAfter(func(x pattern.Pattern) pattern.Pattern { return d.in.after(x, r) }, d.startTagOpenDeriv(p.Left(), name))
	case *pattern.Attribute, *pattern.Value, *pattern.Text, *pattern.Empty, *pattern.NotAllowed:
		return pattern.NewNotAllowed()
	case *pattern.Ref:
		panic(&pattern.UnresolvedRefError{Name: p.Name()})
	default:
		panic(unexpected(p))
	}
}

// attNameDeriv leaves After(valuePattern, rest) for every attribute
// declaration accepting name.
func (d *deriver) attNameDeriv(p pattern.Pattern, name pattern.QName) pattern.Pattern {
	key := nameKey{id: p.ID(), name: name}
	if r, ok := d.attName[key]; ok {
		return r
	}
	r := d.computeAttName(p, name)
	d.attName[key] = r
	return r
}

func (d *deriver) computeAttName(p pattern.Pattern, name pattern.QName) pattern.Pattern {
	switch p := p.(type) {
	case *pattern.Attribute:
		if p.NameClass() != nil && p.NameClass().Contains(name) {
			return d.in.after(p.Value(), pattern.NewEmpty())
		}
		return pattern.NewNotAllowed()
	case *pattern.Choice:
		return d.in.choice(d.attNameDeriv(p.Left(), name), d.attNameDeriv(p.Right(), name))
	case *pattern.Group:
		l, r := p.Left(), p.Right()
		return d.in.choice(
			d.applyAfter(func(x pattern.Pattern) pattern.Pattern { return d.in.group(x, r) }, d.attNameDeriv(l, name)),
			d.applyAfter(func(x pattern.Pattern) pattern.Pattern { return d.in.group(l, x) }, d.attNameDeriv(r, name)),
		)
	case *pattern.Interleave:
		l, r := p.Left(), p.Right()
		return d.in.choice(
			d.applyAfter(func(x pattern.Pattern) pattern.Pattern { return d.in.interleave(x, r) }, d.attNameDeriv(l, name)),
			d.applyAfter(func(x pattern.Pattern) pattern.Pattern { return d.in.interleave(l, x) }, d.attNameDeriv(r, name)),
		)
	case *pattern.OneOrMore:
		rest := d.in.choice(p, pattern.NewEmpty())
		return d.applyAfter(func(x pattern.Pattern) pattern.Pattern { return d.in.group(x, rest) }, d.attNameDeriv(p.Operand(), name))
	case *pattern.After:
		r := p.Right()
		return d.applyAfter(func(x pattern.Pattern) pattern.Pattern { return d.in.after(x, r) }, d.attNameDeriv(p.Left(), name))
	case *pattern.Element, *pattern.Value, *pattern.Text, *pattern.Empty, *pattern.NotAllowed:
		return pattern.NewNotAllowed()
	case *pattern.Ref:
		panic(&pattern.UnresolvedRefError{Name: p.Name()})
	default:
		panic(unexpected(p))
	}
}

// attValueDeriv consumes the value left pending by attNameDeriv. A nil value
// accepts whatever the value pattern allows.
func (d *deriver) attValueDeriv(p pattern.Pattern, value *string) pattern.Pattern {
	switch p := p.(type) {
	case *pattern.After:
		if value == nil || d.valueMatch(p.Left(), *value) {
			return p.Right()
		}
		return pattern.NewNotAllowed()
	case *pattern.Choice:
		return d.in.choice(d.attValueDeriv(p.Left(), value), d.attValueDeriv(p.Right(), value))
	default:
		return pattern.NewNotAllowed()
	}
}

func (d *deriver) valueMatch(p pattern.Pattern, s string) bool {
	if d.nullable(p) && strings.TrimSpace(s) == "" {
		return true
	}
	return d.nullable(d.textDeriv(p, s))
}

func (d *deriver) textDeriv(p pattern.Pattern, s string) pattern.Pattern {
	key := textKey{id: p.ID(), text: s}
	if r, ok := d.text[key]; ok {
		return r
	}
	r := d.computeText(p, s)
	d.text[key] = r
	return r
}

func (d *deriver) computeText(p pattern.Pattern, s string) pattern.Pattern {
	switch p := p.(type) {
	case *pattern.Choice:
		return d.in.choice(d.textDeriv(p.Left(), s), d.textDeriv(p.Right(), s))
	case *pattern.Interleave:
		l, r := p.Left(), p.Right()
		return d.in.choice(d.in.interleave(d.textDeriv(l, s), r), d.in.interleave(l, d.textDeriv(r, s)))
	case *pattern.Group:
		l, r := p.Left(), p.Right()
		x := d.in.group(d.textDeriv(l, s), r)
		if d.nullable(l) {
			return d.in.choice(x, d.textDeriv(r, s))
		}
		return x
	case *pattern.After:
		return d.in.after(d.textDeriv(p.Left(), s), p.Right())
	case *pattern.OneOrMore:
		return d.in.group(d.textDeriv(p.Operand(), s), d.in.choice(p, pattern.NewEmpty()))
	case *pattern.Text:
		return p
	case *pattern.Value:
		if normalizeSpace(p.Literal()) == normalizeSpace(s) {
			return pattern.NewEmpty()
		}
		return pattern.NewNotAllowed()
	case *pattern.Element, *pattern.Attribute, *pattern.Empty, *pattern.NotAllowed:
		return pattern.NewNotAllowed()
	case *pattern.Ref:
		panic(&pattern.UnresolvedRefError{Name: p.Name()})
	default:
		panic(unexpected(p))
	}
}

// startTagCloseDeriv removes pending attribute declarations. Strictly, a
// still-pending attribute is missing and kills its branch; leniently it is
// treated as absent but acceptable.
func (d *deriver) startTagCloseDeriv(p pattern.Pattern, lenient bool) pattern.Pattern {
	key := closeKey{id: p.ID(), lenient: lenient}
	if r, ok := d.startTagClose[key]; ok {
		return r
	}
	r := d.computeStartTagClose(p, lenient)
	d.startTagClose[key] = r
	return r
}

func (d *deriver) computeStartTagClose(p pattern.Pattern, lenient bool) pattern.Pattern {
	switch p := p.(type) {
	case *pattern.After:
		return d.in.after(d.startTagCloseDeriv(p.Left(), lenient), p.Right())
	case *pattern.Choice:
		return d.in.choice(d.startTagCloseDeriv(p.Left(), lenient), d.startTagCloseDeriv(p.Right(), lenient))
	case *pattern.Group:
		return d.in.group(d.startTagCloseDeriv(p.Left(), lenient), d.startTagCloseDeriv(p.Right(), lenient))
	case *pattern.Interleave:
		return d.in.interleave(d.startTagCloseDeriv(p.Left(), lenient), d.startTagCloseDeriv(p.Right(), lenient))
	case *pattern.OneOrMore:
		return d.in.oneOrMore(d.startTagCloseDeriv(p.Operand(), lenient))
	case *pattern.Attribute:
		if lenient {
			return pattern.NewEmpty()
		}
		return pattern.NewNotAllowed()
	case *pattern.Element, *pattern.Value, *pattern.Text, *pattern.Empty, *pattern.NotAllowed:
		return p
	case *pattern.Ref:
		panic(&pattern.UnresolvedRefError{Name: p.Name()})
	default:
		panic(unexpected(p))
	}
}

// endTagDeriv closes the current element if its content is complete.
func (d *deriver) endTagDeriv(p pattern.Pattern) pattern.Pattern {
	switch p := p.(type) {
	case *pattern.Choice:
		return d.in.choice(d.endTagDeriv(p.Left()), d.endTagDeriv(p.Right()))
	case *pattern.After:
		if d.nullable(p.Left()) {
			return p.Right()
		}
		return pattern.NewNotAllowed()
	default:
		return pattern.NewNotAllowed()
	}
}

// skipContentDeriv closes the current element without checking its content.
func (d *deriver) skipContentDeriv(p pattern.Pattern) pattern.Pattern {
	switch p := p.(type) {
	case *pattern.Choice:
		return d.in.choice(d.skipContentDeriv(p.Left()), d.skipContentDeriv(p.Right()))
	case *pattern.After:
		return p.Right()
	default:
		return pattern.NewNotAllowed()
	}
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
