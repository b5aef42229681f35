package pattern

// NodeOption configures optional annotations of declaration nodes.
type NodeOption func(*nodeOptions)

type nodeOptions struct {
	doc        string
	def        string
	hasDefault bool
}

// WithDocumentation attaches an inline documentation annotation.
func WithDocumentation(doc string) NodeOption {
	return func(o *nodeOptions) { o.doc = doc }
}

// WithDefault attaches a default value to an attribute declaration.
func WithDefault(value string) NodeOption {
	return func(o *nodeOptions) {
		o.def = value
		o.hasDefault = true
	}
}

// Builder constructs pattern trees for a grammar front-end. Every method
// taking a Locator copies its position on the spot, so the front-end may keep
// advancing a single shared cursor between calls.
type Builder struct {
	baseURI string
}

// NewBuilder returns a builder. baseURI is recorded for positions whose
// locator reports no system ID.
func NewBuilder(baseURI string) *Builder {
	return &Builder{baseURI: baseURI}
}

func (b *Builder) position(loc Locator) *Position {
	pos := PositionOf(loc)
	if pos != nil && pos.URI == "" && b != nil {
		pos.URI = b.baseURI
	}
	return pos
}

func applyOptions(opts []NodeOption) nodeOptions {
	var o nodeOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Element builds an element declaration at the locator's current position.
func (b *Builder) Element(nc NameClass, content Pattern, loc Locator, opts ...NodeOption) *Element {
	if content == nil {
		content = NewEmpty()
	}
	o := applyOptions(opts)
	return &Element{
		name:    nc,
		content: content,
		pos:     b.position(loc),
		doc:     o.doc,
		node:    newNode(),
	}
}

// Attribute builds an attribute declaration at the locator's current position.
// A nil value pattern means any text.
func (b *Builder) Attribute(nc NameClass, value Pattern, loc Locator, opts ...NodeOption) *Attribute {
	if value == nil {
		value = NewText()
	}
	o := applyOptions(opts)
	return &Attribute{
		name:       nc,
		value:      value,
		pos:        b.position(loc),
		def:        o.def,
		hasDefault: o.hasDefault,
		doc:        o.doc,
		node:       newNode(),
	}
}

// Value builds a literal value at the locator's current position.
func (b *Builder) Value(literal string, loc Locator) *Value {
	return &Value{literal: literal, pos: b.position(loc), node: newNode()}
}

// Group folds patterns into left-nested groups. No patterns yields Empty.
func (b *Builder) Group(patterns ...Pattern) Pattern {
	return fold(patterns, NewEmpty(), func(l, r Pattern) Pattern { return NewGroup(l, r) })
}

// Choice folds patterns into left-nested choices. No patterns yields NotAllowed.
func (b *Builder) Choice(patterns ...Pattern) Pattern {
	return fold(patterns, NewNotAllowed(), func(l, r Pattern) Pattern { return NewChoice(l, r) })
}

// Interleave folds patterns into left-nested interleaves. No patterns yields Empty.
func (b *Builder) Interleave(patterns ...Pattern) Pattern {
	return fold(patterns, NewEmpty(), func(l, r Pattern) Pattern { return NewInterleave(l, r) })
}

// OneOrMore builds a repetition.
func (b *Builder) OneOrMore(p Pattern) Pattern { return NewOneOrMore(p) }

// Optional builds choice(p, empty).
func (b *Builder) Optional(p Pattern) Pattern { return NewChoice(p, NewEmpty()) }

// ZeroOrMore builds choice(oneOrMore(p), empty).
func (b *Builder) ZeroOrMore(p Pattern) Pattern {
	return NewChoice(NewOneOrMore(p), NewEmpty())
}

// Mixed builds interleave(text, p).
func (b *Builder) Mixed(p Pattern) Pattern { return NewInterleave(NewText(), p) }

// Text returns the shared Text pattern.
func (b *Builder) Text() Pattern { return NewText() }

// Empty returns the shared Empty pattern.
func (b *Builder) Empty() Pattern { return NewEmpty() }

// NotAllowed returns the shared NotAllowed pattern.
func (b *Builder) NotAllowed() Pattern { return NewNotAllowed() }

func fold(patterns []Pattern, zero Pattern, join func(l, r Pattern) Pattern) Pattern {
	var out Pattern
	for _, p := range patterns {
		if p == nil {
			continue
		}
		if out == nil {
			out = p
			continue
		}
		out = join(out, p)
	}
	if out == nil {
		return zero
	}
	return out
}
