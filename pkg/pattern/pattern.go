// Package pattern defines the immutable content-model tree shared by every
// grammar notation, together with the structural analyses computed over it.
//
// Trees are built bottom-up, so a node can never be mutated or made cyclic
// after construction. Every node receives a process-wide unique ID; caches
// keyed by node identity use the ID rather than structural equality.
package pattern

import "sync/atomic"

// ID identifies one pattern node for the lifetime of the process.
type ID uint64

// Kind identifies the variant of a pattern node.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindNotAllowed
	KindText
	KindValue
	KindElement
	KindAttribute
	KindGroup
	KindChoice
	KindInterleave
	KindOneOrMore
	KindAfter
	KindRef
)

var kindNames = [...]string{
	KindEmpty:      "empty",
	KindNotAllowed: "notAllowed",
	KindText:       "text",
	KindValue:      "value",
	KindElement:    "element",
	KindAttribute:  "attribute",
	KindGroup:      "group",
	KindChoice:     "choice",
	KindInterleave: "interleave",
	KindOneOrMore:  "oneOrMore",
	KindAfter:      "after",
	KindRef:        "ref",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Pattern is a node of a content-model tree. The set of implementations is
// closed: *Element, *Attribute, *Group, *Choice, *Interleave, *OneOrMore,
// *After, *Value, *Text, *Empty, *NotAllowed and *Ref.
type Pattern interface {
	ID() ID
	Kind() Kind
	isPattern()
}

var lastID atomic.Uint64

func nextID() ID { return ID(lastID.Add(1)) }

type node struct {
	id ID
}

func (n node) ID() ID   { return n.id }
func (node) isPattern() {}
func newNode() node     { return node{id: nextID()} }

// Element matches one element whose name is in NameClass and whose
// attributes and children match Content.
type Element struct {
	name    NameClass
	content Pattern
	pos     *Position
	doc     string
	node
}

// Attribute matches one attribute whose name is in NameClass and whose
// value matches Value.
type Attribute struct {
	name       NameClass
	value      Pattern
	pos        *Position
	def        string
	doc        string
	hasDefault bool
	node
}

// Group matches Left followed by Right.
type Group struct {
	left, right Pattern
	node
}

// Choice matches either Left or Right.
type Choice struct {
	left, right Pattern
	node
}

// Interleave matches Left and Right in any interleaving.
type Interleave struct {
	left, right Pattern
	node
}

// OneOrMore matches one or more repetitions of Operand.
type OneOrMore struct {
	operand Pattern
	node
}

// After matches Left, then the end of the current element, then Right.
// It only appears in residual patterns produced by derivative computation.
type After struct {
	left, right Pattern
	node
}

// Value matches a literal, compared after whitespace normalization.
type Value struct {
	pos     *Position
	literal string
	node
}

// Text matches any run of text, including none.
type Text struct{ node }

// Empty matches nothing at all.
type Empty struct{ node }

// NotAllowed matches no input.
type NotAllowed struct{ node }

// Ref is a named reference. Grammar front-ends substitute every Ref before
// handing a tree over; analyses treat a remaining Ref as a broken contract.
type Ref struct {
	name string
	node
}

var (
	emptyPattern      = &Empty{newNode()}
	notAllowedPattern = &NotAllowed{newNode()}
	textPattern       = &Text{newNode()}
)

// NewEmpty returns the shared Empty pattern.
func NewEmpty() *Empty { return emptyPattern }

// NewNotAllowed returns the shared NotAllowed pattern.
func NewNotAllowed() *NotAllowed { return notAllowedPattern }

// NewText returns the shared Text pattern.
func NewText() *Text { return textPattern }

// NewGroup returns a fresh Group node.
func NewGroup(left, right Pattern) *Group {
	return &Group{left: left, right: right, node: newNode()}
}

// NewChoice returns a fresh Choice node.
func NewChoice(left, right Pattern) *Choice {
	return &Choice{left: left, right: right, node: newNode()}
}

// NewInterleave returns a fresh Interleave node.
func NewInterleave(left, right Pattern) *Interleave {
	return &Interleave{left: left, right: right, node: newNode()}
}

// NewOneOrMore returns a fresh OneOrMore node.
func NewOneOrMore(operand Pattern) *OneOrMore {
	return &OneOrMore{operand: operand, node: newNode()}
}

// NewAfter returns a fresh After node.
func NewAfter(left, right Pattern) *After {
	return &After{left: left, right: right, node: newNode()}
}

// NewRef returns an unresolved reference.
func NewRef(name string) *Ref {
	return &Ref{name: name, node: newNode()}
}

func (*Element) Kind() Kind    { return KindElement }
func (*Attribute) Kind() Kind  { return KindAttribute }
func (*Group) Kind() Kind      { return KindGroup }
func (*Choice) Kind() Kind     { return KindChoice }
func (*Interleave) Kind() Kind { return KindInterleave }
func (*OneOrMore) Kind() Kind  { return KindOneOrMore }
func (*After) Kind() Kind      { return KindAfter }
func (*Value) Kind() Kind      { return KindValue }
func (*Text) Kind() Kind       { return KindText }
func (*Empty) Kind() Kind      { return KindEmpty }
func (*NotAllowed) Kind() Kind { return KindNotAllowed }
func (*Ref) Kind() Kind        { return KindRef }

// NameClass returns the names the element accepts.
func (e *Element) NameClass() NameClass { return e.name }

// Content returns the attribute and child content of the element.
func (e *Element) Content() Pattern { return e.content }

// Position returns the declaration position, if one was recorded.
func (e *Element) Position() (Position, bool) {
	if e.pos == nil {
		return Position{}, false
	}
	return *e.pos, true
}

// Documentation returns the inline documentation annotation.
func (e *Element) Documentation() string { return e.doc }

// NameClass returns the names the attribute accepts.
func (a *Attribute) NameClass() NameClass { return a.name }

// Value returns the value pattern.
func (a *Attribute) Value() Pattern { return a.value }

// Position returns the declaration position, if one was recorded.
func (a *Attribute) Position() (Position, bool) {
	if a.pos == nil {
		return Position{}, false
	}
	return *a.pos, true
}

// DefaultValue returns the declared default value.
func (a *Attribute) DefaultValue() (string, bool) { return a.def, a.hasDefault }

// Documentation returns the inline documentation annotation.
func (a *Attribute) Documentation() string { return a.doc }

func (g *Group) Left() Pattern       { return g.left }
func (g *Group) Right() Pattern      { return g.right }
func (c *Choice) Left() Pattern      { return c.left }
func (c *Choice) Right() Pattern     { return c.right }
func (i *Interleave) Left() Pattern  { return i.left }
func (i *Interleave) Right() Pattern { return i.right }
func (a *After) Left() Pattern       { return a.left }
func (a *After) Right() Pattern      { return a.right }

// Operand returns the repeated pattern.
func (o *OneOrMore) Operand() Pattern { return o.operand }

// Literal returns the literal text.
func (v *Value) Literal() string { return v.literal }

// Position returns the declaration position, if one was recorded.
func (v *Value) Position() (Position, bool) {
	if v.pos == nil {
		return Position{}, false
	}
	return *v.pos, true
}

// Name returns the referenced definition name.
func (r *Ref) Name() string { return r.name }

// Operands returns the direct children of p in document order.
func Operands(p Pattern) []Pattern {
	switch p := p.(type) {
	case *Element:
		return []Pattern{p.content}
	case *Attribute:
		return []Pattern{p.value}
	case *Group:
		return []Pattern{p.left, p.right}
	case *Choice:
		return []Pattern{p.left, p.right}
	case *Interleave:
		return []Pattern{p.left, p.right}
	case *After:
		return []Pattern{p.left, p.right}
	case *OneOrMore:
		return []Pattern{p.operand}
	case *Value, *Text, *Empty, *NotAllowed, *Ref:
		return nil
	default:
		panic(unexpected(p))
	}
}
