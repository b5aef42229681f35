package pattern

// CollectValueLiterals returns the literal of every Value leaf below p in
// document order. Duplicates are kept.
func CollectValueLiterals(p Pattern) []string {
	var out []string
	var visit func(Pattern)
	visit = func(p Pattern) {
		switch p := p.(type) {
		case *Value:
			out = append(out, p.literal)
		case *Ref:
			panic(&UnresolvedRefError{Name: p.name})
		default:
			for _, child := range Operands(p) {
				visit(child)
			}
		}
	}
	visit(p)
	return out
}

// ChildElements returns the element declarations reachable from content
// without crossing another element or an attribute, in document order.
// A node shared by several branches is listed once.
func ChildElements(content Pattern) []*Element {
	var out []*Element
	walkShallow(content, func(p Pattern) {
		if e, ok := p.(*Element); ok {
			out = append(out, e)
		}
	})
	return out
}

// ChildAttributes returns the attribute declarations of content in
// document order, without descending into child elements.
func ChildAttributes(content Pattern) []*Attribute {
	var out []*Attribute
	walkShallow(content, func(p Pattern) {
		if a, ok := p.(*Attribute); ok {
			out = append(out, a)
		}
	})
	return out
}

func walkShallow(root Pattern, fn func(Pattern)) {
	seen := make(map[ID]struct{})
	var visit func(Pattern)
	visit = func(p Pattern) {
		if p == nil {
			return
		}
		if _, ok := seen[p.ID()]; ok {
			return
		}
		seen[p.ID()] = struct{}{}
		switch p := p.(type) {
		case *Element, *Attribute:
			fn(p)
		case *Ref:
			panic(&UnresolvedRefError{Name: p.name})
		default:
			for _, child := range Operands(p) {
				visit(child)
			}
		}
	}
	visit(root)
}

// ContentValueLiterals is CollectValueLiterals restricted to the text
// content of an element: it does not descend into attributes or child
// elements.
func ContentValueLiterals(content Pattern) []string {
	var out []string
	var visit func(Pattern)
	visit = func(p Pattern) {
		switch p := p.(type) {
		case *Value:
			out = append(out, p.literal)
		case *Element, *Attribute:
		case *Ref:
			panic(&UnresolvedRefError{Name: p.name})
		default:
			for _, child := range Operands(p) {
				visit(child)
			}
		}
	}
	visit(content)
	return out
}
