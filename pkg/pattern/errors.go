package pattern

import (
	"errors"
	"fmt"
)

// ErrNilOperand reports a combinator built with a missing operand.
var ErrNilOperand = errors.New("pattern: nil operand")

// UnresolvedRefError reports a Ref left in a tree that should have been
// fully resolved by the grammar front-end.
type UnresolvedRefError struct {
	Name string
}

func (e *UnresolvedRefError) Error() string {
	return fmt.Sprintf("pattern: unresolved reference %q", e.Name)
}

func unexpected(p Pattern) string {
	return fmt.Sprintf("pattern: unexpected node %T", p)
}

// Check verifies that a tree honors the resolved-tree contract: no Ref
// nodes and no nil operands.
func Check(root Pattern) error {
	if root == nil {
		return ErrNilOperand
	}
	seen := make(map[ID]struct{})
	var visit func(p Pattern) error
	visit = func(p Pattern) error {
		if p == nil {
			return ErrNilOperand
		}
		if _, ok := seen[p.ID()]; ok {
			return nil
		}
		seen[p.ID()] = struct{}{}
		if r, ok := p.(*Ref); ok {
			return &UnresolvedRefError{Name: r.name}
		}
		for _, child := range Operands(p) {
			if err := visit(child); err != nil {
				return err
			}
		}
		return nil
	}
	return visit(root)
}
