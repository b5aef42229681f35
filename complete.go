package xmlassist

import (
	"context"
	"fmt"

	"github.com/untillpro/goutils/logger"

	"github.com/jacoelho/xmlassist/internal/derivative"
	"github.com/jacoelho/xmlassist/pkg/pattern"
)

// PossibleNextElementNames returns the names of the elements that may be
// inserted into elem at cursor, given the attributes of elem and the
// children that end before cursor. A negative cursor means after the last
// closed child. Elements without a declaration yield no names.
//
// ctx is checked periodically while siblings are replayed.
func (d *Document) PossibleNextElementNames(ctx context.Context, elem Element, cursor int) ([]pattern.QName, error) {
	m, err := d.replay(ctx, elem, cursor)
	if m == nil || err != nil {
		return nil, err
	}
	return m.PossibleStartTagNames().Names, nil
}

// PossibleAttributeNames returns the names of the attributes that may
// still be added to the start tag of elem.
func (d *Document) PossibleAttributeNames(elem Element) []pattern.QName {
	decl := d.Resolve(elem)
	if decl == nil {
		return nil
	}
	m := derivative.NewMatcher(decl.p)
	m.StartTagOpen(elem.Name())
	for _, attr := range elem.Attributes() {
		if derivative.IsNamespaceDeclaration(attr.Name) {
			continue
		}
		var value *string
		if attr.Delimited {
			value = &attr.Value
		}
		m.Attribute(attr.Name, value)
	}
	return m.PossibleAttributeNames().Names
}

func (d *Document) replay(ctx context.Context, elem Element, cursor int) (*derivative.Matcher, error) {
	decl := d.Resolve(elem)
	if decl == nil {
		return nil, nil
	}
	m := derivative.NewMatcher(decl.p)
	res, err := m.Replay(ctx, derivative.Fragment{
		Name:       elem.Name(),
		Attributes: elem.Attributes(),
		Children:   elem.Children(),
	}, derivative.ReplayOptions{PollInterval: d.poll, Cursor: cursor})
	if err != nil {
		return nil, fmt.Errorf("possible next elements of %s: %w", formatPath(elementPath(elem)), err)
	}
	if logger.IsVerbose() && (len(res.RejectedAttributes) > 0 || len(res.RejectedChildren) > 0 || res.MissingAttributes) {
		logger.Verbose(fmt.Sprintf("xmlassist: replay of %s recovered: attributes %v, children %v, missing attributes %t",
			formatPath(elementPath(elem)), res.RejectedAttributes, res.RejectedChildren, res.MissingAttributes))
	}
	return m, nil
}
