package xmlassist

import (
	"slices"

	"github.com/jacoelho/xmlassist/errors"
	"github.com/jacoelho/xmlassist/internal/derivative"
	"github.com/jacoelho/xmlassist/pkg/pattern"
)

// Check reports the content-model diagnostics of elem: undeclared or
// invalid attributes, missing required attributes, unexpected children and
// incomplete content. Child contents are not checked; call Check on each
// child for that. An element without a declaration yields a single
// diagnostic, a nil element none.
func (d *Document) Check(elem Element) errors.ValidationList {
	if d == nil {
		return errors.ValidationList{errors.NewValidation(errors.ErrDocumentNotLoaded, "content-model document not loaded", "")}
	}
	if elem == nil {
		return nil
	}
	path := formatPath(elementPath(elem))
	decl := d.Resolve(elem)
	if decl == nil {
		v := errors.NewValidationf(errors.ErrElementNotDeclared, path, "element %s is not declared here", elem.Name())
		v.Offset = elem.Offset()
		return errors.ValidationList{v}
	}

	var out errors.ValidationList
	report := func(v errors.Validation, offset int, severity errors.Severity) {
		v.Offset = offset
		v.Severity = severity
		out = append(out, v)
	}

	m := derivative.NewMatcher(decl.p)
	m.StartTagOpen(elem.Name())
	present := make(map[pattern.QName]struct{})
	for _, attr := range elem.Attributes() {
		if derivative.IsNamespaceDeclaration(attr.Name) {
			continue
		}
		present[attr.Name] = struct{}{}
		allowed := m.PossibleAttributeNames()
		var value *string
		if attr.Delimited {
			value = &attr.Value
		}
		if m.Attribute(attr.Name, value) {
			continue
		}
		if !allowed.Contains(attr.Name) && !allowed.Wildcard {
			report(errors.NewValidationf(errors.ErrAttributeNotDeclared, path,
				"attribute %s is not allowed", attr.Name), elem.Offset(), errors.SeverityError)
			continue
		}
		v := errors.NewValidationf(errors.ErrAttributeValueInvalid, path,
			"value %q of attribute %s is not allowed", attr.Value, attr.Name)
		v.Actual = attr.Value
		if a := decl.Attribute(attr.Name); a != nil {
			v.Expected = a.EnumerationValues()
		}
		report(v, elem.Offset(), errors.SeverityError)
	}

	if !m.StartTagClose() {
		for _, name := range missing(decl.RequiredAttributeNames(), present) {
			report(errors.NewValidationf(errors.ErrRequiredAttributeMissing, path,
				"attribute %s is required", name), elem.Offset(), errors.SeverityError)
		}
		possible := d.analyzer.PossibleRequiredAttributeNames(decl.p.Content())
		for _, name := range missing(possible, present) {
			if decl.requiresAttribute(name) {
				continue
			}
			report(errors.NewValidationf(errors.ErrRequiredAttributeMissing, path,
				"attribute %s may be required", name), elem.Offset(), errors.SeverityWarning)
		}
	}

	for _, child := range elem.Children() {
		allowed := m.PossibleStartTagNames()
		if m.SkipElement(child.Name) {
			continue
		}
		v := errors.NewValidationf(errors.ErrUnexpectedElement, path, "element %s is not allowed here", child.Name)
		v.Actual = child.Name.String()
		v.Expected = qnameStrings(allowed.Names)
		report(v, child.Start, errors.SeverityError)
	}

	if !m.CanEnd() {
		next := m.PossibleStartTagNames()
		if len(next.Names) == 0 && !next.Wildcard {
			// Only text can complete the content; text is not checked.
			return out
		}
		var required []string
		for _, name := range next.Names {
			if decl.IsRequired(name) {
				required = append(required, name.String())
			}
		}
		if len(required) > 0 {
			v := errors.NewValidation(errors.ErrRequiredElementMissing, "content is incomplete, a required element is missing", path)
			v.Expected = required
			report(v, elem.Offset(), errors.SeverityError)
		} else {
			v := errors.NewValidation(errors.ErrContentModelInvalid, "content is incomplete", path)
			v.Expected = qnameStrings(next.Names)
			report(v, elem.Offset(), errors.SeverityWarning)
		}
	}
	return out
}

func missing(names []pattern.QName, present map[pattern.QName]struct{}) []pattern.QName {
	return slices.DeleteFunc(slices.Clone(names), func(name pattern.QName) bool {
		_, ok := present[name]
		return ok
	})
}

func qnameStrings(names []pattern.QName) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = name.String()
	}
	return out
}
