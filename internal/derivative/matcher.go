// Package derivative drives a residual content-model pattern through the
// structural events of a partially written element and reads off what may
// legally come next.
//
// A Matcher owns all of its memo tables; it is not safe for concurrent use,
// but any number of matchers may run over the same immutable grammar.
package derivative

import (
	"strings"

	"github.com/jacoelho/xmlassist/pkg/pattern"
)

// Matcher holds the residual pattern for one replay.
type Matcher struct {
	d     *deriver
	start pattern.Pattern
	state pattern.Pattern
}

// NewMatcher returns a matcher positioned before the first event. start is
// usually the Element pattern of the element being edited.
func NewMatcher(start pattern.Pattern) *Matcher {
	return &Matcher{d: newDeriver(), start: start, state: start}
}

// Reset rewinds the matcher to its start pattern, keeping memo tables.
func (m *Matcher) Reset() {
	m.state = m.start
}

// State returns the current residual pattern.
func (m *Matcher) State() pattern.Pattern {
	return m.state
}

// advance commits next unless it rejects all input.
func (m *Matcher) advance(next pattern.Pattern) bool {
	if isNotAllowed(next) {
		return false
	}
	m.state = next
	return true
}

// StartTagOpen matches the opening of an element named name.
func (m *Matcher) StartTagOpen(name pattern.QName) bool {
	return m.advance(m.d.startTagOpenDeriv(m.state, name))
}

// Attribute matches one attribute, name then value. A nil value matches
// the name only and accepts any value, for attributes still being typed.
// On failure the state is left as it was before the call.
func (m *Matcher) Attribute(name pattern.QName, value *string) bool {
	afterName := m.d.attNameDeriv(m.state, name)
	if isNotAllowed(afterName) {
		return false
	}
	return m.advance(m.d.attValueDeriv(afterName, value))
}

// StartTagClose ends the attribute list. When declared attributes are
// missing the tag is closed leniently, ignoring them, and false is returned.
func (m *Matcher) StartTagClose() bool {
	if m.advance(m.d.startTagCloseDeriv(m.state, false)) {
		return true
	}
	m.advance(m.d.startTagCloseDeriv(m.state, true))
	return false
}

// Text matches character content. Whitespace-only text is ignored.
func (m *Matcher) Text(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	return m.advance(m.d.textDeriv(m.state, s))
}

// EndTag closes the current element if its content is complete.
func (m *Matcher) EndTag() bool {
	return m.advance(m.d.endTagDeriv(m.state))
}

// SkipElement matches a complete child element named name without looking
// at its attributes or content.
func (m *Matcher) SkipElement(name pattern.QName) bool {
	opened := m.d.startTagOpenDeriv(m.state, name)
	if isNotAllowed(opened) {
		return false
	}
	return m.advance(m.d.skipContentDeriv(opened))
}

// CanEnd reports whether the current element may be closed now.
func (m *Matcher) CanEnd() bool {
	return !isNotAllowed(m.d.endTagDeriv(m.state))
}

// PossibleStartTagNames returns the element names that may open next.
func (m *Matcher) PossibleStartTagNames() NameSet {
	return m.d.firstSet(m.state, false)
}

// PossibleAttributeNames returns the attribute names still acceptable in
// the current start tag.
func (m *Matcher) PossibleAttributeNames() NameSet {
	return m.d.firstSet(m.state, true)
}
