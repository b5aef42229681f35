package derivative

import (
	"context"
	"fmt"

	"github.com/jacoelho/xmlassist/pkg/pattern"
)

// DefaultPollInterval is the number of replayed siblings between
// cancellation checks.
const DefaultPollInterval = 64

const xmlnsNamespace = "http://www.w3.org/2000/xmlns/"

// Attr is an attribute already present on the start tag.
type Attr struct {
	Name      pattern.QName
	Value     string
	Delimited bool
}

// Child is a child element of the element under edit.
type Child struct {
	Name   pattern.QName
	Start  int
	End    int
	Closed bool
}

// Fragment describes the element under edit.
type Fragment struct {
	Name       pattern.QName
	Attributes []Attr
	Children   []Child
}

// ReplayOptions tunes Replay.
type ReplayOptions struct {
	// PollInterval is the number of siblings between ctx checks; 0 uses
	// DefaultPollInterval.
	PollInterval int
	// Cursor is the edit offset; siblings ending after it are not replayed.
	// A negative cursor replays every closed sibling.
	Cursor int
}

// ReplayResult reports how the replay went.
type ReplayResult struct {
	// RejectedAttributes lists attributes the residual did not accept.
	RejectedAttributes []pattern.QName
	// RejectedChildren lists replayed siblings the residual did not accept.
	RejectedChildren []pattern.QName
	// Replayed is the number of siblings matched.
	Replayed int
	// MissingAttributes is set when the start tag had to close leniently.
	MissingAttributes bool
}

// IsNamespaceDeclaration reports whether name is an xmlns declaration.
func IsNamespaceDeclaration(name pattern.QName) bool {
	if name.Namespace == xmlnsNamespace {
		return true
	}
	return name.Namespace == "" && name.Local == "xmlns"
}

// Replay drives m through the events of f in document order: the start
// tag, its attributes, the end of the start tag, then every closed sibling
// that ends at or before the cursor. Rejected attributes and siblings are
// skipped and reported. ctx is polled between siblings; on cancellation the
// matcher keeps the state reached so far.
func (m *Matcher) Replay(ctx context.Context, f Fragment, opts ReplayOptions) (ReplayResult, error) {
	var res ReplayResult
	if !m.StartTagOpen(f.Name) {
		return res, fmt.Errorf("replay %s: start tag not accepted", f.Name)
	}
	for _, attr := range f.Attributes {
		if IsNamespaceDeclaration(attr.Name) {
			continue
		}
		var value *string
		if attr.Delimited {
			value = &attr.Value
		}
		if !m.Attribute(attr.Name, value) {
			res.RejectedAttributes = append(res.RejectedAttributes, attr.Name)
		}
	}
	res.MissingAttributes = !m.StartTagClose()

	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	for i, child := range f.Children {
		if i%poll == poll-1 {
			if err := ctx.Err(); err != nil {
				return res, fmt.Errorf("replay %s: %w", f.Name, err)
			}
		}
		if opts.Cursor >= 0 && child.Start > opts.Cursor {
			break
		}
		if !child.Closed {
			continue
		}
		if opts.Cursor >= 0 && child.End > opts.Cursor {
			continue
		}
		if !m.SkipElement(child.Name) {
			res.RejectedChildren = append(res.RejectedChildren, child.Name)
			continue
		}
		res.Replayed++
	}
	return res, nil
}
