package pattern

import "fmt"

// Locator exposes the current source position of a grammar parser.
// Parsers commonly hand out a single Locator and advance it in place,
// so nodes never keep a Locator, only a Position copied from it.
type Locator interface {
	SystemID() string
	LineNumber() int
	ColumnNumber() int
}

// Position is an owned source position record. Line and Column are 1-based;
// zero means unknown.
type Position struct {
	URI    string
	Line   int
	Column int
}

// PositionOf copies the current state of loc. A nil locator yields nil.
func PositionOf(loc Locator) *Position {
	if loc == nil {
		return nil
	}
	return &Position{
		URI:    loc.SystemID(),
		Line:   loc.LineNumber(),
		Column: loc.ColumnNumber(),
	}
}

// SystemID implements Locator.
func (p Position) SystemID() string { return p.URI }

// LineNumber implements Locator.
func (p Position) LineNumber() int { return p.Line }

// ColumnNumber implements Locator.
func (p Position) ColumnNumber() int { return p.Column }

// IsZero reports whether the position carries no information.
func (p Position) IsZero() bool {
	return p.URI == "" && p.Line == 0 && p.Column == 0
}

// ZeroBased maps the 1-based position to 0-based coordinates, clamping at zero.
func (p Position) ZeroBased() (line, column int) {
	return max(p.Line-1, 0), max(p.Column-1, 0)
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.URI, p.Line, p.Column)
}

// Cursor is a mutable Locator, the shape most streaming parsers expose.
type Cursor struct {
	URI    string
	Line   int
	Column int
}

// SystemID implements Locator.
func (c *Cursor) SystemID() string { return c.URI }

// LineNumber implements Locator.
func (c *Cursor) LineNumber() int { return c.Line }

// ColumnNumber implements Locator.
func (c *Cursor) ColumnNumber() int { return c.Column }

// Move sets the cursor to line and column.
func (c *Cursor) Move(line, column int) {
	c.Line = line
	c.Column = column
}
