package docstore

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

type location struct {
	line, column int
}

// index maps declaration positions to documentation text.
type index struct {
	exact     map[location]string
	firstAtLn map[int]location
}

func (idx *index) add(line, column int, doc string) {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return
	}
	if idx.exact == nil {
		idx.exact = make(map[location]string)
		idx.firstAtLn = make(map[int]location)
	}
	loc := location{line: line, column: column}
	if prev, ok := idx.exact[loc]; ok {
		doc = prev + "\n" + doc
	}
	idx.exact[loc] = doc
	if _, ok := idx.firstAtLn[line]; !ok {
		idx.firstAtLn[line] = loc
	}
}

func (idx *index) lookup(line, column int) (string, bool) {
	if idx == nil {
		return "", false
	}
	if doc, ok := idx.exact[location{line: line, column: column}]; ok {
		return doc, true
	}
	loc, ok := idx.firstAtLn[line]
	if !ok {
		return "", false
	}
	return idx.exact[loc], true
}

// indexCompact attaches each run of "##" comment lines to the next
// non-blank line.
func indexCompact(data []byte) *index {
	idx := &index{}
	var pending []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		trimmed := strings.TrimSpace(text)
		switch {
		case strings.HasPrefix(trimmed, "##"):
			pending = append(pending, strings.TrimSpace(strings.TrimLeft(trimmed, "#")))
		case trimmed == "":
		default:
			if len(pending) > 0 {
				column := len(text) - len(strings.TrimLeft(text, " \t")) + 1
				idx.add(line, column, strings.Join(pending, "\n"))
				pending = nil
			}
		}
	}
	return idx
}

type openElement struct {
	local  string
	line   int
	column int
}

// indexXML attaches the text of every "documentation" element to the
// nearest enclosing element that is not an annotation wrapper. Positions
// are those of the end of the declaration's start tag.
func indexXML(data []byte) (*index, error) {
	idx := &index{}
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	var stack []openElement
	var doc strings.Builder
	inDoc := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return idx, nil
		}
		if err != nil {
			return idx, fmt.Errorf("parse xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			line, column := dec.InputPos()
			if inDoc > 0 || t.Name.Local == "documentation" {
				inDoc++
				continue
			}
			stack = append(stack, openElement{local: t.Name.Local, line: line, column: column})
		case xml.EndElement:
			if inDoc > 0 {
				inDoc--
				if inDoc == 0 {
					if owner, ok := docOwner(stack); ok {
						idx.add(owner.line, owner.column, doc.String())
					}
					doc.Reset()
				}
				continue
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if inDoc > 0 {
				doc.Write(t)
			}
		}
	}
}

func docOwner(stack []openElement) (openElement, bool) {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].local != "annotation" && stack[i].local != "appinfo" {
			return stack[i], true
		}
	}
	return openElement{}, false
}
