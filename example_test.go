package xmlassist_test

import (
	"context"
	"fmt"

	"github.com/jacoelho/xmlassist"
	"github.com/jacoelho/xmlassist/internal/xmldoc"
	"github.com/jacoelho/xmlassist/pkg/patternyaml"
)

const exampleGrammar = `
uri: book.rnc
start:
  element: book
  content:
    group:
      - attribute: lang
        content: {choice: [{value: en}, {value: fr}]}
      - element: title
        content: {text: true}
      - optional: {element: subtitle}
      - oneOrMore: {element: chapter}
`

func ExampleDocument_PossibleNextElementNames() {
	root, err := patternyaml.Decode([]byte(exampleGrammar), "")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	doc, err := xmlassist.NewDocument("book.rnc", root, xmlassist.NewOptions())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	src := `<book lang="en"><title>Go</title>`
	parsed, err := xmldoc.Parse([]byte(src))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	names, err := doc.PossibleNextElementNames(context.Background(), parsed.Root, len(src))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for _, name := range names {
		fmt.Println(name)
	}
	// Output:
	// chapter
	// subtitle
}

func ExampleDocument_Check() {
	root, err := patternyaml.Decode([]byte(exampleGrammar), "")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	doc, err := xmlassist.NewDocument("book.rnc", root, xmlassist.NewOptions())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	parsed, err := xmldoc.Parse([]byte(`<book><title>Go</title></book>`))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for _, v := range doc.Check(parsed.Root) {
		fmt.Println(v.Error())
	}
	// Output:
	// [cvc-complex-type.4] attribute lang is required at /book
	// [cvc-complex-type.2.4.b] content is incomplete, a required element is missing at /book (expected: chapter)
}

func ExampleElementDeclaration_Attributes() {
	root, err := patternyaml.Decode([]byte(exampleGrammar), "")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	doc, err := xmlassist.NewDocument("book.rnc", root, xmlassist.NewOptions())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	for _, a := range doc.Declarations()[0].Attributes() {
		fmt.Println(a.Name(), a.Required(), a.EnumerationValues())
	}
	// Output: lang true [en fr]
}
