package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jacoelho/xmlassist"
	xaerrors "github.com/jacoelho/xmlassist/errors"
	"github.com/jacoelho/xmlassist/internal/xmldoc"
	"github.com/jacoelho/xmlassist/pkg/pattern"
	"github.com/jacoelho/xmlassist/pkg/patternyaml"
)

func loadConfig(flags *globalFlags) (xmlassist.Config, error) {
	if flags.configPath == "" {
		return xmlassist.Config{}, nil
	}
	return xmlassist.LoadConfig(flags.configPath)
}

func loadDocument(flags *globalFlags) (*xmlassist.Document, error) {
	if flags.grammar == "" {
		return nil, usagef("--grammar is required")
	}
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	root, err := patternyaml.LoadFile(flags.grammar)
	if err != nil {
		return nil, err
	}
	return xmlassist.NewDocument(flags.grammar, root, cfg.Options())
}

func parseFile(path string) (*xmldoc.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", path, err)
	}
	doc, err := xmldoc.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse document %s: %w", path, err)
	}
	return doc, nil
}

// splitPath splits "a/{urn:x}b" into names. Slashes inside braces belong
// to the namespace.
func splitPath(path string) ([]pattern.QName, error) {
	var out []pattern.QName
	depth, start := 0, 0
	flush := func(end int) error {
		part := strings.TrimSpace(path[start:end])
		if part == "" {
			return usagef("empty step in path %q", path)
		}
		out = append(out, pattern.ParseQName(part))
		return nil
	}
	for i, r := range path {
		switch {
		case r == '{':
			depth++
		case r == '}':
			depth--
		case r == '/' && depth == 0:
			if i == 0 {
				start = 1
				continue
			}
			if err := flush(i); err != nil {
				return nil, err
			}
			start = i + 1
		}
	}
	if err := flush(len(path)); err != nil {
		return nil, err
	}
	return out, nil
}

func lookup(doc *xmlassist.Document, path string) (*xmlassist.ElementDeclaration, error) {
	names, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	decl := doc.Lookup(names...)
	if decl == nil {
		return nil, fmt.Errorf("no declaration at %s", path)
	}
	return decl, nil
}

func newCompleteCmd(flags *globalFlags) *cobra.Command {
	var offset int
	cmd := &cobra.Command{
		Use:   "complete <document.xml>",
		Short: "Print the element names allowed at an offset",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if offset < 0 {
				return usagef("--offset must be >= 0")
			}
			doc, err := loadDocument(flags)
			if err != nil {
				return err
			}
			parsed, err := parseFile(args[0])
			if err != nil {
				return err
			}
			var names []pattern.QName
			if elem := parsed.ElementAt(offset); elem != nil {
				names, err = doc.PossibleNextElementNames(cmd.Context(), elem, offset)
				if err != nil {
					return err
				}
			}
			for _, name := range names {
				if err := writeln(cmd.OutOrStdout(), name.String()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "byte offset of the cursor")
	return cmd
}

func newDeclarationsCmd(flags *globalFlags) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "declarations",
		Short: "Print the declarations at a path, or the root declarations",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if path == "" {
				for _, decl := range doc.Declarations() {
					if err := writef(out, "element %s\n", decl.Name()); err != nil {
						return err
					}
				}
				return nil
			}
			decl, err := lookup(doc, path)
			if err != nil {
				return err
			}
			for _, a := range decl.Attributes() {
				if err := writeln(out, describeAttribute(a)); err != nil {
					return err
				}
			}
			for _, child := range decl.Children() {
				line := "element " + child.Name().String()
				if decl.IsRequired(child.Name()) {
					line += " required"
				}
				if err := writeln(out, line); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "element path from the root, e.g. book/title")
	return cmd
}

func describeAttribute(a *xmlassist.AttributeDeclaration) string {
	var b strings.Builder
	b.WriteString("attribute ")
	b.WriteString(a.Name().String())
	if a.Required() {
		b.WriteString(" required")
	}
	if def, ok := a.DefaultValue(); ok {
		fmt.Fprintf(&b, " default=%q", def)
	}
	if values := a.EnumerationValues(); len(values) > 0 {
		fmt.Fprintf(&b, " values=%s", strings.Join(values, "|"))
	}
	return b.String()
}

func newCheckCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check <document.xml>",
		Short: "Print content-model diagnostics for every element",
		Long: "Print content-model diagnostics for every element. With watch: true in\n" +
			"the config file, keep running and check again whenever the grammar changes.",
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.grammar == "" {
				return usagef("--grammar is required")
			}
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if cfg.Watch {
				return watchCheck(cmd, flags.grammar, cfg, args[0])
			}
			doc, err := loadDocument(flags)
			if err != nil {
				return err
			}
			return checkFile(cmd, doc, args[0])
		},
	}
}

func checkFile(cmd *cobra.Command, doc *xmlassist.Document, path string) error {
	parsed, err := parseFile(path)
	if err != nil {
		return err
	}
	var all xaerrors.ValidationList
	for _, elem := range parsed.Elements {
		all = append(all, doc.Check(elem)...)
	}
	out := cmd.OutOrStdout()
	for _, v := range all {
		if err := writef(out, "%s:%d: %s: %s\n", path, v.Offset, v.Severity, v.Error()); err != nil {
			return err
		}
	}
	if len(all.Errors()) > 0 {
		if err := writef(cmd.ErrOrStderr(), "%s fails to check\n", path); err != nil {
			return err
		}
		return errFailed
	}
	return writef(out, "%s checks\n", path)
}

// watchCheck checks path once, then again after every change of the
// grammar file, until the command context is done. A grammar that fails to
// load while being edited is reported and waited out.
func watchCheck(cmd *cobra.Command, grammar string, cfg xmlassist.Config, path string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	changed := make(chan struct{}, 1)
	opts := cfg.Options().WithOnChange(func(string) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	reg, err := xmlassist.NewRegistry(patternyaml.LoadFile, opts)
	if err != nil {
		return err
	}
	doc, err := reg.Get(grammar)
	if err != nil {
		return err
	}

	served := make(chan error, 1)
	go func() { served <- reg.Serve(ctx) }()

	for {
		if err := checkFile(cmd, doc, path); err != nil && !errors.Is(err, errFailed) {
			if werr := writef(cmd.ErrOrStderr(), "error: %v\n", err); werr != nil {
				return werr
			}
		}
		for {
			select {
			case <-ctx.Done():
				return <-served
			case err := <-served:
				return err
			case <-changed:
			}
			next, err := reg.Get(grammar)
			if err != nil {
				if werr := writef(cmd.ErrOrStderr(), "error: %v\n", err); werr != nil {
					return werr
				}
				continue
			}
			doc = next
			break
		}
	}
}

func newHoverCmd(flags *globalFlags) *cobra.Command {
	var path, attr string
	cmd := &cobra.Command{
		Use:   "hover",
		Short: "Print the documentation and location of a declaration",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return usagef("--path is required")
			}
			doc, err := loadDocument(flags)
			if err != nil {
				return err
			}
			decl, err := lookup(doc, path)
			if err != nil {
				return err
			}
			name := decl.Name()
			documentation, loc := decl.Documentation, decl.DefinitionLocation
			if attr != "" {
				a := decl.Attribute(pattern.ParseQName(attr))
				if a == nil {
					return fmt.Errorf("no attribute %s at %s", attr, path)
				}
				name = a.Name()
				documentation, loc = a.Documentation, a.DefinitionLocation
			}
			out := cmd.OutOrStdout()
			if err := writeln(out, name.String()); err != nil {
				return err
			}
			if l := loc(); l != nil {
				if err := writef(out, "defined at %s\n", l); err != nil {
					return err
				}
			}
			if text, ok := documentation(); ok {
				return writeln(out, text)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "element path from the root, e.g. book/title")
	cmd.Flags().StringVar(&attr, "attr", "", "attribute of the element")
	return cmd
}
