package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/secassess/pkg/dag/transform"
	"github.com/matzehuels/secassess/pkg/errors"
	"github.com/matzehuels/secassess/pkg/io"
	"github.com/matzehuels/secassess/pkg/layout"
)

// Layout output formats.
const (
	layoutJSON     = "json"
	layoutSVG      = "svg"
	layoutDOT      = "dot"
	layoutGraphviz = "graphviz"
)

var layoutFormats = []string{layoutSVG, layoutJSON, layoutDOT, layoutGraphviz}

// layoutCommand creates the layout command for laying out a single
// pipeline diagram.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		format string
		cycles string
	)

	cmd := &cobra.Command{
		Use:   "layout [diagram.json]",
		Short: "Lay out a pipeline diagram",
		Long: `Lay out a pipeline diagram exported by the diagram builders.

The input is a JSON object with "nodes" and "edges". Output formats:

  svg       the diagram as drawn in reports (default)
  json      computed node positions and edge paths
  dot       Graphviz DOT source
  graphviz  SVG rendered by Graphviz from the DOT source

Cyclic diagrams are rejected unless --cycles=break removes back edges.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := transform.ParseCyclePolicy(cycles)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "--cycles")
			}
			if err := errors.ValidateFormat(format, layoutFormats); err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], format, output, policy)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<format>, - for stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", layoutSVG, "output format: "+strings.Join(layoutFormats, ", "))
	cmd.Flags().StringVar(&cycles, "cycles", "reject", "cycle handling: reject, break")

	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(layoutFormats, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("cycles", cobra.FixedCompletions([]string{"reject", "break"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// runLayout loads the diagram, lays it out and writes the requested view.
func (c *CLI) runLayout(ctx context.Context, input, format, output string, policy transform.CyclePolicy) error {
	prog := newProgress(c.Logger)
	d, err := io.ImportJSON(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidGraph, err, "load diagram %s", input)
	}
	g := d.Graph

	var data []byte
	switch format {
	case layoutDOT:
		data = []byte(layout.ToDOT(g))
	case layoutGraphviz:
		if data, err = layout.RenderDOTSVG(ctx, layout.ToDOT(g)); err != nil {
			return errors.Wrap(errors.ErrCodeRender, err, "graphviz")
		}
	default:
		l, err := layout.Compute(g, layout.WithCyclePolicy(policy))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidGraph, err, "lay out %s", input)
		}
		if format == layoutJSON {
			if data, err = layout.RenderJSON(l); err != nil {
				return err
			}
		} else {
			data = layout.RenderSVG(l, layout.WithTitle(d.Name))
		}
	}
	prog.done("diagram laid out", "nodes", g.NodeCount(), "edges", g.EdgeCount(), "format", format)

	if output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + "." + layoutExt(format)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printDetail("%d stages · %d connections", g.NodeCount(), g.EdgeCount())
	if format == layoutJSON {
		printNewline()
		printNextStep("Render", appName+" layout -f svg "+input)
	}
	return nil
}

// layoutExt maps a layout format to its file extension. The JSON view is
// named so it never overwrites the input diagram.
func layoutExt(format string) string {
	switch format {
	case layoutJSON:
		return "layout.json"
	case layoutGraphviz:
		return "graphviz.svg"
	}
	return format
}
