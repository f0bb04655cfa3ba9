package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/godswood/pkg/render/nodelink"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

type renderOpts struct {
	layoutFlags
	format   string // dot or svg
	output   string // output file; empty writes to stdout
	detailed bool   // include path, depth and scale in labels
}

// renderCommand draws the tree of a single document as a node-link diagram.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a tree as a node-link diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateRenderFormat(opts.format); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cmd.InOrStdin(), args[0], opts)
		},
	}

	opts.layoutFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show path, depth and scale in node labels")

	return cmd
}

func validateRenderFormat(format string) error {
	if format != formatDOT && format != formatSVG {
		return fmt.Errorf("invalid format: %s (must be 'svg' or 'dot')", format)
	}
	return nil
}

func (c *CLI) runRender(ctx context.Context, stdin io.Reader, path string, opts renderOpts) error {
	docs, err := readDocuments(ctx, stdin, []string{path})
	if err != nil {
		return err
	}

	f := c.newForest(opts.layoutFlags)
	t, err := f.AddWood(ctx, docs[0])
	if err != nil {
		return err
	}

	dot, err := nodelink.ToDOT(t, nodelink.Options{Detailed: opts.detailed})
	if err != nil {
		return err
	}
	data := []byte(dot)

	if opts.format == formatSVG {
		spinner := newSpinner(ctx, c.errOut, "Rendering "+t.Name()+"...")
		spinner.Start()
		data, err = nodelink.RenderSVG(ctx, dot)
		spinner.Stop()
		if err != nil {
			return fmt.Errorf("render %s: %w", t.Name(), err)
		}
	}

	loggerFromContext(ctx).Debug("rendered tree", "tree", t.Name(), "format", opts.format, "bytes", len(data))
	return c.writeOutput(opts.output, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
