package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/godswood/pkg/forest"
	"github.com/matzehuels/godswood/pkg/layout"
	"github.com/matzehuels/godswood/pkg/tree"
)

type buildOpts struct {
	layoutFlags
	format string // layout encoding; empty prints a summary
	output string // output file; empty writes to stdout
}

// buildCommand parses one or more documents into a shared forest.
//
// Without --format it prints a per-tree summary. With --format json|yaml it
// writes the layout of every tree, one document per tree in name order.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build FILE...",
		Short: "Build trees from topology documents",
		Long: `Build parses each topology document, assigns depths and computes level scales.
Documents are built concurrently into one node store; "-" reads standard input.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), cmd.InOrStdin(), args, opts)
		},
	}

	opts.layoutFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "emit layouts instead of a summary: json, yaml")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, stdin io.Reader, paths []string, opts buildOpts) error {
	var format layout.Format
	if opts.format != "" {
		f, err := layout.ParseFormat(opts.format)
		if err != nil {
			return err
		}
		format = f
	}

	logger := loggerFromContext(ctx)
	docs, err := readDocuments(ctx, stdin, paths)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	f := c.newForest(opts.layoutFlags)
	if err := f.AddWoods(ctx, docs...); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built %d trees", f.Len()), "nodes", f.Store().Len())

	return c.writeOutput(opts.output, func(w io.Writer) error {
		if format == "" {
			printSummary(w, f, paths)
			return nil
		}
		for _, name := range f.Names() {
			t, _ := f.Tree(name)
			l, err := layout.Export(t)
			if err != nil {
				return fmt.Errorf("export %s: %w", name, err)
			}
			if err := l.Encode(w, format); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeOutput runs write against path, or against stdout when path is empty.
func (c *CLI) writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(c.out)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	printFile(c.out, path)
	return nil
}

func printSummary(w io.Writer, f *forest.Forest, paths []string) {
	for _, name := range f.Names() {
		t, _ := f.Tree(name)
		printTree(w, t)
	}
	if len(paths) > 0 && paths[0] != "-" {
		printNextStep(w, "Render a tree", fmt.Sprintf("%s render %s --format svg -o tree.svg", appName, paths[0]))
	}
}

func printTree(w io.Writer, t *tree.Tree) {
	printSuccess(w, "%s", StyleTitle.Render(t.Name()))
	printKeyValue(w, "nodes", fmt.Sprint(t.NodeCount()))
	printKeyValue(w, "depth", fmt.Sprint(t.Depth()))
	for _, d := range t.Depths() {
		scale, _ := t.Scale(d)
		printDetail(w, "depth %d  scale %.3f  %s", d, scale, plural(len(t.NodesAtDepth(d)), "node"))
	}
	if n := t.Skipped(); n > 0 {
		printWarning(w, "%s skipped", plural(n, "dangling reference"))
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
