// Package cli implements the godswood command-line interface.
//
// # Commands
//
//   - build: Parse topology documents and print a summary or layout
//   - render: Draw one tree as Graphviz DOT or SVG
//   - serve: Serve trees over HTTP
//
// # Configuration
//
// Every command reads an optional TOML file given with --config. Command
// flags override file values; --verbose forces debug logging.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/godswood/internal/config"
	"github.com/matzehuels/godswood/pkg/buildinfo"
	"github.com/matzehuels/godswood/pkg/forest"
)

// appName is the application name used for display.
const appName = "godswood"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out        io.Writer // command results
	errOut     io.Writer // progress indicators
	configPath string
	cfg        *config.Config
	verbose    bool
}

// New creates a CLI that prints results to out and logs to logOut.
func New(out, logOut io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(logOut, level),
		out:    out,
		errOut: logOut,
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level. A level set here is kept even when
// the config file names another one.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.verbose = level == log.DebugLevel
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Godswood turns application topology documents into layered trees",
		Long:         `Godswood parses hierarchical application topology documents into an indexed node graph, groups nodes by depth and computes per-level radial scales for rendering.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.out)
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a TOML config file")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())

	return root
}

// loadConfig reads --config when given and applies its log level unless
// debug logging was forced.
func (c *CLI) loadConfig() error {
	if c.configPath == "" {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", c.configPath, err)
	}
	c.cfg = cfg
	if !c.verbose {
		c.Logger.SetLevel(cfg.LogLevel())
	}
	c.Logger.Debug("loaded config", "path", c.configPath)
	return nil
}

// layoutFlags are the per-command overrides of the [layout] config section.
type layoutFlags struct {
	baseScale float64
	baseGap   float64
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.baseScale, "base-scale", 0, "radius unit of the deepest level (default from config)")
	cmd.Flags().Float64Var(&f.baseGap, "base-gap", 0, "spacing between depth rings (default from config)")
}

// newForest creates a forest using config layout values overridden by flags.
func (c *CLI) newForest(f layoutFlags) *forest.Forest {
	opts := c.cfg.ForestOptions(c.Logger)
	if f.baseScale > 0 {
		opts.BaseScale = f.baseScale
	}
	if f.baseGap > 0 {
		opts.BaseGap = f.baseGap
	}
	return forest.New(opts)
}

// readDocuments reads every path; "-" reads stdin.
func readDocuments(ctx context.Context, stdin io.Reader, paths []string) ([][]byte, error) {
	docs := make([][]byte, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var (
			data []byte
			err  error
		)
		if p == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(p)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		docs = append(docs, data)
	}
	return docs, nil
}
