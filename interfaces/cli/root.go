// Package cli is the mindcanvas command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mindcanvas/domain/core/valueobjects"
	"mindcanvas/infrastructure/config"
	"mindcanvas/pkg/logging"
)

var (
	Brand  = color.New(color.FgHiCyan, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Warn   = color.New(color.FgYellow)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
)

// options are the flags shared by every command.
type options struct {
	configFile string
	direction  string
	out        string
	verbose    bool

	now func() time.Time
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{now: time.Now}

	root := &cobra.Command{
		Use:           "mindcanvas",
		Short:         "mindcanvas turns text into laid-out concept maps",
		Long:          Brand.Sprint("mindcanvas") + " turns text into laid-out concept maps\n" + Subtle.Sprint("Generate, lay out, merge and migrate canvas documents"),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", os.Getenv(config.EnvPrefix+"CONFIG"), "YAML configuration file")
	flags.StringVarP(&opts.direction, "direction", "d", "", "layout direction, TB or LR (default from config)")
	flags.StringVarP(&opts.out, "out", "o", "", "write the result to this file instead of stdout")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log at the configured level instead of warn")

	root.AddCommand(
		serveCmd(opts),
		layoutCmd(opts),
		transformCmd(opts),
		mergeCmd(opts),
		migrateCmd(opts),
		generateCmd(opts),
	)
	return root
}

// Execute runs the command line until it finishes or the process is
// interrupted, and reports a failure on stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand()
	err := root.ExecuteContext(ctx)
	if err != nil {
		Bad.Fprintf(root.ErrOrStderr(), "mindcanvas: %v\n", err)
	}
	return err
}

// loadConfig resolves configuration with the --config file and a local .env.
func (o *options) loadConfig() (*config.Config, *config.Loader, error) {
	loader := config.NewLoader(o.configFile, ".env")
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, loader, nil
}

// resolveDirection prefers --direction over the configured default.
func (o *options) resolveDirection(cfg *config.Config) (valueobjects.Direction, error) {
	if o.direction == "" {
		return cfg.Direction(), nil
	}
	d, err := valueobjects.ParseDirection(o.direction)
	if err != nil {
		return "", fmt.Errorf("--direction: %w", err)
	}
	return d, nil
}

// logger builds a logger for one-shot commands. They stay quiet unless
// --verbose is given.
func (o *options) logger(cfg *config.Config) (*logging.Logger, error) {
	level := "warn"
	if o.verbose {
		level = cfg.Logging.Level
	}
	return logging.New(logging.Options{
		Development: cfg.IsDevelopment(),
		Level:       level,
		Format:      "console",
	})
}
