// Package commands implements the contentpipe subcommands.
package commands

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/contentpipe/internal/config"
	"git.home.luguber.info/inful/contentpipe/internal/version"
)

// Global carries state shared by every subcommand.
type Global struct {
	Out io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"contentpipe.yaml" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (text|json); overrides logging.format"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build  BuildCmd  `cmd:"" help:"Resolve all content and write the static site payloads"`
	Check  CheckCmd  `cmd:"" help:"Validate all content without writing output"`
	Routes RoutesCmd `cmd:"" help:"List the slugs pre-rendered for each route template"`
	Show   ShowCmd   `cmd:"" help:"Print one resolved document with its relations"`
	Watch  WatchCmd  `cmd:"" help:"Rebuild whenever content changes"`
}

// Options returns the kong options main parses with. ctx is bound for the
// commands' Run methods.
func Options(ctx context.Context) []kong.Option {
	return []kong.Option{
		kong.Name("contentpipe"),
		kong.Description("Content resolution and static generation pipeline"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.BindTo(ctx, (*context.Context)(nil)),
	}
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	setupLogging(c.Verbose, config.LoggingConfig{Level: config.LogLevelInfo, Format: config.NormalizeLogFormat(c.LogFormat)})
	return nil
}

// loadConfig reads the configuration file, falling back to defaults when the
// default file is absent, and reapplies its logging section.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOptional(c.Config)
	if err != nil {
		return nil, err
	}
	logging := cfg.Logging
	if c.LogFormat != "" {
		logging.Format = config.NormalizeLogFormat(c.LogFormat)
	}
	setupLogging(c.Verbose, logging)
	return cfg, nil
}

func setupLogging(verbose bool, lc config.LoggingConfig) {
	level := lc.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if lc.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
