package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/formstate/internal/config"
	"github.com/roach88/formstate/internal/i18n"
)

// RootOptions holds global flags and the loaded configuration for all
// commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Config is filled by the root command before any subcommand runs.
	// Commands built on their own, as in tests, see the zero value and
	// fall back to defaults.
	Config config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the formstate CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "formstate",
		Short: "formstate - schema-driven form state",
		Long: `Compile entity schemas, validate payloads against them, persist
flattened snapshots and run form scenarios.

Settings come from $HOME/.config/formstate/config.yaml (or the file named
by FORMSTATE_CONFIG) and FORMSTATE_* environment variables.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := config.Load()
			if err != nil {
				return WrapExitError(ExitCommandError, "loading configuration", err)
			}
			opts.Config = cfg
			return opts.setupLogging(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewPutCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setupLogging installs the default slog logger on stderr, at debug level
// with --verbose and at log.level otherwise.
func (o *RootOptions) setupLogging(cmd *cobra.Command) error {
	level := slog.LevelDebug
	if !o.Verbose {
		var err error
		if level, err = o.Config.LogLevel(); err != nil {
			return WrapExitError(ExitCommandError, "loading configuration", err)
		}
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}

// specsDir picks the positional specs directory, else specs.dir.
func (o *RootOptions) specsDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if o.Config.Specs.Dir != "" {
		return o.Config.Specs.Dir
	}
	return "specs"
}

// translator builds the message catalog for i18n.locale, loading the
// i18n.messages file when one is configured.
func (o *RootOptions) translator() (i18n.Translator, error) {
	locale := o.Config.I18n.Locale
	if locale == "" {
		locale = "en"
	}
	cat, err := i18n.ParseCatalog(locale)
	if err != nil {
		return nil, err
	}
	if path := o.Config.I18n.Messages; path != "" {
		if err := cat.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

// formatter returns the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
