package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lightdash/lightdash-cli/internal/adapters/logging"
	"github.com/lightdash/lightdash-cli/internal/domain/config"
	"github.com/lightdash/lightdash-cli/internal/domain/dbt"
	"github.com/lightdash/lightdash-cli/internal/ports"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	verbose   bool
	yesFlag   bool
	logFormat string
	logLevel  string
)

// session is shared by every dbt version resolution in this process, so
// an accepted fallback is only confirmed once.
var session = dbt.NewSession()

var rootCmd = &cobra.Command{
	Use:   "lightdash",
	Short: "Develop and deploy Lightdash projects from your dbt project",
	Long: `The Lightdash CLI works alongside dbt.

It detects the installed dbt version and maps it onto a release line
Lightdash supports, asking before it falls back to a compatible one.`,
	SilenceErrors:     true, // We handle error formatting ourselves
	SilenceUsage:      true, // Don't show usage on error
	PersistentPreRunE: setupLogging,
}

// Execute runs the root command and prints any error.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: lightdash.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "auto-confirm all prompts")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "minimum log level (debug, info, warn, error)")

	registerFlagCompletions()

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dbtVersionCmd)
	rootCmd.AddCommand(dbtVersionsCmd)
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	cmd.SetContext(ports.ContextWithLogger(cmd.Context(), logger))
	return nil
}

func newLogger(w io.Writer) (ports.Logger, error) {
	level, ok := ports.ParseLevel(logLevel)
	if !ok {
		return nil, fmt.Errorf("invalid --log-level %q", logLevel)
	}
	if verbose {
		level = ports.LevelDebug
	}

	var jsonFormat bool
	switch logFormat {
	case "text", "":
	case "json":
		jsonFormat = true
	default:
		return nil, fmt.Errorf("invalid --log-format %q (expected text or json)", logFormat)
	}

	return logging.NewConsoleLogger(
		logging.WithOutput(w),
		logging.WithLevel(level),
		logging.WithJSONFormat(jsonFormat),
		logging.WithTimestamp(jsonFormat),
		logging.WithColor(!jsonFormat && w == os.Stderr),
	), nil
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var userErr *config.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}
	return err.Error()
}

func printError(err error) {
	printErrorTo(os.Stderr, err)
}

func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}

func registerFlagCompletions() {
	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml", "toml"}, cobra.ShellCompDirectiveFilterFileExt
	})

	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"text\tHuman readable lines",
			"json\tOne JSON object per line",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
}
