// Package cmd implements the verdict command-line interface.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/verdict/internal/config"
	"github.com/3leaps/verdict/internal/observability"
)

var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "HEAD",
	BuildDate: "unknown",
}

// SetVersionInfo injects build metadata from the entrypoint.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var (
	cfgFile    string
	logLevel   string
	logProfile string
	backend    string

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "verdict",
	Short: "Resolve the true scheduling outcome of CI jobs",
	Long: `verdict answers one question reliably across two inconsistent,
partially-available CI data sources: what is the true scheduling outcome of
a given job for a given revision and builder?

Fast polling data can report a job as trivially successful when it was
silently coalesced and never ran; verdict cross-references the archival job
dumps to disambiguate.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return exitError(foundry.ExitInvalidArgument, "Invalid configuration", err)
		}
		appConfig = cfg

		level := cfg.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		profile := cfg.Logging.Profile
		if logProfile != "" {
			profile = logProfile
		}
		if err := observability.Init(level, profile); err != nil {
			return exitError(foundry.ExitInvalidArgument, "Invalid logging configuration", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override logging level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logProfile, "log-profile", "", "Override logging profile (structured|console)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "selfserve", "Query backend (selfserve|resultset)")
}

// Execute runs the CLI and exits the process on failure.
func Execute() {
	defer observability.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ec *exitCodeError
		if errors.As(err, &ec) {
			os.Exit(ec.code)
		}
		os.Exit(1)
	}
}

type exitCodeError struct {
	code int
	msg  string
	err  error
}

func (e *exitCodeError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *exitCodeError) Unwrap() error {
	return e.err
}

// exitError logs and wraps a failure with a process exit code.
func exitError(code int, msg string, err error) error {
	observability.CLILogger.Error(msg, zap.Error(err))
	return &exitCodeError{code: code, msg: msg, err: err}
}
