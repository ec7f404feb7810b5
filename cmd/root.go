// Package cmd implements the demonstration CLI for the syscall filter
// database: building a FilterDB from an OCI seccomp configuration,
// inspecting its merged decision tree, and emitting a ready-made default
// profile. It has no command that compiles the database to BPF; that
// lowering is the bpfgen package's job.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/scantist-ossops-m2/seccompdb/logging"
)

// Version information set at build time.
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// Global flags.
var (
	globalBundle    string
	globalLogFormat string
	globalDebug     bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "seccompdb",
	Short: "Inspect and compile syscall filter databases",
	Long: `seccompdb builds an in-memory decision-tree filter database from an
OCI runtime-spec seccomp configuration, merges overlapping rules, and prints
the result for inspection. It can also emit its built-in default profile.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalBundle, "bundle", ".", "bundle directory containing config.json")
	rootCmd.PersistentFlags().StringVar(&globalLogFormat, "log-format", "text", "set the format for log output (text or json)")
	rootCmd.PersistentFlags().BoolVar(&globalDebug, "debug", false, "enable debug logging")
}

func setupLogging() {
	logLevel := slog.LevelInfo
	if globalDebug {
		logLevel = slog.LevelDebug
	}

	logger := logging.NewLogger(logging.Config{
		Level:  logLevel,
		Format: globalLogFormat,
		Output: os.Stderr,
	})
	logging.SetDefault(logger)
}
