// Package commands implements the dftp server CLI.
package commands

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittoftp/cmd/dftp/commands/config"
	"github.com/marmos91/dittoftp/internal/cli/completion"
	pkgconfig "github.com/marmos91/dittoftp/pkg/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile  string
	logLevel string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "dftp",
	Short: "dittoftp - file transfer server",
	Long: `dittoftp serves a directory over a two-channel file transfer protocol:
one long-lived control connection per client and a short-lived data
connection per GET or PUT, all multiplexed by a single event loop.

Use "dftp [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/dittoftp/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "shorthand for --log-level DEBUG")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(config.Cmd)
	rootCmd.AddCommand(completion.NewCommand("dftp"))

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}

// applyLogFlags lets --log-level and -v override the configured level.
func applyLogFlags(cfg *pkgconfig.Config) {
	switch {
	case verbose:
		cfg.Logging.Level = "DEBUG"
	case logLevel != "":
		cfg.Logging.Level = strings.ToUpper(logLevel)
	}
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
