// Package commands implements the CLI commands for the dftpctl client.
package commands

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittoftp/cmd/dftpctl/cmdutil"
	"github.com/marmos91/dittoftp/internal/cli/completion"
	"github.com/marmos91/dittoftp/pkg/protocol"
	"github.com/marmos91/dittoftp/pkg/server"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "dftpctl",
	Short: "dittoftp client",
	Long: `dftpctl talks to a dittoftp server: it downloads, uploads and deletes
files, runs command scripts, and offers an interactive shell.

Use "dftpctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		cmdutil.Flags.Host, _ = flags.GetString("host")
		cmdutil.Flags.Port, _ = flags.GetInt("port")
		cmdutil.Flags.Output, _ = flags.GetString("output")
		cmdutil.Flags.Charset, _ = flags.GetString("charset")
		cmdutil.Flags.Timeout, _ = flags.GetDuration("timeout")
		cmdutil.Flags.NoColor, _ = flags.GetBool("no-color")
		cmdutil.Flags.Verbose, _ = flags.GetBool("verbose")
		cmdutil.Flags.Progress, _ = flags.GetBool("progress")
	},
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
	pf := rootCmd.PersistentFlags()
	pf.StringP("host", "H", "127.0.0.1", "Server host")
	pf.IntP("port", "p", server.DefaultPort, "Server control port")
	pf.StringP("output", "o", "table", "Output format (table|json|yaml)")
	pf.String("charset", protocol.DefaultCharset, "Wire charset; must match the server")
	pf.Duration("timeout", 2*time.Minute, "I/O timeout per read or write (0 disables)")
	pf.Bool("no-color", false, "Disable colored output")
	pf.BoolP("verbose", "v", false, "Log protocol exchanges to stderr")
	pf.Bool("progress", true, "Show transfer progress on a terminal")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(delCmd)
	rootCmd.AddCommand(byeCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(completion.NewCommand("dftpctl"))

	rootCmd.CompletionOptions.DisableDefaultCmd = true
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
