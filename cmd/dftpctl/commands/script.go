package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittoftp/cmd/dftpctl/cmdutil"
)

var (
	scriptKeepGoing bool
	scriptForce     bool
)

var scriptCmd = &cobra.Command{
	Use:   "script <file|->",
	Short: "Run commands from a file",
	Long: `Run shell commands from a file ("-" reads stdin) over one connection.

One command per line; blank lines and lines starting with # are ignored.
Execution stops at the first failure unless --keep-going is set.

Example script:
  # nightly sync
  put build/report.txt report-latest.txt
  get inventory.csv
  del report-old.txt
  bye`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "-" {
			return runScriptFrom(cmd, os.Stdin, scriptKeepGoing)
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		return runScriptFrom(cmd, f, scriptKeepGoing)
	},
}

func init() {
	scriptCmd.Flags().BoolVarP(&scriptKeepGoing, "keep-going", "k", false, "Continue after a failing line")
	scriptCmd.Flags().BoolVarP(&scriptForce, "force", "f", false, "Overwrite existing local files on get")
}

func runScriptFrom(cmd *cobra.Command, r io.Reader, keepGoing bool) error {
	ctx := cmd.Context()
	printer, err := cmdutil.Printer(os.Stdout)
	if err != nil {
		return err
	}
	c, err := cmdutil.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	s := &session{
		c:       c,
		printer: printer,
		confirm: func(label string) (bool, error) {
			return scriptForce, nil
		},
	}
	failed, err := s.runScript(ctx, r, keepGoing)
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d line(s) failed", failed)
	}
	return nil
}
