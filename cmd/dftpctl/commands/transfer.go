package commands

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittoftp/cmd/dftpctl/cmdutil"
	"github.com/marmos91/dittoftp/internal/cli/prompt"
)

var getForce bool

var getCmd = &cobra.Command{
	Use:   "get <remote> [local]",
	Short: "Download a file",
	Long: `Download a file from the server.

The local name defaults to the base name of the remote file; "-" writes to
stdout.

Examples:
  dftpctl get report.txt
  dftpctl get report.txt /tmp/report.txt
  dftpctl get report.txt - | wc -c`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShot(cmd, step{verb: "get", args: args})
	},
}

var putCmd = &cobra.Command{
	Use:   "put <local> [remote]",
	Short: "Upload a file",
	Long: `Upload a local file. The server refuses to overwrite an existing file.

Examples:
  dftpctl put report.txt
  dftpctl put ./build/report.txt archive-2024.txt`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShot(cmd, step{verb: "put", args: args})
	},
}

var delCmd = &cobra.Command{
	Use:     "del <remote>",
	Aliases: []string{"delete", "rm"},
	Short:   "Delete a file",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShot(cmd, step{verb: "del", args: args})
	},
}

var byeCmd = &cobra.Command{
	Use:   "bye",
	Short: "Send BYE",
	Long: `Connect and send BYE. Depending on the server's bye_scope this closes
only this session or stops the whole server.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShot(cmd, step{verb: "bye"})
	},
}

func init() {
	getCmd.Flags().BoolVarP(&getForce, "force", "f", false, "Overwrite an existing local file without asking")
}

// oneShot connects, runs st and closes the connection without BYE.
func oneShot(cmd *cobra.Command, st step) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	printer, err := cmdutil.Printer(os.Stderr)
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
			return prompt.ConfirmWithForce(label, getForce)
		},
	}
	if err := s.run(ctx, st); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}
