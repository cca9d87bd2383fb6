package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittoftp/cmd/dftpctl/cmdutil"
	"github.com/marmos91/dittoftp/internal/cli/prompt"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session",
	Long: `Open one connection and run commands against it interactively.

Type "help" for the list of commands. Ctrl+D or "quit" leaves without BYE;
"bye" ends the session on the server side too.

When stdin is not a terminal the lines are run as a script.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	if !cmdutil.IsTerminal(os.Stdin) {
		return runScriptFrom(cmd, os.Stdin, false)
	}

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

	w := c.Welcome()
	printer.Info(fmt.Sprintf("Connected to %s (protocol %s, serving %s)", cmdutil.Address(), w.Version, w.Cwd))

	s := &session{
		c:       c,
		printer: printer,
		confirm: func(label string) (bool, error) {
			return prompt.Confirm(label, false)
		},
	}
	label := cmdutil.Address() + ">"
	for {
		line, err := prompt.Line(label)
		switch {
		case errors.Is(err, prompt.ErrEOF):
			return nil
		case errors.Is(err, prompt.ErrAborted):
			continue
		case err != nil:
			return err
		}

		st, ok, err := parseLine(line)
		if err == nil && ok {
			err = s.run(ctx, st)
		}
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			printer.Error(err.Error())
		}
	}
}
