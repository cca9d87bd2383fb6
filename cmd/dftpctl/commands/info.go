package commands

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittoftp/cmd/dftpctl/cmdutil"
	"github.com/marmos91/dittoftp/internal/cli/output"
	"github.com/marmos91/dittoftp/pkg/protocol"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the server welcome",
	Long: `Connect and print what the server announces on connect: protocol
version, served directory, and the user and effective uid it runs as.`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

// welcomeInfo is the JSON/YAML form of a welcome message.
type welcomeInfo struct {
	Address string `json:"address" yaml:"address"`
	Version string `json:"version" yaml:"version"`
	Cwd     string `json:"cwd" yaml:"cwd"`
	User    string `json:"user" yaml:"user"`
	Euid    int    `json:"euid" yaml:"euid"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	printer, err := cmdutil.Printer(os.Stdout)
	if err != nil {
		return err
	}
	c, err := cmdutil.Connect(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	return printWelcome(printer, c.Welcome())
}

func printWelcome(printer *output.Printer, w protocol.Welcome) error {
	if printer.Format() != output.FormatTable {
		return printer.Print(welcomeInfo{
			Address: cmdutil.Address(),
			Version: w.Version,
			Cwd:     w.Cwd,
			User:    w.User,
			Euid:    w.Euid,
		})
	}
	return output.SimpleTable(printer.Writer(), []output.KeyValue{
		{Key: "Server", Value: cmdutil.Address()},
		{Key: "Protocol", Value: w.Version},
		{Key: "Directory", Value: w.Cwd},
		{Key: "User", Value: w.User},
		{Key: "EUID", Value: strconv.Itoa(w.Euid)},
	})
}
