package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittoftp/pkg/protocol"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dftpctl %s\n", Version)
		fmt.Printf("  Commit:   %s\n", Commit)
		fmt.Printf("  Built:    %s\n", Date)
		fmt.Printf("  Protocol: %s\n", protocol.Version)
	},
}
