//go:build windows

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// isProcessRunning only checks that the PID file is readable on Windows.
func isProcessRunning(pidPath string) (int, bool) {
	pid, err := readPidFile(pidPath)
	if err != nil {
		return 0, false
	}
	return pid, true
}

// startDaemon is not supported on Windows.
// Use --foreground flag to run the server in the foreground.
func startDaemon(*cobra.Command) error {
	return fmt.Errorf("daemon mode is not supported on Windows, use --foreground")
}
