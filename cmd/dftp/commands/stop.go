package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittoftp/pkg/apiclient"
	"github.com/marmos91/dittoftp/pkg/config"
)

var (
	stopPidFile string
	stopForce   bool
	stopTimeout time.Duration
)

// errProcessDone means the process exited before it was signalled.
var errProcessDone = errors.New("process already finished")

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the dittoftp server",
	Long: `Stop a running dittoftp server.

Sends SIGTERM and waits up to --timeout for the server to drain its sessions,
then escalates to SIGKILL. Use --force to send SIGKILL right away.

Without a PID file (for example a server started with --foreground under a
supervisor), the shutdown is requested through the admin API instead.

Examples:
  # Stop server (uses default PID file)
  dftp stop

  # Stop server using custom PID file
  dftp stop --pid-file /var/run/dftp.pid

  # Force stop (SIGKILL)
  dftp stop --force`,
	RunE: runStop,
}

func init() {
	stopCmd.Flags().StringVar(&stopPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/dittoftp/dftp.pid)")
	stopCmd.Flags().BoolVarP(&stopForce, "force", "f", false, "Force kill (SIGKILL) instead of graceful shutdown (SIGTERM)")
	stopCmd.Flags().DurationVar(&stopTimeout, "timeout", 30*time.Second, "How long to wait before escalating to SIGKILL")
}

func runStop(cmd *cobra.Command, args []string) error {
	pidPath := stopPidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	pid, err := readPidFile(pidPath)
	if errors.Is(err, os.ErrNotExist) {
		return stopViaAPI(cmd, pidPath)
	}
	if err != nil {
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}

	if err := stopProcess(process, pid, stopForce); err != nil {
		if errors.Is(err, errProcessDone) {
			fmt.Println("Server already stopped")
			_ = os.Remove(pidPath)
			return nil
		}
		return err
	}

	if stopForce {
		_ = os.Remove(pidPath)
		fmt.Println("Server terminated")
		return nil
	}

	if waitForExit(pidPath, stopTimeout) {
		fmt.Println("Server stopped gracefully")
		return nil
	}

	fmt.Printf("Server still running after %s, escalating\n", stopTimeout)
	if err := stopProcess(process, pid, true); err != nil && !errors.Is(err, errProcessDone) {
		return err
	}
	_ = os.Remove(pidPath)
	fmt.Println("Server terminated")
	return nil
}

// waitForExit polls until the server removes its PID file or stops
// answering signals.
func waitForExit(pidPath string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, running := isProcessRunning(pidPath); !running {
			return true
		}
		time.Sleep(200 * time.Millisecond)
	}
	return false
}

func stopViaAPI(cmd *cobra.Command, pidPath string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil || !cfg.Admin.IsEnabled() {
		return fmt.Errorf("PID file not found: %s\n\nIs the server running?", pidPath)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	client := apiclient.New(adminURL(cfg)).WithToken(cfg.Admin.Token)
	if err := client.Shutdown(ctx); err != nil {
		return fmt.Errorf("PID file not found: %s, and the admin API at %s did not accept a shutdown: %w",
			pidPath, client.BaseURL(), err)
	}
	fmt.Printf("Shutdown requested through %s\n", client.BaseURL())
	return nil
}
