//go:build !windows

package commands

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
)

// isProcessRunning reads a PID from the given file and checks whether
// that process is still alive. Returns the PID and true if running,
// or 0 and false otherwise.
func isProcessRunning(pidPath string) (int, bool) {
	pid, err := readPidFile(pidPath)
	if err != nil {
		return 0, false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return 0, false
	}
	if err := process.Signal(syscall.Signal(0)); err != nil {
		return 0, false
	}
	return pid, true
}

// daemonArgs rebuilds the command line of the foreground child from the
// flags the user set.
func daemonArgs(cmd *cobra.Command, pidPath string) []string {
	args := []string{"start", "--foreground", "--pid-file", pidPath}
	if GetConfigFile() != "" {
		args = append(args, "--config", GetConfigFile())
	}
	if cmd.Flags().Changed("bind") {
		args = append(args, "--bind", bindFlag)
	}
	if cmd.Flags().Changed("port") {
		args = append(args, "--port", strconv.Itoa(portFlag))
	}
	if cmd.Flags().Changed("root") {
		args = append(args, "--root", rootFlag)
	}
	if logLevel != "" {
		args = append(args, "--log-level", logLevel)
	}
	if verbose {
		args = append(args, "--verbose")
	}
	return args
}

// startDaemon re-executes dftp in the foreground as a detached child.
func startDaemon(cmd *cobra.Command) error {
	// Fail fast on a bad configuration instead of leaving it in the log.
	if _, err := loadStartConfig(cmd); err != nil {
		return err
	}

	stateDir := GetDefaultStateDir()
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	pidPath := pidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	if pid, running := isProcessRunning(pidPath); running {
		return fmt.Errorf("dittoftp is already running (PID %d)\nUse 'dftp stop' to stop the running instance", pid)
	}
	_ = os.Remove(pidPath)

	logPath := logFile
	if logPath == "" {
		logPath = GetDefaultLogFile()
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	child := exec.Command(executable, daemonArgs(cmd, pidPath)...)

	logFileHandle, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logFileHandle.Close() }()

	child.Stdout = logFileHandle
	child.Stderr = logFileHandle
	child.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	if err := child.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	fmt.Printf("dittoftp started in background (PID %d)\n", child.Process.Pid)
	fmt.Printf("  PID file: %s\n", pidPath)
	fmt.Printf("  Log file: %s\n", logPath)
	fmt.Println("\nUse 'dftp stop' to stop the server")
	fmt.Println("Use 'dftp status' to check server status")
	fmt.Println("Use 'dftp logs -f' to follow the log")

	return nil
}
