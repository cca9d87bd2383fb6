package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/marmos91/dittoftp/pkg/config"
)

var (
	logsFollow bool
	logsLines  int
	logsSince  string
	logsFile   string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Tail server logs",
	Long: `Display and optionally follow the dittoftp server logs.

The log file is, in order: --file, logging.output from the configuration when
it names a file, or the daemon log written by "dftp start".

Examples:
  # Show last 100 lines (default)
  dftp logs

  # Follow logs in real-time
  dftp logs -f

  # Show entries written after a point in time
  dftp logs --since "2024-01-15T10:00:00Z"`,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 100, "Number of lines to show")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since timestamp (RFC3339 format)")
	logsCmd.Flags().StringVar(&logsFile, "file", "", "Log file to read")
}

func runLogs(cmd *cobra.Command, args []string) error {
	logPath, err := resolveLogFile()
	if err != nil {
		return err
	}

	var since time.Time
	if logsSince != "" {
		since, err = time.Parse(time.RFC3339, logsSince)
		if err != nil {
			return fmt.Errorf("invalid --since format (use RFC3339): %w", err)
		}
	}

	file, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	out := cmd.OutOrStdout()
	lines, err := tailLines(file, logsLines, since)
	if err != nil {
		return fmt.Errorf("error reading log file: %w", err)
	}
	for _, line := range lines {
		_, _ = fmt.Fprintln(out, line)
	}

	if !logsFollow {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	fmt.Fprintf(os.Stderr, "Following %s (Ctrl+C to stop)...\n", logPath)
	return followLogs(ctx, file, logPath, out)
}

func resolveLogFile() (string, error) {
	if logsFile != "" {
		return logsFile, nil
	}

	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if out := cfg.Logging.Output; out != "stdout" && out != "stderr" {
		if _, err := os.Stat(out); err != nil {
			return "", fmt.Errorf("log file not found: %s\nThe server may not have started yet", out)
		}
		return out, nil
	}

	daemonLog := GetDefaultLogFile()
	if _, err := os.Stat(daemonLog); err != nil {
		return "", fmt.Errorf("server is configured to log to %s and no daemon log exists at %s\n"+
			"Set 'logging.output' to a file path or pass --file", cfg.Logging.Output, daemonLog)
	}
	return daemonLog, nil
}

// tailLines returns the last n lines of r that are not older than since.
// Lines without a recognizable timestamp are kept.
func tailLines(r io.Reader, n int, since time.Time) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	ring := make([]string, 0, n)
	next := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !since.IsZero() {
			if ts := extractTimestamp(line); !ts.IsZero() && ts.Before(since) {
				continue
			}
		}
		if len(ring) < n {
			ring = append(ring, line)
			continue
		}
		ring[next] = line
		next = (next + 1) % n
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return append(ring[next:], ring[:next]...), nil
}

// followLogs prints what is appended to file after the current offset
// until ctx is cancelled.
func followLogs(ctx context.Context, file *os.File, logPath string, out io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(logPath); err != nil {
		return fmt.Errorf("failed to watch log file: %w", err)
	}

	reader := bufio.NewReader(file)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) {
				continue
			}
			for {
				line, err := reader.ReadString('\n')
				if line != "" {
					_, _ = fmt.Fprint(out, line)
				}
				if err != nil {
					break
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// textTimeLayout is the timestamp written by the text log handler.
const textTimeLayout = "2006-01-02 15:04:05"

// extractTimestamp reads the time of a log line in either handler format:
// "[2024-01-15 10:30:45] [INFO] ..." or a JSON object with a "time" field.
func extractTimestamp(line string) time.Time {
	if strings.HasPrefix(line, "[") && len(line) > len(textTimeLayout)+1 && line[len(textTimeLayout)+1] == ']' {
		if t, err := time.ParseInLocation(textTimeLayout, line[1:len(textTimeLayout)+1], time.Local); err == nil {
			return t
		}
	}

	if strings.HasPrefix(line, "{") {
		var rec struct {
			Time time.Time `json:"time"`
		}
		if json.Unmarshal([]byte(line), &rec) == nil {
			return rec.Time
		}
	}
	return time.Time{}
}
