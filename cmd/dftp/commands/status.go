package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/marmos91/dittoftp/internal/cli/output"
	"github.com/marmos91/dittoftp/internal/cli/timeutil"
	"github.com/marmos91/dittoftp/pkg/apiclient"
	"github.com/marmos91/dittoftp/pkg/config"
	"github.com/marmos91/dittoftp/pkg/server"
)

var (
	statusOutput  string
	statusPidFile string
	statusAPIURL  string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display the status of the dittoftp server and its open sessions.

The PID file tells whether a daemon is running; the admin API reports the
bound address, uptime and every session with its current command.

Examples:
  # Check status (admin API location taken from the config)
  dftp status

  # Query a specific admin endpoint
  dftp status --api-url http://10.0.0.5:8121

  # Output as JSON
  dftp status --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/dittoftp/dftp.pid)")
	statusCmd.Flags().StringVar(&statusAPIURL, "api-url", "", "Admin API base URL (default: from config)")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// ServerStatus is what dftp status reports.
type ServerStatus struct {
	Running bool           `json:"running" yaml:"running"`
	PID     int            `json:"pid,omitempty" yaml:"pid,omitempty"`
	Healthy bool           `json:"healthy" yaml:"healthy"`
	Message string         `json:"message" yaml:"message"`
	Server  *server.Status `json:"server,omitempty" yaml:"server,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	pidPath := statusPidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	baseURL := statusAPIURL
	if baseURL == "" {
		baseURL = adminURL(cfg)
	}
	client := apiclient.New(baseURL).WithToken(cfg.Admin.Token).WithTimeout(2 * time.Second)

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	status := collectStatus(ctx, client, pidPath)

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, status)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, status)
	default:
		return printStatusTable(os.Stdout, status)
	}
}

func collectStatus(ctx context.Context, client *apiclient.Client, pidPath string) ServerStatus {
	status := ServerStatus{Message: "Server is not running"}

	if pid, running := isProcessRunning(pidPath); running {
		status.Running = true
		status.PID = pid
	}

	st, err := client.Status(ctx)
	switch {
	case err == nil && st.Running:
		status.Running = true
		status.Healthy = true
		status.Server = &st
		status.Message = "Server is running and healthy"
	case err == nil:
		status.Running = true
		status.Server = &st
		status.Message = "Server is shutting down"
	case apiclient.IsUnavailable(err):
		status.Running = true
		status.Message = fmt.Sprintf("Server is running but not serving: %v", err)
	case status.Running:
		status.Message = fmt.Sprintf("Server process is running but the admin API is unreachable: %v", err)
	}
	return status
}

func printStatusTable(w io.Writer, status ServerStatus) error {
	p := output.NewPrinter(w, output.FormatTable, !color.NoColor)

	p.Println()
	p.Println("dittoftp Server Status")
	p.Println("======================")
	p.Println()

	switch {
	case status.Healthy:
		p.Success("  ● " + status.Message)
	case status.Running:
		p.Warning("  ● " + status.Message)
	default:
		p.Error("  ○ " + status.Message)
	}
	p.Println()

	pairs := []output.KeyValue{}
	if status.PID > 0 {
		pairs = append(pairs, output.KeyValue{Key: "  PID", Value: strconv.Itoa(status.PID)})
	}
	if st := status.Server; st != nil {
		pairs = append(pairs,
			output.KeyValue{Key: "  Address", Value: st.Address},
			output.KeyValue{Key: "  Started", Value: timeutil.FormatTime(st.Started)},
			output.KeyValue{Key: "  Uptime", Value: timeutil.FormatDuration(time.Since(st.Started))},
			output.KeyValue{Key: "  Sessions", Value: sessionLimit(st)},
			output.KeyValue{Key: "  BYE scope", Value: st.ByeScope},
		)
	}
	if len(pairs) > 0 {
		if err := output.SimpleTable(w, pairs); err != nil {
			return err
		}
		p.Println()
	}

	if status.Server == nil || len(status.Server.Sessions) == 0 {
		return nil
	}
	return output.PrintTable(w, sessionsTable(status.Server.Sessions))
}

func sessionLimit(st *server.Status) string {
	if st.MaxConnections > 0 {
		return fmt.Sprintf("%d / %d", st.ActiveConnections, st.MaxConnections)
	}
	return strconv.Itoa(st.ActiveConnections)
}

func sessionsTable(sessions []server.SessionStatus) *output.TableData {
	table := output.NewTableData("Session", "Client", "State", "Command", "Path", "Transferred", "Data", "Connected")
	for _, s := range sessions {
		id := s.ID
		if len(id) > 8 {
			id = id[:8]
		}
		transferred := "-"
		if s.Transferred > 0 {
			transferred = timeutil.FormatBytes(s.Transferred)
		}
		table.AddRow(id, s.Client, s.State, dash(s.Command), dash(s.Path), transferred,
			strconv.Itoa(s.DataChannels), timeutil.FormatDuration(time.Since(s.ConnectedAt))+" ago")
	}
	return table
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
