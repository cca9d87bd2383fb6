package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittoftp/internal/cli/output"
	"github.com/marmos91/dittoftp/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the dittoftp configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  dftp config validate

  # Validate specific config file
  dftp config validate --config /etc/dittoftp/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.MustLoad(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printer := output.NewPrinter(out, output.FormatTable, output.DefaultPrinter().ColorEnabled())
	printer.Printf("Configuration file: %s\n", configPath(cmd))
	printer.Success("Validation: OK")

	if warnings := configWarnings(cfg); len(warnings) > 0 {
		printer.Println("\nWarnings:")
		for _, w := range warnings {
			printer.Warning("  - " + w)
		}
	}

	printer.Println("\nConfiguration summary:")
	return output.SimpleTable(out, configSummary(cfg))
}

func configSummary(cfg *config.Config) []output.KeyValue {
	admin := "disabled"
	if cfg.Admin.IsEnabled() {
		admin = net.JoinHostPort(cfg.Admin.BindAddress, strconv.Itoa(cfg.Admin.Port))
	}
	metrics := "disabled"
	if cfg.Metrics.Enabled {
		metrics = fmt.Sprintf(":%d", cfg.Metrics.Port)
	}

	return []output.KeyValue{
		{Key: "  Listen", Value: net.JoinHostPort(cfg.Server.BindAddress, strconv.Itoa(cfg.Server.Port))},
		{Key: "  Root", Value: cfg.Server.Root},
		{Key: "  Charset", Value: cfg.Server.Charset},
		{Key: "  BYE scope", Value: cfg.Server.ByeScope},
		{Key: "  Admin API", Value: admin},
		{Key: "  Metrics", Value: metrics},
		{Key: "  Log level", Value: cfg.Logging.Level},
	}
}

// configWarnings lists settings that are valid but probably unintended.
func configWarnings(cfg *config.Config) []string {
	var warnings []string

	if cfg.Server.ByeScope == "server" && !isLoopback(cfg.Server.BindAddress) {
		warnings = append(warnings, "any client can stop the server with BYE (server.bye_scope: server on a public address)")
	}
	if cfg.Admin.IsEnabled() && cfg.Admin.Token == "" && !isLoopback(cfg.Admin.BindAddress) {
		warnings = append(warnings, "admin API is reachable from the network without a token (admin.token)")
	}
	if cfg.Server.MaxConnections == 0 {
		warnings = append(warnings, "no session limit (server.max_connections: 0)")
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.SampleRate == 0 {
		warnings = append(warnings, "tracing is enabled but telemetry.sample_rate is 0")
	}
	return warnings
}

func isLoopback(addr string) bool {
	ip := net.ParseIP(addr)
	return ip != nil && ip.IsLoopback()
}
