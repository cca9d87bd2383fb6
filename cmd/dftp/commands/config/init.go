package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittoftp/internal/cli/output"
	"github.com/marmos91/dittoftp/internal/cli/prompt"
	"github.com/marmos91/dittoftp/pkg/config"
	"github.com/marmos91/dittoftp/pkg/protocol"
)

var (
	initForce       bool
	initInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file",
	Long: `Create a dittoftp configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/dittoftp/config.yaml.
Use --config to specify a custom path.

Examples:
  # Write defaults to the default location
  dftp config init

  # Answer a few questions first
  dftp config init --interactive

  # Force overwrite existing config
  dftp config init --force --config /etc/dittoftp/config.yaml`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Prompt for the main settings")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath(cmd)
	printer := output.DefaultPrinter()

	if _, err := os.Stat(path); err == nil && !initForce {
		ok, err := prompt.Confirm(fmt.Sprintf("%s exists. Overwrite", path), false)
		if err != nil || !ok {
			return fmt.Errorf("%w: %s (use --force to overwrite)", config.ErrConfigExists, path)
		}
	}

	cfg := config.GetDefaultConfig()
	if initInteractive {
		if err := askServerSettings(cfg); err != nil {
			if prompt.IsAborted(err) {
				printer.Warning("Aborted, nothing written")
				return nil
			}
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.WriteConfig(path, cfg, true); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	printer.Success(fmt.Sprintf("Configuration file created at: %s", path))
	printer.Println("\nNext steps:")
	printer.Println("  1. Review the configuration: dftp config show")
	printer.Println("  2. Start the server with:    dftp start")
	printer.Printf("  3. Or with this file:        dftp start --config %s\n", path)
	return nil
}

// askServerSettings prompts for the settings most installs change.
func askServerSettings(cfg *config.Config) error {
	port, err := prompt.InputPort("Control port", cfg.Server.Port, true)
	if err != nil {
		return err
	}
	cfg.Server.Port = port

	root, err := prompt.InputWithValidation("Served directory", cfg.Server.Root, func(s string) error {
		info, err := os.Stat(s)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", s)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cfg.Server.Root = root

	charset, err := prompt.InputWithValidation("Wire charset", cfg.Server.Charset, func(s string) error {
		_, err := protocol.LookupCharset(s)
		return err
	})
	if err != nil {
		return err
	}
	cfg.Server.Charset = charset

	scope, err := prompt.Select("BYE stops", []prompt.SelectOption{
		{Label: "the whole server", Value: "server", Description: "Any client can shut the server down with BYE"},
		{Label: "only the session", Value: "session", Description: "BYE closes the sending client's connection"},
	}, cfg.Server.ByeScope)
	if err != nil {
		return err
	}
	cfg.Server.ByeScope = scope

	level, err := prompt.Select("Log level", []prompt.SelectOption{
		{Label: "DEBUG", Value: "DEBUG"},
		{Label: "INFO", Value: "INFO"},
		{Label: "WARN", Value: "WARN"},
		{Label: "ERROR", Value: "ERROR"},
	}, strings.ToUpper(cfg.Logging.Level))
	if err != nil {
		return err
	}
	cfg.Logging.Level = level

	metrics, err := prompt.Confirm("Enable Prometheus metrics", cfg.Metrics.Enabled)
	if err != nil {
		return err
	}
	cfg.Metrics.Enabled = metrics
	return nil
}
