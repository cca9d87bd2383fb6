package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittoftp/internal/logger"
	"github.com/marmos91/dittoftp/internal/telemetry"
	"github.com/marmos91/dittoftp/pkg/api"
	"github.com/marmos91/dittoftp/pkg/config"
	"github.com/marmos91/dittoftp/pkg/fsys"
	"github.com/marmos91/dittoftp/pkg/server"
)

var (
	foreground bool
	pidFile    string
	logFile    string
	bindFlag   string
	portFlag   int
	rootFlag   string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the dittoftp server",
	Long: `Start the dittoftp server with the specified configuration.

By default, the server runs in the background (daemon mode). Use --foreground
to run in the foreground for debugging or when managed by a process supervisor.

Flags override the configuration file, which overrides built-in defaults.
Environment variables (DFTP_SERVER_PORT, DFTP_LOGGING_LEVEL, ...) sit between
the file and the flags.

Examples:
  # Start in background serving the current directory
  dftp start

  # Serve /srv/files on port 2121 in the foreground
  dftp start --foreground --root /srv/files --port 2121

  # Start with a custom config file and debug logging
  dftp start --config /etc/dittoftp/config.yaml -v`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/dittoftp/dftp.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/dittoftp/dftp.log)")
	startCmd.Flags().StringVar(&bindFlag, "bind", "", "Local address to bind the control and data ports to")
	startCmd.Flags().IntVarP(&portFlag, "port", "p", 0, "Control port")
	startCmd.Flags().StringVarP(&rootFlag, "root", "r", "", "Directory to serve")
}

// loadStartConfig loads the configuration and applies command-line
// overrides, re-validating the result.
func loadStartConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, err
	}

	changed := false
	if cmd.Flags().Changed("bind") {
		cfg.Server.BindAddress = bindFlag
		changed = true
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = portFlag
		changed = true
	}
	if cmd.Flags().Changed("root") {
		cfg.Server.Root = rootFlag
		changed = true
	}
	if verbose || logLevel != "" {
		applyLogFlags(cfg)
		changed = true
	}

	if changed {
		if err := config.Validate(cfg); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return cfg, nil
}

func runStart(cmd *cobra.Command, args []string) error {
	if !foreground {
		return startDaemon(cmd)
	}

	cfg, err := loadStartConfig(cmd)
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, cfg.TelemetryConfig(Version))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := telemetryShutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", logger.KeyError, err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(cfg.ProfilingConfig(Version))
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.KeyError, err)
		}
	}()

	fmt.Println("dittoftp - two-channel file transfer server")
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	} else {
		logger.Info("Profiling disabled")
	}

	metricsResult := config.InitializeMetrics(cfg)

	fs, err := fsys.NewOS(cfg.Server.Root)
	if err != nil {
		return fmt.Errorf("failed to open root: %w", err)
	}

	srv, err := server.New(cfg.ServerConfig(), fs, metricsResult.Metrics)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	if err := srv.Listen(); err != nil {
		return err
	}

	if metricsResult.Server != nil {
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
		go func() {
			if err := metricsResult.Server.Start(ctx); err != nil {
				logger.Error("Metrics server error", logger.KeyError, err)
			}
		}()
	} else {
		logger.Info("Metrics collection disabled")
	}

	if cfg.Admin.IsEnabled() {
		apiServer := api.NewServer(cfg.Admin, srv, cancel)
		go func() {
			if err := apiServer.Start(ctx); err != nil {
				logger.Error("API server error", logger.KeyError, err)
			}
		}()
	}

	if path := configWatchPath(GetConfigFile()); path != "" && !verbose && logLevel == "" {
		if err := watchLogLevel(ctx, path); err != nil {
			logger.Warn("Config reload disabled", logger.KeyError, err)
		}
	}

	if pidFile != "" {
		if err := writePidFile(pidFile); err != nil {
			return err
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown", "signal", sig.String())
		cancel()
		return waitForShutdown(serverDone, cfg.ShutdownTimeout)

	case <-ctx.Done():
		logger.Info("Shutdown requested, initiating graceful shutdown")
		return waitForShutdown(serverDone, cfg.ShutdownTimeout)

	case err := <-serverDone:
		cancel()
		if err != nil {
			logger.Error("Server error", logger.KeyError, err)
			return err
		}
		logger.Info("Server stopped")
		return nil
	}
}

// errShutdownTimeout is returned when the loop does not exit in time.
var errShutdownTimeout = errors.New("graceful shutdown timed out")

func waitForShutdown(serverDone <-chan error, timeout time.Duration) error {
	select {
	case err := <-serverDone:
		if err != nil {
			logger.Error("Server shutdown error", logger.KeyError, err)
			return err
		}
		logger.Info("Server stopped gracefully")
		return nil
	case <-time.After(timeout):
		logger.Error("Server did not stop in time", "timeout", timeout)
		return fmt.Errorf("%w after %s", errShutdownTimeout, timeout)
	}
}
