// Package cmdutil provides shared utilities for dftpctl commands.
package cmdutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/marmos91/dittoftp/internal/cli/output"
	"github.com/marmos91/dittoftp/internal/cli/timeutil"
	"github.com/marmos91/dittoftp/pkg/client"
	"github.com/marmos91/dittoftp/pkg/server"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	Host     string
	Port     int
	Output   string
	Charset  string
	Timeout  time.Duration
	NoColor  bool
	Verbose  bool
	Progress bool
}

// Address returns the control address from --host and --port.
func Address() string {
	host := Flags.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := Flags.Port
	if port == 0 {
		port = server.DefaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Connect dials the server named by the global flags. Progress is reported
// on stderr when it is a terminal and --progress is left on.
func Connect(ctx context.Context) (*client.Client, error) {
	opts := []client.Option{
		client.WithTimeout(Flags.Timeout),
	}
	if Flags.Charset != "" {
		opts = append(opts, client.WithCharset(Flags.Charset))
	}
	if Flags.Verbose {
		opts = append(opts, client.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}
	if Flags.Progress && IsTerminal(os.Stderr) {
		opts = append(opts, client.WithProgress(NewProgress(os.Stderr).Update))
	}

	c, err := client.Dial(ctx, Address(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", Address(), err)
	}
	return c, nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Printer returns a printer for the --output and --no-color flags.
func Printer(w io.Writer) (*output.Printer, error) {
	format, err := output.ParseFormat(Flags.Output)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(w, format, !Flags.NoColor && !color.NoColor), nil
}

// Progress renders a single self-overwriting transfer progress line.
type Progress struct {
	w       io.Writer
	started time.Time
	last    time.Time
}

// NewProgress creates a Progress writing to w.
func NewProgress(w io.Writer) *Progress {
	return &Progress{w: w}
}

// Update redraws the line at most every 100ms, and always on completion.
func (p *Progress) Update(done, total int64) {
	now := time.Now()
	if done == 0 || p.started.IsZero() {
		p.started = now
	}
	if done < total && now.Sub(p.last) < 100*time.Millisecond {
		return
	}
	p.last = now

	_, _ = fmt.Fprintf(p.w, "\r%s", progressLine(done, total, now.Sub(p.started)))
	if done >= total {
		_, _ = fmt.Fprintln(p.w)
		p.started = time.Time{}
	}
}

func progressLine(done, total int64, elapsed time.Duration) string {
	pct := 100.0
	if total > 0 {
		pct = float64(done) * 100 / float64(total)
	}
	return fmt.Sprintf("%5.1f%%  %s / %s  %s    ",
		pct, timeutil.FormatBytes(done), timeutil.FormatBytes(total), timeutil.FormatRate(done, elapsed))
}
