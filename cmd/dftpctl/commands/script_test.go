//go:build linux || darwin

package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittoftp/internal/cli/output"
	"github.com/marmos91/dittoftp/pkg/client"
	"github.com/marmos91/dittoftp/pkg/fsys"
	"github.com/marmos91/dittoftp/pkg/server"
)

func startSession(t *testing.T) (*session, *fsys.AferoFS, *bytes.Buffer) {
	t.Helper()

	cfg := server.DefaultConfig()
	cfg.BindAddress = "127.0.0.1"
	cfg.Port = 0
	cfg.ByeScope = server.ByeScopeSession

	fs := fsys.NewMemory()
	srv, err := server.New(cfg, fs, nil)
	require.NoError(t, err)
	require.NoError(t, srv.Listen())
	go func() { _ = srv.Run(context.Background()) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := client.Dial(ctx, srv.Addr().String(), client.WithTimeout(5*time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	var out bytes.Buffer
	s := &session{
		c:       c,
		printer: output.NewPrinter(&out, output.FormatTable, false),
		confirm: func(string) (bool, error) { return true, nil },
	}
	return s, fs, &out
}

func TestRunScript(t *testing.T) {
	s, fs, out := startSession(t)
	dir := t.TempDir()

	require.NoError(t, afero.WriteFile(fs.Fs(), "/inventory.csv", []byte("sku,qty\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs.Fs(), "/old.txt", []byte("x"), 0o644))
	local := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(local, []byte("quarterly"), 0o644))

	script := strings.Join([]string{
		"# sync",
		"put " + local + " latest.txt",
		"get inventory.csv " + filepath.Join(dir, "inventory.csv"),
		"del old.txt",
		"bye",
		"del never-reached.txt",
	}, "\n")

	failed, err := s.runScript(context.Background(), strings.NewReader(script), false)
	require.NoError(t, err)
	assert.Zero(t, failed)

	uploaded, err := afero.ReadFile(fs.Fs(), "/latest.txt")
	require.NoError(t, err)
	assert.Equal(t, "quarterly", string(uploaded))

	downloaded, err := os.ReadFile(filepath.Join(dir, "inventory.csv"))
	require.NoError(t, err)
	assert.Equal(t, "sku,qty\n", string(downloaded))

	exists, err := afero.Exists(fs.Fs(), "/old.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Contains(t, out.String(), "Session closed")
}

func TestRunScriptStopsAtFirstFailure(t *testing.T) {
	s, _, out := startSession(t)

	script := "del missing.txt\ninfo\n"
	failed, err := s.runScript(context.Background(), strings.NewReader(script), false)
	require.Error(t, err)
	assert.Equal(t, 1, failed)
	assert.Contains(t, out.String(), "line 1:")
	assert.NotContains(t, out.String(), "Protocol")
}

func TestRunScriptKeepGoing(t *testing.T) {
	s, _, out := startSession(t)

	script := "del missing.txt\nfrobnicate\ninfo\n"
	failed, err := s.runScript(context.Background(), strings.NewReader(script), true)
	require.NoError(t, err)
	assert.Equal(t, 2, failed)
	assert.Contains(t, out.String(), "Protocol")
}

func TestGetDeclinedOverwriteKeepsLocalFile(t *testing.T) {
	s, fs, out := startSession(t)
	s.confirm = func(string) (bool, error) { return false, nil }

	require.NoError(t, afero.WriteFile(fs.Fs(), "/a.txt", []byte("remote"), 0o644))
	local := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(local, []byte("local"), 0o644))

	require.NoError(t, s.get(context.Background(), "a.txt", local))

	data, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "local", string(data))
	assert.Contains(t, out.String(), "Skipped a.txt")
}
