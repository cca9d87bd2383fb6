package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/marmos91/dittoftp/internal/cli/output"
	"github.com/marmos91/dittoftp/internal/cli/timeutil"
	"github.com/marmos91/dittoftp/pkg/client"
)

// errQuit ends a shell or script without an error.
var errQuit = errors.New("quit")

// step is one parsed shell or script line.
type step struct {
	verb string
	args []string
	raw  string
}

// stepArity bounds the argument count of each verb.
var stepArity = map[string][2]int{
	"get":  {1, 2},
	"put":  {1, 2},
	"del":  {1, 1},
	"bye":  {0, 0},
	"info": {0, 0},
	"raw":  {1, -1},
	"help": {0, 0},
	"quit": {0, 0},
}

var stepAliases = map[string]string{
	"delete": "del",
	"rm":     "del",
	"exit":   "quit",
	"?":      "help",
}

// parseLine parses one line. Blank lines and "#" comments yield ok=false.
func parseLine(line string) (st step, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return step{}, false, nil
	}

	fields := strings.Fields(line)
	verb := strings.ToLower(fields[0])
	if alias, found := stepAliases[verb]; found {
		verb = alias
	}
	arity, known := stepArity[verb]
	if !known {
		return step{}, false, fmt.Errorf("unknown command %q (try \"help\")", fields[0])
	}

	st = step{verb: verb, args: fields[1:]}
	if verb == "raw" {
		st.raw = strings.TrimSpace(line[len(fields[0]):])
	}
	if n := len(st.args); n < arity[0] || (arity[1] >= 0 && n > arity[1]) {
		return step{}, false, fmt.Errorf("%s: wrong number of arguments\n%s", verb, helpLines[verb])
	}
	return st, true, nil
}

var helpLines = map[string]string{
	"get":  "  get <remote> [local]   download a file (local \"-\" writes to stdout)",
	"put":  "  put <local> [remote]   upload a file",
	"del":  "  del <remote>           delete a file",
	"bye":  "  bye                    end the session (may stop the server)",
	"info": "  info                   show the server welcome",
	"raw":  "  raw <line>             send a command line verbatim",
	"help": "  help                   show this help",
	"quit": "  quit                   leave without BYE",
}

func helpText() string {
	var b strings.Builder
	for _, verb := range []string{"get", "put", "del", "bye", "info", "raw", "help", "quit"} {
		b.WriteString(helpLines[verb])
		b.WriteByte('\n')
	}
	return b.String()
}

// session runs steps against one connection.
type session struct {
	c       *client.Client
	printer *output.Printer
	// confirm asks before a download replaces an existing local file.
	confirm func(label string) (bool, error)
}

// run executes st. A BYE or quit returns errQuit after doing its work.
func (s *session) run(ctx context.Context, st step) error {
	switch st.verb {
	case "get":
		local := ""
		if len(st.args) > 1 {
			local = st.args[1]
		}
		return s.get(ctx, st.args[0], local)

	case "put":
		remote := ""
		if len(st.args) > 1 {
			remote = st.args[1]
		}
		return s.put(ctx, st.args[0], remote)

	case "del":
		if err := s.c.Delete(ctx, st.args[0]); err != nil {
			return err
		}
		s.printer.Success(fmt.Sprintf("Deleted %s", st.args[0]))
		return nil

	case "bye":
		if err := s.c.Bye(ctx); err != nil {
			return err
		}
		s.printer.Info("Session closed")
		return errQuit

	case "info":
		return printWelcome(s.printer, s.c.Welcome())

	case "raw":
		resp, err := s.c.Raw(ctx, []byte(st.raw))
		if err != nil {
			return err
		}
		s.printer.Success(strings.TrimSpace("OK " + strings.Join(resp.Params, " ")))
		return nil

	case "help":
		s.printer.Printf("%s", helpText())
		return nil

	case "quit":
		return errQuit
	}
	return fmt.Errorf("unknown command %q", st.verb)
}

func (s *session) get(ctx context.Context, remote, local string) error {
	if local == "-" {
		_, err := s.c.Get(ctx, remote, os.Stdout)
		return err
	}
	if local == "" {
		local = path.Base(remote)
	}

	if _, err := os.Stat(local); err == nil {
		ok, err := s.confirm(fmt.Sprintf("%s exists. Overwrite", local))
		if err != nil {
			return err
		}
		if !ok {
			s.printer.Warning(fmt.Sprintf("Skipped %s", remote))
			return nil
		}
	}

	f, err := os.Create(local)
	if err != nil {
		return err
	}
	start := time.Now()
	n, err := s.c.Get(ctx, remote, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(local)
		return err
	}
	s.printer.Success(fmt.Sprintf("Downloaded %s -> %s (%s, %s)",
		remote, local, timeutil.FormatBytes(n), timeutil.FormatRate(n, time.Since(start))))
	return nil
}

func (s *session) put(ctx context.Context, local, remote string) error {
	if remote == "" {
		remote = filepath.Base(local)
	}

	f, err := os.Open(local)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", local)
	}

	start := time.Now()
	if err := s.c.Put(ctx, remote, f, info.Size()); err != nil {
		return err
	}
	s.printer.Success(fmt.Sprintf("Uploaded %s -> %s (%s, %s)",
		local, remote, timeutil.FormatBytes(info.Size()), timeutil.FormatRate(info.Size(), time.Since(start))))
	return nil
}

// runScript executes every line of r in order. It stops at the first
// failing line unless keepGoing is set, and reports how many failed.
func (s *session) runScript(ctx context.Context, r io.Reader, keepGoing bool) (failed int, err error) {
	lines, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	for i, line := range strings.Split(string(lines), "\n") {
		st, ok, err := parseLine(line)
		if err == nil && ok {
			err = s.run(ctx, st)
		}
		if errors.Is(err, errQuit) {
			return failed, nil
		}
		if err != nil {
			failed++
			s.printer.Error(fmt.Sprintf("line %d: %v", i+1, err))
			if !keepGoing {
				return failed, fmt.Errorf("line %d: %w", i+1, err)
			}
		}
	}
	return failed, nil
}
