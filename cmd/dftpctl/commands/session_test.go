package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    step
		ok      bool
		wantErr bool
	}{
		{name: "blank", line: "   ", ok: false},
		{name: "comment", line: "# nightly sync", ok: false},
		{name: "get", line: "get report.txt", want: step{verb: "get", args: []string{"report.txt"}}, ok: true},
		{name: "get with local", line: "GET report.txt /tmp/r", want: step{verb: "get", args: []string{"report.txt", "/tmp/r"}}, ok: true},
		{name: "alias", line: "rm old.txt", want: step{verb: "del", args: []string{"old.txt"}}, ok: true},
		{name: "exit", line: "exit", want: step{verb: "quit", args: []string{}}, ok: true},
		{name: "raw keeps spacing", line: "raw PUT  a.txt 3", want: step{verb: "raw", args: []string{"PUT", "a.txt", "3"}, raw: "PUT  a.txt 3"}, ok: true},
		{name: "unknown verb", line: "ls", wantErr: true},
		{name: "missing argument", line: "del", wantErr: true},
		{name: "too many arguments", line: "bye now", wantErr: true},
		{name: "raw needs a line", line: "raw", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := parseLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestHelpTextListsEveryVerb(t *testing.T) {
	text := helpText()
	for verb := range stepArity {
		assert.Contains(t, text, "  "+verb+" ")
	}
}
