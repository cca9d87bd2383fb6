package cmdutil

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddress(t *testing.T) {
	saved := *Flags
	t.Cleanup(func() { *Flags = saved })

	*Flags = GlobalFlags{}
	assert.Equal(t, "127.0.0.1:2121", Address())

	*Flags = GlobalFlags{Host: "::1", Port: 2200}
	assert.Equal(t, "[::1]:2200", Address())
}

func TestPrinterRejectsUnknownFormat(t *testing.T) {
	saved := *Flags
	t.Cleanup(func() { *Flags = saved })

	Flags.Output = "xml"
	_, err := Printer(&bytes.Buffer{})
	assert.Error(t, err)
}

func TestProgressLine(t *testing.T) {
	line := progressLine(512, 1024, time.Second)
	assert.True(t, strings.HasPrefix(line, " 50.0%"), line)
	assert.Contains(t, line, "512 B / 1.0 KiB")
	assert.Contains(t, line, "512 B/s")

	assert.Contains(t, progressLine(0, 0, 0), "100.0%")
}

func TestProgressFinishesLine(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)
	p.Update(10, 20)
	p.Update(20, 20)
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
	assert.Equal(t, 2, strings.Count(buf.String(), "\r"))
}
