package logger

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset() {
	SetVerbose(false)
	_ = SetLevel("warn")
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("test message %s", "arg")

	assert.Contains(t, buf.String(), "DBG")
	assert.Contains(t, buf.String(), "test message arg")
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("test message")

	assert.Zero(t, buf.Len(), "expected no output when verbose is disabled")
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Discovery")

	assert.Contains(t, buf.String(), "=== Discovery ===")
}

func TestInfo_RespectsLevel(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Info("hidden at warn")
	assert.Zero(t, buf.Len())

	require.NoError(t, SetLevel("info"))
	Info("shown at %s", "info")
	assert.Contains(t, buf.String(), "shown at info")
}

func TestWarnAndError(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Warn("disk %s slow", "sdb")
	Error(errors.New("boom"), "scan failed")

	out := buf.String()
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "disk sdb slow")
	assert.Contains(t, out, "ERR")
	assert.Contains(t, out, "scan failed")
	assert.Contains(t, out, "boom")
}

func TestSetLevel_Invalid(t *testing.T) {
	defer reset()

	err := SetLevel("chatty")
	assert.Error(t, err)
}

func TestLogger_ReturnsCopy(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	l := Logger()
	l.Warn().Str("path", "/data").Msg("structured")

	assert.Contains(t, buf.String(), "structured")
	assert.Contains(t, buf.String(), "path=/data")
}
