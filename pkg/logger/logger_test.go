package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	require.Error(t, err)
}

func TestWriterLogger_EmitsFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.InfoLevel).With(String("component", "slope"))

	l.Info("batch done",
		Int("alerts", 3),
		Float64("mean", 1.5),
		Bool("short_circuit", false),
		Error(errors.New("boom")),
	)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "batch done", got["message"])
	assert.Equal(t, "slope", got["component"])
	assert.Equal(t, float64(3), got["alerts"])
	assert.Equal(t, 1.5, got["mean"])
	assert.Equal(t, false, got["short_circuit"])
	assert.Equal(t, "boom", got["error"])
}

func TestWriterLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.WarnLevel)
	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("nothing happens", Strings("bands", []string{"g", "r"}))
}
