package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutputWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	SetLevel("debug")
	SetOutput(&buf)
	t.Cleanup(func() { SetLevel("info") })

	Log.Info().Str("item_id", "SKU-0001").Msg("analysed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "SKU-0001", entry["item_id"])
	assert.Equal(t, "analysed", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetLevel("info") })

	SetLevel("warn")
	assert.Equal(t, zerolog.WarnLevel, Log.GetLevel())

	Log.Info().Msg("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	SetLevel("nonsense")
	assert.Equal(t, zerolog.InfoLevel, Log.GetLevel())
	assert.Contains(t, buf.String(), "invalid log level")
}
