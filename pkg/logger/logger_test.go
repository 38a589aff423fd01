package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("desconocido"))
}

func TestLogger_JSONConCamposFijos(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, Config{Env: "production", Level: "info", App: "ledger"})

	l.Debug().Msg("no debe salir")
	l.Named("scan").Info().Str("session_id", "s1").Msg("hola")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "ledger", line["app"])
	assert.Equal(t, "scan", line["component"])
	assert.Equal(t, "s1", line["session_id"])
	assert.Equal(t, "hola", line["message"])
}

func TestNop_NoEscribe(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error().Msg("nada") })
}
