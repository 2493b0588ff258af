package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-audit-api/pkg/logger"
)

func TestNewWithWriter_NivelYCampos(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "warn").Named("pipeline")

	log.Info().Msg("no debe salir")
	log.Warn().Str("item_id", "abc").Msg("reintento")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "pipeline", entry["component"])
	assert.Equal(t, "abc", entry["item_id"])
}

func TestNop_NoEscribe(t *testing.T) {
	log := logger.Nop()
	assert.NotPanics(t, func() { log.Error().Msg("nada") })
}
