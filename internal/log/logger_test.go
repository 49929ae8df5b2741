package log

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("development", ""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("production", ""))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("production", "WARN"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel("development", "error"))
	assert.Equal(t, zerolog.DebugLevel, parseLevel("production", "debug"))
}

func TestNewWithWriter_IncludesEnvironment(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "production", "info")

	logger.Info().Str("user_id", "u1").Msg("user registered")

	out := buf.String()
	assert.Contains(t, out, "user registered")
	assert.Contains(t, out, "env=production")
	assert.Contains(t, out, "user_id=u1")
}
