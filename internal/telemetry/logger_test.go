package telemetry

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_Level(t *testing.T) {
	logger := NewLogger("siesta", "warn", false)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestNewLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	logger := NewLogger("siesta", "chatty", false)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestNewLogger_EmptyLevel(t *testing.T) {
	logger := NewLogger("siesta", "", true)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
