package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ra-risk-server/internal/domain"
)

func TestNew_LevelAndFormat(t *testing.T) {
	tests := []struct {
		name      string
		cfg       domain.LoggingConfig
		level     logrus.Level
		jsonLines bool
	}{
		{"defaults", domain.LoggingConfig{}, logrus.InfoLevel, true},
		{"debug text", domain.LoggingConfig{Level: "debug", Format: "text"}, logrus.DebugLevel, false},
		{"bad level", domain.LoggingConfig{Level: "loud", Format: "json"}, logrus.InfoLevel, true},
		{"stderr", domain.LoggingConfig{Level: "warn", Output: "stderr"}, logrus.WarnLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, closer, err := New(tt.cfg)
			require.NoError(t, err)
			defer closer.Close()

			assert.Equal(t, tt.level, logger.GetLevel())
			_, isJSON := logger.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.jsonLines, isJSON)
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ra-risk.log")

	logger, closer, err := New(domain.LoggingConfig{Level: "info", Output: path})
	require.NoError(t, err)

	logger.WithField("severity", "Moderate").Info("assessment complete")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "assessment complete", entry["message"])
	assert.Equal(t, "Moderate", entry["severity"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_UnwritableFile(t *testing.T) {
	_, _, err := New(domain.LoggingConfig{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}
