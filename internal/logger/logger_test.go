package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		json  bool
		debug bool
	}{
		{name: "console info", json: false, debug: false},
		{name: "json debug", json: true, debug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.json, tt.debug)
			require.NoError(t, err)
			require.NotNil(t, log)
			assert.Equal(t, tt.debug, log.Core().Enabled(-1))
		})
	}
}

func TestTruncateForLog(t *testing.T) {
	assert.Equal(t, "", TruncateForLog("anything", 0))
	assert.Equal(t, "short", TruncateForLog("  short  ", 10))
	assert.Equal(t, "abc...", TruncateForLog("abcdef", 3))
	assert.Equal(t, "héé...", TruncateForLog("hééllo", 3))
}
