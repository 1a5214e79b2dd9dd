// internal/common/logger/logger_test.go
package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapAdapter_FieldsAndScoping(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"taskType": "score-appetite-matches"})

	log.Info("match run completed", map[string]interface{}{"runId": "run-1", "topMatches": 2})
	log.WithError(errors.New("boom")).Error("persist failed", nil)

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "match run completed", entries[0].Message)
	assert.Equal(t, "score-appetite-matches", first["taskType"])
	assert.Equal(t, "run-1", first["runId"])
	assert.EqualValues(t, 2, first["topMatches"])

	second := entries[1].ContextMap()
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", second["error"])
}

func TestToZapFields_SortedAndErrorAware(t *testing.T) {
	fields := toZapFields(map[string]interface{}{
		"b":     1,
		"a":     "x",
		"cause": errors.New("timeout"),
	})

	require.Len(t, fields, 3)
	assert.Equal(t, "a", fields[0].Key)
	assert.Equal(t, "b", fields[1].Key)
	assert.Equal(t, "cause", fields[2].Key)
	assert.Equal(t, zapcore.ErrorType, fields[2].Type)
	assert.Nil(t, toZapFields(nil))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestNewService(t *testing.T) {
	log := NewService("info", "json", "appetite-workers", "test")
	assert.NotNil(t, log)
	log.Debug("suppressed at info level", nil)
}
