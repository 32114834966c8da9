package core

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLogger_Level(t *testing.T) {
	tests := []struct {
		env  string
		want logrus.Level
	}{
		{"", logrus.WarnLevel},
		{"info", logrus.InfoLevel},
		{"DEBUG", logrus.DebugLevel},
		{"verbose", logrus.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(LogLevelEnv, tt.env)
			assert.Equal(t, tt.want, defaultLogger().GetLevel())
		})
	}
}

func TestRequestLogging(t *testing.T) {
	logger, hook := test.NewNullLogger()

	logger.SetLevel(logrus.WarnLevel)
	beforeRequestLog(logger, "r1", "GET", "http://x/", nil)
	assert.Empty(t, hook.AllEntries())

	logger.SetLevel(logrus.InfoLevel)
	beforeRequestLog(logger, "r2", "POST", "http://x/", strings.NewReader(`{"title": "a"}`))
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.NotContains(t, hook.LastEntry().Data, "body")
	assert.Equal(t, "r2", hook.LastEntry().Data["request_id"])

	logger.SetLevel(logrus.DebugLevel)
	beforeRequestLog(logger, "r2", "POST", "http://x/", strings.NewReader(`{"title": "a"}`))
	assert.Equal(t, `{"title":"a"}`, hook.LastEntry().Data["body"])

	afterRequestLog(logger, RecordSet{{ResourceTypeKey: "Audio", "id": 1}})
	assert.Equal(t, 1, hook.LastEntry().Data["count"])
	assert.Equal(t, "Audio", hook.LastEntry().Data["type"])
}
