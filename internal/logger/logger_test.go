package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONOutsideLocal(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Environment: "production", Level: "warn", Output: &buf})

	log.Info("dropped")
	log.WithError(errors.New("kaput")).Warn("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "kaput", entry["error"])
	assert.Equal(t, logrus.WarnLevel, log.Logger.GetLevel())
}

func TestRequestID(t *testing.T) {
	r := httptest.NewRequest("GET", "/health", nil)
	assert.NotEmpty(t, RequestID(r))

	r.Header.Set(RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", RequestID(r))

	entry := New(Options{Output: &bytes.Buffer{}}).WithRequest(r, "abc-123")
	assert.Equal(t, "abc-123", entry.Data["req_id"])
	assert.Equal(t, "/health", entry.Data["path"])
}
