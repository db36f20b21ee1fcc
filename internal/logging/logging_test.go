package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToOutputAndFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "logs", "notifyai.log")
	buf := &bytes.Buffer{}

	logger, closeFn, err := New(Options{Level: "debug", File: file, Output: buf})
	require.NoError(t, err)

	logger.WithField("request_id", "r-1").Debug("provider call")
	require.NoError(t, closeFn())

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.Contains(t, buf.String(), "request_id=r-1")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "provider call")
}

func TestNewDefaultsAndRejectsBadLevel(t *testing.T) {
	logger, _, err := New(Options{Output: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	_, _, err = New(Options{Level: "loud"})
	assert.Error(t, err)
}
