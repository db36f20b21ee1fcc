package quota

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromHeaders(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	h := http.Header{}
	h.Set("x-ratelimit-limit-requests", "14400")
	h.Set("x-ratelimit-remaining-requests", "14390")
	h.Set("x-ratelimit-limit", "30")
	h.Set("x-ratelimit-remaining", "29")

	snapshot := FromHeaders(h, "groq", now)
	require.NotNil(t, snapshot)
	assert.Equal(t, 14400, snapshot.RequestsPerDayLimit)
	assert.Equal(t, 14390, snapshot.RequestsPerDayRemaining)
	assert.Equal(t, 30, snapshot.RequestsPerMinuteLimit)
	assert.Equal(t, 29, snapshot.RequestsPerMinuteRemaining)
	assert.Equal(t, "groq", snapshot.Source)
	assert.Equal(t, now, snapshot.CapturedAt)
}

func TestFromHeadersAbsentOrGarbage(t *testing.T) {
	t.Parallel()

	assert.Nil(t, FromHeaders(http.Header{}, "gemini", time.Now()))

	h := http.Header{}
	h.Set("x-ratelimit-limit-requests", "lots")
	assert.Nil(t, FromHeaders(h, "gemini", time.Now()))
}
