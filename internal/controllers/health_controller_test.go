package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"readtrack/internal/models"
	"readtrack/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_ReturnsOK(t *testing.T) {
	svc := &testutil.MockHistoryService{
		Snapshot: &models.History{ReadingDays: models.DateSet{"2024-01-02", "2024-01-03"}},
		Revision: 4,
		Report:   models.ValidationReport{IsValid: true, Score: 100},
	}
	hc := NewHealthController(svc)

	rr := httptest.NewRecorder()
	hc.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Contains(t, resp, "uptime")
	assert.Contains(t, resp, "uptime_seconds")
	assert.Equal(t, float64(2), resp["reading_days"])
	assert.Equal(t, float64(4), resp["revision"])
	assert.Equal(t, float64(100), resp["score"])
}

func TestHealth_DegradedWhenStoredHistoryInvalid(t *testing.T) {
	svc := &testutil.MockHistoryService{
		Report: models.ValidationReport{IsValid: false, Score: 75},
	}
	hc := NewHealthController(svc)

	rr := httptest.NewRecorder()
	hc.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
	assert.Equal(t, float64(0), resp["reading_days"])
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"zero", 0, "0h0m0s"},
		{"one minute", 60 * time.Second, "0h1m0s"},
		{"one hour", time.Hour, "1h0m0s"},
		{"mixed", time.Hour + time.Minute + time.Second, "1h1m1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDuration(tt.duration))
		})
	}
}
