package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahamitd/notifyai/internal/application"
	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/ahamitd/notifyai/internal/ports"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Generate(ctx context.Context, cmd application.GenerateNotification) domain.GenerationResult {
	args := m.Called(ctx, cmd)
	return args.Get(0).(domain.GenerationResult)
}

func (m *mockService) GetUsageStatus(ctx context.Context, historyDays int) (application.UsageStatus, error) {
	args := m.Called(ctx, historyDays)
	return args.Get(0).(application.UsageStatus), args.Error(1)
}

func newTestRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("notifyai_provider_requests_total 1\n"))
	})
	return NewRouter(svc, metrics, logger)
}

func TestGenerateMapsBodyToCommand(t *testing.T) {
	svc := &mockService{}
	svc.On("Generate", mock.Anything, application.GenerateNotification{
		Event:       "door opened",
		Mode:        "smart",
		TimeLabel:   "08:15",
		Target:      "notify.mobile_app_phone",
		AudioDevice: "media_player.kitchen",
	}).Return(domain.GenerationResult{Title: "Front Door", Body: "Someone opened the front door."})

	body := `{"event":"door opened","mode":"smart","time":"08:15","target":"notify.mobile_app_phone","audio_device":"media_player.kitchen"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/services/notifyai/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	newTestRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"title":"Front Door","body":"Someone opened the front door."}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestGenerateReturnsErrorResultWithOK(t *testing.T) {
	svc := &mockService{}
	svc.On("Generate", mock.Anything, mock.Anything).Return(domain.ErrorResult("System prompt missing."))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/services/notifyai/generate", strings.NewReader(`{"event":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	newTestRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"title":"Error","body":"System prompt missing."}`, w.Body.String())
}

func TestGenerateRejectsMissingEvent(t *testing.T) {
	svc := &mockService{}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/services/notifyai/generate", strings.NewReader(`{"mode":"smart"}`))
	req.Header.Set("Content-Type", "application/json")
	newTestRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestUsageReportsSensors(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := &mockService{}
	svc.On("GetUsageStatus", mock.Anything, 2).Return(application.UsageStatus{
		Provider:   domain.ProviderGemini,
		Model:      "gemini-flash-latest",
		Counters:   domain.UsageCounters{DailyCount: 40, LastCallStatus: domain.CallStatusSuccess},
		DailyLimit: 250,
		Remaining:  210,
		History: []ports.DailyCount{
			{Day: day.AddDate(0, 0, -1), Count: 12},
			{Day: day, Count: 40},
		},
	}, nil)

	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/usage?days=2", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp usageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 40, resp.DailyCount)
	assert.Equal(t, 250, resp.DailyLimit)
	assert.Equal(t, 210, resp.Remaining)
	assert.Equal(t, "gemini-flash-latest", resp.Attributes["current_model"])
	assert.Equal(t, []historyEntry{{Day: "2026-02-28", Count: 12}, {Day: "2026-03-01", Count: 40}}, resp.History)
}

func TestUsageRejectsBadDays(t *testing.T) {
	svc := &mockService{}

	for _, days := range []string{"abc", "-1", "91"} {
		w := httptest.NewRecorder()
		newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/usage?days="+days, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, days)
	}
}

func TestUsageFailure(t *testing.T) {
	svc := &mockService{}
	svc.On("GetUsageStatus", mock.Anything, 0).Return(application.UsageStatus{}, errors.New("settings unreadable"))

	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/usage", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(&mockService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "notifyai_provider_requests_total")
}

func TestRequestLoggingMiddlewareLogsStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()
	router := NewRouter(&mockService{}, nil, logger)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "request served", entry.Message)
	assert.Equal(t, http.StatusOK, entry.Data["status"])
	assert.Equal(t, "/healthz", entry.Data["path"])
}
