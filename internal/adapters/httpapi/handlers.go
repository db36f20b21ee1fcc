package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ahamitd/notifyai/internal/application"
	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxHistoryDays = 90

// Service is the slice of application.Service the gateway exposes.
type Service interface {
	Generate(ctx context.Context, cmd application.GenerateNotification) domain.GenerationResult
	GetUsageStatus(ctx context.Context, historyDays int) (application.UsageStatus, error)
}

type Handler struct {
	svc    Service
	logger logrus.FieldLogger
}

func NewHandler(svc Service, logger logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type generateRequest struct {
	Event       string `json:"event" binding:"required"`
	Context     string `json:"context"`
	Mode        string `json:"mode"`
	Persona     string `json:"persona"`
	Time        string `json:"time"`
	CustomTitle string `json:"custom_title"`
	ImagePath   string `json:"image_path"`
	Target      string `json:"target"`
	AudioDevice string `json:"audio_device"`
	TTSService  string `json:"tts_service"`
	Language    string `json:"language"`
}

func (r generateRequest) command() application.GenerateNotification {
	return application.GenerateNotification{
		Event:       r.Event,
		Context:     r.Context,
		Mode:        r.Mode,
		Persona:     r.Persona,
		TimeLabel:   r.Time,
		CustomTitle: r.CustomTitle,
		ImagePath:   r.ImagePath,
		Target:      r.Target,
		AudioDevice: r.AudioDevice,
		TTSService:  r.TTSService,
		Language:    r.Language,
	}
}

type usageResponse struct {
	DailyCount int            `json:"daily_count"`
	DailyLimit int            `json:"daily_limit"`
	Remaining  int            `json:"remaining"`
	Attributes map[string]any `json:"attributes"`
	History    []historyEntry `json:"history,omitempty"`
}

type historyEntry struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// Generate always answers 200 with {title, body}; failures are error-shaped
// results, never HTTP errors.
func (h *Handler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("invalid generate request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result := h.svc.Generate(c.Request.Context(), req.command())
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Usage(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > maxHistoryDays {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid days"})
			return
		}
		days = parsed
	}

	status, err := h.svc.GetUsageStatus(c.Request.Context(), days)
	if err != nil {
		h.logger.WithError(err).Error("read usage status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read usage"})
		return
	}

	resp := usageResponse{
		DailyCount: status.Counters.DailyCount,
		DailyLimit: status.DailyLimit,
		Remaining:  status.Remaining,
		Attributes: status.Attributes(),
	}
	for _, day := range status.History {
		resp.History = append(resp.History, historyEntry{Day: day.Day.Format(time.DateOnly), Count: day.Count})
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
