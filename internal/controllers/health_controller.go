package controllers

import (
	"fmt"
	"net/http"
	"readtrack/internal/services"
	"time"
)

type HealthController struct {
	service   services.HistoryServiceInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	ReadingDays   int     `json:"reading_days"`
	Revision      uint64  `json:"revision"`
	Score         int     `json:"score"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(hc.startTime)
	report := hc.service.GetReport()
	status := "ok"
	if !report.IsValid {
		status = "degraded"
	}
	resp := healthResponse{
		Status:        status,
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		ReadingDays:   hc.service.GetReadingDaysCount(),
		Revision:      hc.service.GetRevision(),
		Score:         report.Score,
	}

	writeJSON(w, http.StatusOK, resp)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(service services.HistoryServiceInterface) *HealthController {
	return &HealthController{
		service:   service,
		startTime: time.Now(),
	}
}
