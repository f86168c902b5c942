package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"inflatrack/models"
	"inflatrack/repository"
	"inflatrack/scheduler"
)

type Handlers struct {
	samples *repository.SampleRepository
	sched   *scheduler.ScrapeScheduler
}

func NewHandlers(samples *repository.SampleRepository, sched *scheduler.ScrapeScheduler) *Handlers {
	return &Handlers{samples: samples, sched: sched}
}

// HealthCheck reports service liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":   "inflatrack",
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

// GetExport returns the flat inflation export: price samples joined with
// their store and product type dimensions.
func (h *Handlers) GetExport(w http.ResponseWriter, r *http.Request) {
	records, err := h.samples.ExportRecords()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export records")
		return
	}
	if records == nil {
		records = []models.ExportRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// GetStats returns the statistics of the most recent scrape cycle.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sched.LastStats())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
