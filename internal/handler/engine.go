package handler

import (
	"net/http"

	"github.com/osmith/BadgeForge_Go/internal/processor"
)

// EngineStatusResponse describes the queue processor's current shape.
type EngineStatusResponse struct {
	EngineID   string `json:"engineId"`
	State      string `json:"state"`
	QueueDepth int    `json:"queueDepth"`
	Processed  int64  `json:"processed"`
	Errors     int64  `json:"errors"`
}

// HandleEngineStatus reports processor state and counters.
// @Summary Get engine status
// @Tags engine
// @Produce json
// @Success 200 {object} EngineStatusResponse
// @Router /api/engine/status [get]
func HandleEngineStatus(engineID string, proc *processor.Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, EngineStatusResponse{
			EngineID:   engineID,
			State:      proc.State(),
			QueueDepth: proc.QueueDepth(),
			Processed:  proc.ProcessedCount(),
			Errors:     proc.ErrorCount(),
		})
	}
}
