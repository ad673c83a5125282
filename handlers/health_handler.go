package handlers

import (
	"context"
	"net/http"
	"time"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db       Pinger
	liveMode string
}

func NewHealthHandler(db Pinger, liveMode string) *HealthHandler {
	return &HealthHandler{db: db, liveMode: liveMode}
}

// HealthHandler godoc
// @Summary Проверка состояния
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /healthz [get]
func (h *HealthHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		status, code = "database unavailable", http.StatusServiceUnavailable
	}

	if err := writeJSON(w, code, jsonResponse{"status": status, "live_mode": h.liveMode}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
