package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/daypulse/bot/internal/core/domain"
	"github.com/daypulse/bot/internal/core/ports"
	"github.com/daypulse/bot/internal/core/services"
)

type StatsHandler struct {
	answers ports.AnswerRepository
}

func NewStatsHandler(answers ports.AnswerRepository) *StatsHandler {
	return &StatsHandler{
		answers: answers,
	}
}

type dayStatResponse struct {
	Date          string `json:"date"`
	SelectedValue int    `json:"selected_value"`
	Count         int64  `json:"count"`
}

// GetDayStats returns the per-option answer counts for the kind's current
// survey day.
func (h *StatsHandler) GetDayStats(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParsePollKind(chi.URLParam(r, "kind"))
	if err != nil {
		http.Error(w, "unknown poll kind", http.StatusBadRequest)
		return
	}

	stats, err := h.answers.GetDayStats(r.Context(), kind, services.SurveyDay(time.Now().UTC()))
	if err != nil {
		http.Error(w, "failed to read stats", http.StatusInternalServerError)
		return
	}

	resp := make([]dayStatResponse, 0, len(stats))
	for _, stat := range stats {
		resp = append(resp, dayStatResponse{
			Date:          stat.Date.Format(time.DateOnly),
			SelectedValue: stat.SelectedValue,
			Count:         stat.NSelected,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
