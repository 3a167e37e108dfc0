package admin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vigia/internal/domain"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type AlertAdmin interface {
	Create(ctx context.Context, req domain.CreateAlertRequest) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.PublicAlert, error)
	List(ctx context.Context, page, limit int) ([]domain.PublicAlert, int64, error)
	Deliveries(ctx context.Context, id uuid.UUID) ([]domain.DeliveryLogEntry, error)
}

type StatsProvider interface {
	GetStats(ctx context.Context, req domain.StatsRequest) (*domain.DeliveryStats, error)
}

type Handler struct {
	logger *slog.Logger
	Alerts AlertAdmin
	Stats  StatsProvider
}

func NewHandler(logger *slog.Logger, alerts AlertAdmin, stats StatsProvider) *Handler {
	return &Handler{
		logger: logger,
		Alerts: alerts,
		Stats:  stats,
	}
}

func (h *Handler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAlertRequest

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid_json"})
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid_json"})
		return
	}

	id, err := h.Alerts.Create(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, domain.CreateAlertResponse{ID: id})
}

func (h *Handler) GetAlert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid_id"})
		return
	}

	alert, err := h.Alerts.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, alert)
}

func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	alerts, total, err := h.Alerts.List(r.Context(), page, limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, domain.ListAlertsResponse{
		Alerts: alerts,
		Page:   page,
		Limit:  limit,
		Total:  total,
	})
}

func (h *Handler) AlertDeliveries(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid_id"})
		return
	}

	entries, err := h.Alerts.Deliveries(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.DeliveryLogEntry{}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"alertId": id, "deliveries": entries})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	req := domain.StatsRequest{Minutes: queryInt(r, "minutes", 60)}
	if req.Minutes < 1 || req.Minutes > 1440 {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid_minutes"})
		return
	}

	stats, err := h.Stats.GetStats(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}
