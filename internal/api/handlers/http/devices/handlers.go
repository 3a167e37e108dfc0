package devices

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"log/slog"

	"vigia/internal/domain"
	"vigia/pkg/e"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type DeviceRegistrar interface {
	Register(ctx context.Context, req domain.RegisterDeviceRequest) (domain.RegisterDeviceResponse, error)
}

type Handler struct {
	logger    *slog.Logger
	Registrar DeviceRegistrar
}

func NewHandler(logger *slog.Logger, registrar DeviceRegistrar) *Handler {
	return &Handler{
		logger:    logger,
		Registrar: registrar,
	}
}

func (h *Handler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterDeviceRequest

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid_json"})
		return
	}
	// reject trailing garbage after the first JSON object
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid_json"})
		return
	}

	resp, err := h.Registrar.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, e.ErrUserIDRequired):
			h.writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "userId_required"})
		case errors.Is(err, e.ErrDeviceIDRequired):
			h.writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "deviceId_required"})
		default:
			h.log(r).Error("device registration failed", slog.Any("error", err))
			h.writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "internal_error"})
		}
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}
