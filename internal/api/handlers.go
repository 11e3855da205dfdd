package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"sensordash/internal/device"
	"sensordash/internal/errors"
	"sensordash/internal/export"
	"sensordash/internal/history"
	"sensordash/internal/logger"
	"sensordash/internal/stream"
	"sensordash/internal/telemetry"
	"sensordash/internal/threshold"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

// Handler exposes the engine to external collaborators.
type Handler struct {
	engine     *telemetry.Engine
	registry   *device.Registry
	thresholds *threshold.Store
	hub        *stream.Hub
}

func NewHandler(engine *telemetry.Engine, registry *device.Registry, thresholds *threshold.Store, hub *stream.Hub) *Handler {
	return &Handler{
		engine:     engine,
		registry:   registry,
		thresholds: thresholds,
		hub:        hub,
	}
}

func (h *Handler) ListDevices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Snapshot())
}

func (h *Handler) GetReading(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// Unknown ids answer the neutral reading, never an error
	writeJSON(w, http.StatusOK, h.engine.CurrentReading(id))
}

func (h *Handler) ToggleDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	toggled := h.registry.Toggle(id)
	if !toggled {
		logger.Debug().Str("device", id).Msg("Toggle for unknown device ignored")
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":      id,
		"toggled": toggled,
	})
}

func (h *Handler) SelectDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	selected := h.engine.Select(id)

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       id,
		"selected": selected,
	})
}

func (h *Handler) GetTrend(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"device": h.engine.Selected(),
		"points": h.engine.Trend(),
	})
}

func (h *Handler) GetThresholds(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.thresholds.Current())
}

func (h *Handler) PutThresholds(w http.ResponseWriter, r *http.Request) {
	var candidate threshold.Set
	if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil {
		writeError(w, http.StatusBadRequest, errors.New().Wrap(errors.ErrInvalidArgument, err))
		return
	}

	if err := h.thresholds.Commit(candidate); err != nil {
		status := http.StatusInternalServerError
		if errors.CodeOf(err) == threshold.ErrInvalidRange {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}

	writeJSON(w, http.StatusOK, h.thresholds.Current())
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	rng := history.Range(r.URL.Query().Get("range"))
	writeJSON(w, http.StatusOK, history.Generate(rng))
}

func (h *Handler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	rng := history.Range(r.URL.Query().Get("range"))
	body := export.Serialize(history.Generate(rng))

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug().Err(err).Msg("Websocket upgrade failed")
		return
	}

	stream.NewClient(h.hub, conn)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	body := map[string]any{
		"error":   string(errors.CodeOf(err)),
		"message": err.Error(),
	}

	var appErr errors.Error
	if errors.As(err, &appErr) {
		if data := appErr.GetData(); data != nil {
			body["data"] = data
		}
	}

	writeJSON(w, status, body)
}
