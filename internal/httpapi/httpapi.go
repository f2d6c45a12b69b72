package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/volantvm/bridgectl/internal/controller"
	"github.com/volantvm/bridgectl/internal/eventbus"
	"github.com/volantvm/bridgectl/internal/events"
	"github.com/volantvm/bridgectl/internal/netdev/bridge"
)

const writeWait = 10 * time.Second

// Handler wires HTTP endpoints for bridge management.
type Handler struct {
	controller *controller.Controller
	bus        eventbus.Bus
	logger     *slog.Logger
	upgrader   websocket.Upgrader
}

type nameRequest struct {
	Name string `json:"name"`
}

// New constructs a router backed by ctrl. Events are streamed from bus when
// it is non-nil.
func New(ctrl *controller.Controller, bus eventbus.Bus, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		controller: ctrl,
		bus:        bus,
		logger:     logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/bridges", h.handleListBridges)
		r.Post("/bridges", h.handleCreateBridge)
		r.Delete("/bridges/{name}", h.handleDeleteBridge)
		r.Post("/bridges/{name}/interfaces", h.handleAddInterface)
		r.Delete("/bridges/{name}/interfaces/{iface}", h.handleDeleteInterface)
		r.Get("/journal", h.handleJournal)
		r.Get("/events", h.handleEvents)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) handleListBridges(w http.ResponseWriter, r *http.Request) {
	items, err := h.controller.List(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleCreateBridge(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.controller.CreateBridge(r.Context(), req.Name); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (h *Handler) handleDeleteBridge(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.DeleteBridge(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddInterface(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.controller.AddInterface(r.Context(), chi.URLParam(r, "name"), req.Name); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeleteInterface(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.DeleteInterface(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "iface")); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleJournal(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	entries, err := h.controller.Journal(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	if h.bus == nil {
		writeError(w, http.StatusServiceUnavailable, "event bus unavailable")
		return
	}

	// Subscribe before the handshake completes so the client sees every
	// event published after its dial returns.
	ch := make(chan any, 32)
	unsubscribe, err := h.bus.Subscribe(events.TopicBridge, ch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case payload := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(payload); err != nil {
				return
			}
		}
	}
}

// statusFor maps operation errors onto HTTP status codes.
func statusFor(err error) int {
	var validation controller.ValidationError
	switch {
	case errors.As(err, &validation), errors.Is(err, bridge.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, bridge.ErrDeviceNotFound):
		return http.StatusNotFound
	case errors.Is(err, bridge.ErrUnsupported):
		return http.StatusNotImplemented
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EEXIST, syscall.EBUSY:
			return http.StatusConflict
		case syscall.ENXIO, syscall.ENODEV:
			return http.StatusNotFound
		case syscall.EPERM, syscall.EACCES:
			return http.StatusForbidden
		case syscall.EINVAL:
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
