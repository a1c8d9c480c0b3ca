package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/xtrntr/auction/internal/auction"
	"go.uber.org/zap"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	Service *auction.Service
	Feed    *Feed
	Logger  *zap.Logger
}

// NewHandler creates a new handler. feed may be nil, which disables /ws.
func NewHandler(svc *auction.Service, feed *Feed, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Service: svc, Feed: feed, Logger: logger}
}

// Ping handles POST /users/{uname}/ping
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.Ping(chi.URLParam(r, "uname"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CheckAsks handles POST /users/{uname}/check_asks
func (h *Handler) CheckAsks(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.CheckAsks(chi.URLParam(r, "uname"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PlaceBid handles POST /users/{uname}/place_bid/{price}
func (h *Handler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	price, err := strconv.ParseInt(chi.URLParam(r, "price"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Price must be an integer"})
		return
	}

	res, err := h.Service.PlaceBid(r.Context(), chi.URLParam(r, "uname"), price)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Board handles POST /admin/board
func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.Board())
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps auction errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, auction.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, auction.ErrInsufficientFunds),
		errors.Is(err, auction.ErrNotYetOpen),
		errors.Is(err, auction.ErrAlreadyTraded):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("unexpected error", zap.Error(err))
		writeJSON(w, status, errorBody{Error: "Internal error"})
		return
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
