package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/draycott/shortcover/internal/store/rediscache"
	"github.com/draycott/shortcover/pkg/problem"
)

// ReviewHandler stashes and restores the checkout review snapshot. A
// snapshot survives a restart and is consumed exactly once.
type ReviewHandler struct {
	Cache    *rediscache.ReviewCache
	Validity time.Duration
	Log      *slog.Logger
}

func NewReviewHandler(cache *rediscache.ReviewCache, validity time.Duration, log *slog.Logger) *ReviewHandler {
	return &ReviewHandler{Cache: cache, Validity: validity, Log: log}
}

func (h *ReviewHandler) Mount(r chi.Router) {
	r.Route("/quotes/{quote_id}/review", func(r chi.Router) {
		r.Put("/", h.Put)
		r.Get("/", h.Take)
	})
}

// Put stores the snapshot. The TTL is clamped to what remains of the
// quote's validity window; a snapshot must not outlive its quote.
func (h *ReviewHandler) Put(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "quote_id")
	if id == "" {
		problem.Write(w, http.StatusBadRequest, "Missing Quote ID", "Path parameter quote_id is required.")
		return
	}

	var snap rediscache.ReviewSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		problem.Write(w, http.StatusBadRequest, "Invalid JSON", "Body could not be decoded.")
		return
	}

	ttl := h.Validity
	if !snap.Quote.CreatedAt.IsZero() {
		if left := time.Until(snap.Quote.CreatedAt.Add(h.Validity)); left < ttl {
			ttl = left
		}
	}
	if ttl <= 0 {
		problem.Write(w, http.StatusGone, "Quote Expired", "This quote has expired. Please request a new quote.")
		return
	}

	if err := h.Cache.Put(r.Context(), id, snap, ttl); err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to store review snapshot")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Take returns the snapshot and deletes it.
func (h *ReviewHandler) Take(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "quote_id")
	if id == "" {
		problem.Write(w, http.StatusBadRequest, "Missing Quote ID", "Path parameter quote_id is required.")
		return
	}

	snap, err := h.Cache.Take(r.Context(), id)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "No review snapshot for this quote")
		return
	}

	if err := json.NewEncoder(w).Encode(snap); err != nil {
		h.Log.Error("failed to encode review snapshot", "quote_id", id, "err", err)
	}
}
