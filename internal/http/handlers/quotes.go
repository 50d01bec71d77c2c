package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/draycott/shortcover/internal/core"
	"github.com/draycott/shortcover/pkg/problem"
)

// quoteRequest is the wire form of a quote submission. Date of birth
// travels as ISO yyyy-mm-dd.
type quoteRequest struct {
	Duration          core.Duration       `json:"duration"`
	DateOfBirth       string              `json:"dateOfBirth"`
	LicenceHeldMonths int                 `json:"licenceHeldMonths"`
	VehicleValueBand  string              `json:"vehicleValueBand"`
	Registration      string              `json:"registration"`
	Reason            string              `json:"reason"`
	Start             core.StartSelection `json:"start"`
}

func (in quoteRequest) toInput() (core.QuoteInput, error) {
	dob, err := time.Parse("2006-01-02", in.DateOfBirth)
	if err != nil {
		return core.QuoteInput{}, err
	}
	return core.QuoteInput{
		Duration:          in.Duration,
		DateOfBirth:       dob,
		LicenceHeldMonths: in.LicenceHeldMonths,
		VehicleValueBand:  in.VehicleValueBand,
		Registration:      in.Registration,
		Reason:            in.Reason,
		Start:             in.Start,
	}, nil
}

type applyPromoRequest struct {
	PromoCode string                  `json:"promoCode"`
	Revision  int                     `json:"revision"`
	Context   core.EligibilityContext `json:"context"`
}

type checkoutRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

type QuoteHandler struct {
	Quotes   core.QuoteService
	Promos   core.PromoService
	Checkout core.CheckoutService
	Log      *slog.Logger
}

func NewQuoteHandler(quotes core.QuoteService, promos core.PromoService, checkout core.CheckoutService, log *slog.Logger) *QuoteHandler {
	return &QuoteHandler{Quotes: quotes, Promos: promos, Checkout: checkout, Log: log}
}

func (h *QuoteHandler) Mount(r chi.Router) {
	r.Route("/quotes", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/{quote_id}", h.Get)
		r.Post("/{quote_id}/reprice", h.Reprice)
		r.Post("/{quote_id}/promo", h.ApplyPromo)
		r.Delete("/{quote_id}/promo", h.RemovePromo)
		r.Post("/{quote_id}/checkout", h.DoCheckout)
	})
}

// Create prices a submission and returns the persisted record, with
// the quote itself serialized into the quoteData string the payment
// stage later re-parses.
// 201: JSON; 400: bad JSON/validation; 503: formula not loaded.
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, http.StatusBadRequest, "Invalid JSON", "Body could not be decoded.")
		return
	}
	in, err := req.toInput()
	if err != nil {
		problem.Write(w, http.StatusBadRequest, "Invalid Date", "dateOfBirth must be yyyy-mm-dd.")
		return
	}

	q, err := h.Quotes.Price(r.Context(), in)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	record, err := core.EncodeRecord(q)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to encode quote")
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(record); err != nil {
		h.Log.Error("failed to encode quote record", "err", err)
	}
}

// Get retrieves a quote by ID.
// 200: JSON; 400: missing ID; 404: not found.
func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "quote_id")
	if id == "" {
		problem.Write(w, http.StatusBadRequest, "Missing Quote ID", "Path parameter quote_id is required.")
		return
	}

	q, err := h.Quotes.Get(r.Context(), id)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to get quote")
		return
	}

	if err := json.NewEncoder(w).Encode(q); err != nil {
		h.Log.Error("failed to encode quote", "quote_id", id, "err", err)
	}
}

// Reprice supersedes a quote after the customer edited their details.
// Any applied promo discount is discarded.
// 200: JSON; 400: bad JSON/validation; 404: not found; 410: expired.
func (h *QuoteHandler) Reprice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "quote_id")
	if id == "" {
		problem.Write(w, http.StatusBadRequest, "Missing Quote ID", "Path parameter quote_id is required.")
		return
	}

	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, http.StatusBadRequest, "Invalid JSON", "Body could not be decoded.")
		return
	}
	in, err := req.toInput()
	if err != nil {
		problem.Write(w, http.StatusBadRequest, "Invalid Date", "dateOfBirth must be yyyy-mm-dd.")
		return
	}

	q, err := h.Quotes.Reprice(r.Context(), id, in)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	if err := json.NewEncoder(w).Encode(q); err != nil {
		h.Log.Error("failed to encode quote", "quote_id", id, "err", err)
	}
}

// ApplyPromo validates a code against the quote's current total and
// attaches the discount. The revision in the body pins the total the
// caller saw.
// 200: JSON; 404: quote not found; 409: stale revision or in-flight;
// 410: expired; 422: invalid code.
func (h *QuoteHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "quote_id")
	if id == "" {
		problem.Write(w, http.StatusBadRequest, "Missing Quote ID", "Path parameter quote_id is required.")
		return
	}

	var req applyPromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, http.StatusBadRequest, "Invalid JSON", "Body could not be decoded.")
		return
	}

	q, err := h.Promos.Apply(r.Context(), id, req.Revision, req.PromoCode, req.Context)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "The promo code is invalid or has expired.")
		return
	}

	if err := json.NewEncoder(w).Encode(q); err != nil {
		h.Log.Error("failed to encode quote", "quote_id", id, "err", err)
	}
}

// RemovePromo clears any applied discount.
// 200: JSON; 404: not found.
func (h *QuoteHandler) RemovePromo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "quote_id")
	if id == "" {
		problem.Write(w, http.StatusBadRequest, "Missing Quote ID", "Path parameter quote_id is required.")
		return
	}

	q, err := h.Promos.Remove(r.Context(), id)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to remove promo")
		return
	}

	if err := json.NewEncoder(w).Encode(q); err != nil {
		h.Log.Error("failed to encode quote", "quote_id", id, "err", err)
	}
}

// DoCheckout gates payment on the validity window and hands back the
// payload the payment stage reads.
// 200: JSON; 404: not found; 409: already checked out; 410: expired.
func (h *QuoteHandler) DoCheckout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "quote_id")
	if id == "" {
		problem.Write(w, http.StatusBadRequest, "Missing Quote ID", "Path parameter quote_id is required.")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, http.StatusBadRequest, "Invalid JSON", "Body could not be decoded.")
		return
	}

	payload, err := h.Checkout.Checkout(r.Context(), id, req.PaymentMethod)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Log.Error("failed to encode checkout payload", "quote_id", id, "err", err)
	}
}
