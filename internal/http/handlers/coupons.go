package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/draycott/shortcover/internal/core"
	"github.com/draycott/shortcover/pkg/problem"
)

type validateCouponRequest struct {
	PromoCode string                  `json:"promoCode"`
	Total     float64                 `json:"total"`
	Context   core.EligibilityContext `json:"context"`
}

// discountTerms is what gets string-encoded into the response's
// discount field; the caller runs a decode step on it.
type discountTerms struct {
	Type        core.DiscountType `json:"type"`
	Value       float64           `json:"value"`
	MaxDiscount float64           `json:"maxDiscount,omitempty"`
}

// validateCouponResponse preserves the legacy validation wire shape:
// discount arrives as a JSON string, and failures are an {error} body.
type validateCouponResponse struct {
	PromoCode string  `json:"promoCode"`
	Discount  string  `json:"discount"`
	Amount    float64 `json:"amount"`
}

type couponError struct {
	Error string `json:"error"`
}

type CouponHandler struct {
	Promos core.PromoService
	Log    *slog.Logger
}

func NewCouponHandler(promos core.PromoService, log *slog.Logger) *CouponHandler {
	return &CouponHandler{Promos: promos, Log: log}
}

func (h *CouponHandler) Mount(r chi.Router) {
	r.Post("/coupons/validate", h.Validate)
}

// Validate resolves a code against a total and eligibility context
// without touching any stored quote.
// 200: coupon body; 400: bad JSON; 422: invalid code ({error} body).
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, http.StatusBadRequest, "Invalid JSON", "Body could not be decoded.")
		return
	}

	coupon, applied, err := h.Promos.Validate(r.Context(), req.PromoCode, req.Total, req.Context)
	if err != nil {
		if errors.Is(err, core.ErrInvalidPromo) || errors.Is(err, core.ErrValidation) {
			h.Log.WarnContext(r.Context(), "promo validation failed", "err", err)
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(couponError{Error: "invalid or expired promo code"})
			return
		}
		writeError(r.Context(), h.Log, w, err, "Failed to validate promo code")
		return
	}

	terms, err := json.Marshal(discountTerms{
		Type:        coupon.Type,
		Value:       coupon.Value,
		MaxDiscount: coupon.MaxDiscount,
	})
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to encode discount terms")
		return
	}

	resp := validateCouponResponse{
		PromoCode: applied.Code,
		Discount:  string(terms),
		Amount:    applied.Amount,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.Log.Error("failed to encode coupon response", "err", err)
	}
}
