package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/draycott/shortcover/internal/core"
)

// formulaResponse mirrors the quote-settings wire shape the form
// collaborator consumes.
type formulaResponse struct {
	Success      bool         `json:"success"`
	QuoteFormula *formulaBody `json:"quoteFormula,omitempty"`
}

type formulaBody struct {
	BaseHourlyRate       float64             `json:"baseHourlyRate"`
	BaseDailyRate        float64             `json:"baseDailyRate"`
	MultiDayDiscountPct  float64             `json:"multiDayDiscountPercentage"`
	MultiWeekDiscountPct float64             `json:"multiWeekDiscountPercentage"`
	AgeDiscounts         []core.DiscountTier `json:"ageDiscounts"`
	LicenceDiscounts     []core.DiscountTier `json:"licenseHeldDiscounts"`
}

type SettingsHandler struct {
	Quotes core.QuoteService
	Log    *slog.Logger
}

func NewSettingsHandler(quotes core.QuoteService, log *slog.Logger) *SettingsHandler {
	return &SettingsHandler{Quotes: quotes, Log: log}
}

func (h *SettingsHandler) Mount(r chi.Router) {
	r.Get("/quote-settings", h.Get)
}

// Get serves the formula, or success=false while it has not loaded so
// the form can show a loading state instead of quoting at zero.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	f, err := h.Quotes.Formula(r.Context())
	if err != nil {
		if errors.Is(err, core.ErrConfigMissing) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(formulaResponse{Success: false})
			return
		}
		writeError(r.Context(), h.Log, w, err, "Failed to load quote settings")
		return
	}

	resp := formulaResponse{
		Success: true,
		QuoteFormula: &formulaBody{
			BaseHourlyRate:       f.BaseHourlyRate,
			BaseDailyRate:        f.BaseDailyRate,
			MultiDayDiscountPct:  f.MultiDayDiscountPct,
			MultiWeekDiscountPct: f.MultiWeekDiscountPct,
			AgeDiscounts:         f.AgeDiscounts.Tiers(),
			LicenceDiscounts:     f.LicenceDiscounts.Tiers(),
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.Log.Error("failed to encode quote settings", "err", err)
	}
}
