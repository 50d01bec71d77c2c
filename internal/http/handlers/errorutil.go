package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/draycott/shortcover/internal/core"
	"github.com/draycott/shortcover/pkg/problem"
)

func writeError(ctx context.Context, log *slog.Logger, w http.ResponseWriter, err error, detail string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		log.WarnContext(ctx, "resource not found", "err", err)
		problem.Write(w, http.StatusNotFound, "Not Found", detail)

	case errors.Is(err, core.ErrValidation):
		log.WarnContext(ctx, "validation failed", "err", err)
		problem.Write(w, http.StatusBadRequest, "Validation Error", detail)

	case errors.Is(err, core.ErrConfigMissing):
		log.WarnContext(ctx, "quote formula not loaded", "err", err)
		problem.Write(w, http.StatusServiceUnavailable, "Quoting Unavailable",
			"Pricing configuration has not been loaded yet. Try again shortly.")

	case errors.Is(err, core.ErrQuoteExpired):
		log.WarnContext(ctx, "quote expired", "err", err)
		problem.Write(w, http.StatusGone, "Quote Expired",
			"This quote has expired. Please request a new quote.")

	case errors.Is(err, core.ErrInvalidPromo):
		log.WarnContext(ctx, "invalid promo code", "err", err)
		problem.Write(w, http.StatusUnprocessableEntity, "Invalid Promo Code", detail)

	case errors.Is(err, core.ErrPromoInFlight):
		log.WarnContext(ctx, "promo validation in flight", "err", err)
		problem.Write(w, http.StatusConflict, "Validation In Progress",
			"A promo validation for this quote is already in progress.")

	case errors.Is(err, core.ErrStaleTotal):
		log.WarnContext(ctx, "stale quote total", "err", err)
		problem.Write(w, http.StatusConflict, "Quote Changed",
			"The quote was recomputed. Re-validate the promo code against the new total.")

	case errors.Is(err, core.ErrConflict), errors.Is(err, core.ErrInvalidState):
		log.WarnContext(ctx, "resource conflict", "err", err)
		problem.Write(w, http.StatusConflict, "Conflict", detail)

	case errors.Is(err, core.ErrUnauthorized):
		log.WarnContext(ctx, "unauthorized request", "err", err)
		problem.Write(w, http.StatusUnauthorized, "Unauthorized", detail)

	case errors.Is(err, context.DeadlineExceeded):
		log.ErrorContext(ctx, "operation timeout", "err", err)
		problem.Write(w, http.StatusGatewayTimeout, "Timeout", "Operation took too long.")

	default:
		log.ErrorContext(ctx, "internal server error", "err", err)
		problem.Write(w, http.StatusInternalServerError, "Internal Server Error", detail)
	}
}
