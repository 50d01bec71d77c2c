package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/draycott/shortcover/internal/core"
)

type fakeQuoteService struct {
	priceQuote   core.Quote
	priceErr     error
	getQuote     core.Quote
	getErr       error
	repriceQuote core.Quote
	repriceErr   error
	formula      core.QuoteFormula
	formulaErr   error
}

func (f *fakeQuoteService) Price(context.Context, core.QuoteInput) (core.Quote, error) {
	return f.priceQuote, f.priceErr
}

func (f *fakeQuoteService) Reprice(context.Context, string, core.QuoteInput) (core.Quote, error) {
	return f.repriceQuote, f.repriceErr
}

func (f *fakeQuoteService) Get(context.Context, string) (core.Quote, error) {
	return f.getQuote, f.getErr
}

func (f *fakeQuoteService) Formula(context.Context) (core.QuoteFormula, error) {
	return f.formula, f.formulaErr
}

type fakePromoService struct {
	coupon     core.Coupon
	applied    core.AppliedDiscount
	valErr     error
	applyQuote core.Quote
	applyErr   error
}

func (f *fakePromoService) Validate(context.Context, string, float64, core.EligibilityContext) (core.Coupon, core.AppliedDiscount, error) {
	return f.coupon, f.applied, f.valErr
}

func (f *fakePromoService) Apply(context.Context, string, int, string, core.EligibilityContext) (core.Quote, error) {
	return f.applyQuote, f.applyErr
}

func (f *fakePromoService) Remove(context.Context, string) (core.Quote, error) {
	return f.applyQuote, f.applyErr
}

type fakeCheckoutService struct {
	payload core.CheckoutPayload
	err     error
}

func (f *fakeCheckoutService) Checkout(context.Context, string, string) (core.CheckoutPayload, error) {
	return f.payload, f.err
}

func testRouter(quotes core.QuoteService, promos core.PromoService, checkout core.CheckoutService) chi.Router {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewQuoteHandler(quotes, promos, checkout, log).Mount(r)
	NewCouponHandler(promos, log).Mount(r)
	return r
}

const validQuoteBody = `{
	"duration": {"unit": "days", "amount": 3},
	"dateOfBirth": "1985-03-01",
	"licenceHeldMonths": 240,
	"registration": "AB12 CDE",
	"reason": "borrowing a friend's car",
	"start": {"immediate": true}
}`

func TestCreateQuote(t *testing.T) {
	svc := &fakeQuoteService{priceQuote: core.Quote{ID: "q1", Status: core.QuoteStatusFresh, Revision: 1, Total: 59.40}}
	r := testRouter(svc, &fakePromoService{}, &fakeCheckoutService{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/quotes", strings.NewReader(validQuoteBody)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var record core.QuoteRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record.ID != "q1" {
		t.Errorf("record ID = %q, want q1", record.ID)
	}
	var embedded core.Quote
	if err := json.Unmarshal([]byte(record.QuoteData), &embedded); err != nil {
		t.Fatalf("quoteData is not a JSON string of the quote: %v", err)
	}
	if embedded.Total != 59.40 {
		t.Errorf("embedded total = %v, want 59.40", embedded.Total)
	}
}

func TestCreateQuoteBadDate(t *testing.T) {
	r := testRouter(&fakeQuoteService{}, &fakePromoService{}, &fakeCheckoutService{})

	body := strings.Replace(validQuoteBody, "1985-03-01", "01/03/1985", 1)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/quotes", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateQuoteFormulaUnavailable(t *testing.T) {
	svc := &fakeQuoteService{priceErr: core.ErrConfigMissing}
	r := testRouter(svc, &fakePromoService{}, &fakeCheckoutService{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/quotes", strings.NewReader(validQuoteBody)))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestGetQuoteNotFound(t *testing.T) {
	svc := &fakeQuoteService{getErr: core.ErrNotFound}
	r := testRouter(svc, &fakePromoService{}, &fakeCheckoutService{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quotes/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestApplyPromoStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid code", core.ErrInvalidPromo, http.StatusUnprocessableEntity},
		{"stale revision", core.ErrStaleTotal, http.StatusConflict},
		{"in flight", core.ErrPromoInFlight, http.StatusConflict},
		{"expired quote", core.ErrQuoteExpired, http.StatusGone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := testRouter(&fakeQuoteService{}, &fakePromoService{applyErr: tc.err}, &fakeCheckoutService{})

			body := `{"promoCode": "WELCOME10", "revision": 1}`
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/quotes/q1/promo", strings.NewReader(body)))

			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestCheckoutExpiredMapsToGone(t *testing.T) {
	r := testRouter(&fakeQuoteService{}, &fakePromoService{}, &fakeCheckoutService{err: core.ErrQuoteExpired})

	body := `{"paymentMethod": "card"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/quotes/q1/checkout", strings.NewReader(body)))

	if rec.Code != http.StatusGone {
		t.Fatalf("status = %d, want 410", rec.Code)
	}
}

func TestValidateCouponResponseShape(t *testing.T) {
	promos := &fakePromoService{
		coupon:  core.Coupon{Code: "HALFPRICE", Type: core.DiscountPercentage, Value: 50, MaxDiscount: 5, Active: true},
		applied: core.AppliedDiscount{Code: "HALFPRICE", Amount: 5},
	}
	r := testRouter(&fakeQuoteService{}, promos, &fakeCheckoutService{})

	body := `{"promoCode": "halfprice", "total": 20}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/coupons/validate", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		PromoCode string  `json:"promoCode"`
		Discount  string  `json:"discount"`
		Amount    float64 `json:"amount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.PromoCode != "HALFPRICE" || resp.Amount != 5 {
		t.Errorf("response = %+v", resp)
	}

	// The discount field is itself a JSON document.
	var terms struct {
		Type        string  `json:"type"`
		Value       float64 `json:"value"`
		MaxDiscount float64 `json:"maxDiscount"`
	}
	if err := json.Unmarshal([]byte(resp.Discount), &terms); err != nil {
		t.Fatalf("discount field is not JSON: %v", err)
	}
	if terms.Type != "percentage" || terms.Value != 50 || terms.MaxDiscount != 5 {
		t.Errorf("terms = %+v", terms)
	}
}

func TestValidateCouponFailureBody(t *testing.T) {
	r := testRouter(&fakeQuoteService{}, &fakePromoService{valErr: core.ErrInvalidPromo}, &fakeCheckoutService{})

	body := `{"promoCode": "NOSUCH", "total": 20}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/coupons/validate", strings.NewReader(body)))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if e.Error == "" {
		t.Error("failure body missing error field")
	}
}
