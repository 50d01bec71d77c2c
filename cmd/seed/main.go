package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/draycott/shortcover/internal/core"
	"github.com/draycott/shortcover/internal/platform/config"
	"github.com/draycott/shortcover/internal/platform/logging"
	"github.com/draycott/shortcover/internal/store/mongo"
	"github.com/draycott/shortcover/internal/store/postgres"
)

func main() {
	cfg := config.MustLoad()
	log := logging.New(cfg.Env)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.NewClient(cfg)
	if err != nil {
		log.Error("failed to connect to MongoDB", "err", err)
		os.Exit(1)
	}
	defer client.Close(ctx)

	opTimeout := 5 * time.Second

	log.Info("seeding quote formula")
	if err := seedFormula(ctx, mongo.NewFormulaRepo(client.DB, opTimeout)); err != nil {
		log.Error("failed to seed formula", "err", err)
		os.Exit(1)
	}

	log.Info("seeding coupons", "store", cfg.CouponStore)
	var coupons core.CouponRepo
	switch cfg.CouponStore {
	case "postgres":
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to connect to Postgres", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Error("failed to ensure coupon schema", "err", err)
			os.Exit(1)
		}
		coupons = postgres.NewCouponRepo(db)
	default:
		coupons = mongo.NewCouponRepo(client.DB, opTimeout)
	}
	seedCoupons(ctx, coupons, log)

	log.Info("done seeding")
}

func seedFormula(ctx context.Context, repo *mongo.FormulaRepoMongo) error {
	age, err := core.NewTierTable([]core.DiscountTier{
		{Threshold: 21, Percent: 5},
		{Threshold: 25, Percent: 10},
		{Threshold: 30, Percent: 15},
	})
	if err != nil {
		return err
	}
	licence, err := core.NewTierTable([]core.DiscountTier{
		{Threshold: 12, Percent: 5},  // one year held
		{Threshold: 36, Percent: 10}, // three years
		{Threshold: 60, Percent: 15}, // five years
	})
	if err != nil {
		return err
	}

	formula := core.QuoteFormula{
		BaseHourlyRate:       5.50,
		BaseDailyRate:        22.00,
		MultiDayDiscountPct:  10,
		MultiWeekDiscountPct: 15,
		AgeDiscounts:         age,
		LicenceDiscounts:     licence,
	}
	if err := formula.Validate(); err != nil {
		return err
	}
	return repo.Put(ctx, formula)
}

func seedCoupons(ctx context.Context, repo core.CouponRepo, log *slog.Logger) {
	coupons := []core.Coupon{
		{
			Code:   "WELCOME10",
			Type:   core.DiscountPercentage,
			Value:  10,
			Active: true,
		},
		{
			Code:        "HALFPRICE",
			Type:        core.DiscountPercentage,
			Value:       50,
			MaxDiscount: 5,
			Active:      true,
		},
		{
			Code:   "FIVER",
			Type:   core.DiscountFixed,
			Value:  5,
			Active: true,
		},
		{
			Code:  "SMITHONLY",
			Type:  core.DiscountFixed,
			Value: 7.50,
			Eligibility: core.Eligibility{
				LastName: "Smith",
			},
			Active: true,
		},
	}

	for _, c := range coupons {
		if err := repo.Create(ctx, c); err != nil {
			if errors.Is(err, core.ErrConflict) {
				log.Info("coupon exists", "code", c.Code)
				continue
			}
			log.Error("failed to seed coupon", "code", c.Code, "err", err)
			continue
		}
		log.Info("seeded coupon", "code", c.Code)
	}
}
