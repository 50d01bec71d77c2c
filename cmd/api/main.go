package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/draycott/shortcover/internal/core"
	transporthttp "github.com/draycott/shortcover/internal/http"
	"github.com/draycott/shortcover/internal/http/handlers"
	"github.com/draycott/shortcover/internal/http/health"
	"github.com/draycott/shortcover/internal/jobs"
	"github.com/draycott/shortcover/internal/middleware"
	"github.com/draycott/shortcover/internal/platform/config"
	"github.com/draycott/shortcover/internal/platform/logging"
	"github.com/draycott/shortcover/internal/store/dynamo"
	"github.com/draycott/shortcover/internal/store/mongo"
	"github.com/draycott/shortcover/internal/store/postgres"
	"github.com/draycott/shortcover/internal/store/rediscache"
)

func main() {
	cfg := config.MustLoad()
	log := logging.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info("starting shortcover API", "addr", addr, "env", cfg.Env, "db", cfg.DBType)

	validity := time.Duration(cfg.QuoteValidityMin) * time.Minute
	opTimeout := time.Duration(cfg.MongoOpTimeoutMs) * time.Millisecond

	// ---- Stores ----
	var (
		quoteRepo   core.QuoteRepo
		formulaRepo core.FormulaRepo
		couponRepo  core.CouponRepo
		pinger      health.Pinger
		mongoClient *mongo.MongoClient
	)

	switch cfg.DBType {
	case "mongo":
		var err error
		mongoClient, err = mongo.NewClient(cfg)
		if err != nil {
			log.Error("failed to connect to MongoDB", "err", err)
			os.Exit(1)
		}
		defer mongoClient.Close(context.Background())

		if err := mongo.EnsureIndexes(ctx, mongoClient.DB); err != nil {
			log.Error("failed to ensure indexes", "err", err)
			os.Exit(1)
		}

		quoteRepo = mongo.NewQuoteRepo(mongoClient.DB, opTimeout)
		formulaRepo = mongo.NewFormulaRepo(mongoClient.DB, opTimeout)
		pinger = mongoClient

	case "dynamodb":
		client, err := dynamo.NewClient(ctx, dynamo.Config{
			Region:          cfg.AWSRegion,
			Endpoint:        cfg.DynamoDBEndpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			log.Error("failed to connect to DynamoDB", "err", err)
			os.Exit(1)
		}
		if err := dynamo.EnsureTables(ctx, client.DB, log); err != nil {
			log.Error("failed to ensure tables", "err", err)
			os.Exit(1)
		}

		quoteRepo = dynamo.NewQuoteRepo(client.DB)
		formulaRepo = dynamo.NewFormulaRepo(client.DB)
		couponRepo = dynamo.NewCouponRepo(client.DB)
		pinger = client

	default:
		log.Error("unknown DB_TYPE", "db_type", cfg.DBType)
		os.Exit(1)
	}

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
		couponRepo = postgres.NewCouponRepo(db)

	case "mongo":
		if mongoClient == nil {
			log.Error("COUPON_STORE=mongo requires DB_TYPE=mongo")
			os.Exit(1)
		}
		couponRepo = mongo.NewCouponRepo(mongoClient.DB, opTimeout)

	case "dynamodb":
		if couponRepo == nil {
			log.Error("COUPON_STORE=dynamodb requires DB_TYPE=dynamodb")
			os.Exit(1)
		}

	default:
		log.Error("unknown COUPON_STORE", "coupon_store", cfg.CouponStore)
		os.Exit(1)
	}

	reviewCache, err := rediscache.New(rediscache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Error("failed to connect to Redis", "err", err)
		os.Exit(1)
	}
	defer reviewCache.Close()

	// ---- Services ----
	quoteSvc := core.NewQuoteService(quoteRepo, formulaRepo)
	promoSvc := core.NewPromoService(couponRepo, quoteRepo)
	checkoutSvc := core.NewCheckoutService(quoteRepo, validity)

	// ---- Workers ----
	sweeper := jobs.NewExpiryWorker(quoteRepo, validity,
		time.Duration(cfg.SweepIntervalSec)*time.Second, log)
	go sweeper.Start(ctx)

	// ---- Router ----
	r := chi.NewRouter()

	rl := middleware.NewRateLimiter(cfg.RateLimitRPM, time.Minute)
	rl.StartWithContext(ctx)

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(time.Duration(cfg.HTTPRequestTimeoutSec) * time.Second))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(rl.Middleware)
	r.Use(middleware.SimpleAPIKey(cfg.APIKey))
	r.Use(middleware.LimitRequestBody(middleware.MaxBodySize))

	r.Mount("/", health.New(log, pinger, 2*time.Second))
	r.Mount("/api/v1", transporthttp.NewRouter(transporthttp.Deps{
		Mounts: []handlers.Mountable{
			handlers.NewSettingsHandler(quoteSvc, log),
			handlers.NewQuoteHandler(quoteSvc, promoSvc, checkoutSvc, log),
			handlers.NewCouponHandler(promoSvc, log),
			handlers.NewReviewHandler(reviewCache, validity, log),
		},
	}))

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTPReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTPWriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(cfg.HTTPIdleTimeoutSec) * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server failed", "err", err)
		os.Exit(1)
	}
}
