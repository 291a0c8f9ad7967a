package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Abdelhameed97/bookshare-sub001/internal/backend"
	"github.com/Abdelhameed97/bookshare-sub001/internal/cart"
	"github.com/Abdelhameed97/bookshare-sub001/internal/coupon"
	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
	"github.com/Abdelhameed97/bookshare-sub001/internal/events"
	"github.com/Abdelhameed97/bookshare-sub001/internal/httpapi"
	"github.com/Abdelhameed97/bookshare-sub001/internal/ledger"
	"github.com/Abdelhameed97/bookshare-sub001/internal/money"
	"github.com/Abdelhameed97/bookshare-sub001/internal/order"
	"github.com/Abdelhameed97/bookshare-sub001/internal/payment"
	"github.com/Abdelhameed97/bookshare-sub001/internal/payment/stripe"
	"github.com/Abdelhameed97/bookshare-sub001/internal/resume"
	"github.com/Abdelhameed97/bookshare-sub001/internal/session"
)

type Config struct {
	HTTPPort       string
	BackendBaseURL string
	UserID         string
	UserToken      string

	RedisAddr     string
	RedisPassword string

	KafkaBrokers []string

	DBPath         string
	MigrationsPath string

	AttemptRetention     time.Duration
	AttemptPurgeInterval time.Duration

	StripeAPIKey  string
	StripeBaseURL string

	FreeShippingThreshold float64
	FlatShippingFee       float64

	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

func loadConfig() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		BackendBaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:3000/api"),
		UserID:         getEnv("USER_ID", ""),
		UserToken:      getEnv("USER_TOKEN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		KafkaBrokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),

		DBPath:         getEnv("DB_PATH", "./checkout.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./internal/resume/migrations"),

		AttemptRetention:     24 * time.Hour,
		AttemptPurgeInterval: time.Hour,

		StripeAPIKey:  getEnv("STRIPE_API_KEY", ""),
		StripeBaseURL: getEnv("STRIPE_BASE_URL", ""),

		FreeShippingThreshold: 100,
		FlatShippingFee:       5,

		ShutdownTimeout: 10 * time.Second,
		RequestTimeout:  30 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	sess := session.Init(cfg.UserID, cfg.UserToken)
	api := backend.New(cfg.BackendBaseURL, sess, logger)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	attempts, err := resume.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open attempt store", zap.Error(err))
	}
	defer attempts.Close()

	if err := attempts.RunMigrations(cfg.MigrationsPath); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("migrations completed")

	purgeCtx, stopPurge := context.WithCancel(context.Background())
	defer stopPurge()
	go attempts.PurgeLoop(purgeCtx, cfg.AttemptPurgeInterval, cfg.AttemptRetention, logger)

	kafkaWriter := events.NewKafkaWriter(cfg.KafkaBrokers...)
	defer kafkaWriter.Close()
	publisher := events.NewPublisher(kafkaWriter, logger)

	store := cart.NewStore(api, cart.NewRedisCache(redisClient), logger)
	engine := coupon.NewEngine(api, logger)
	assembler := order.NewAssembler(api, logger)
	orch := payment.NewOrchestrator(api, attempts, publisher, logger)
	view := ledger.NewView(api, logger)

	var stripeOpts []stripe.Option
	if cfg.StripeBaseURL != "" {
		stripeOpts = append(stripeOpts, stripe.WithBaseURL(cfg.StripeBaseURL))
	}
	confirmer := stripe.NewConfirmer(cfg.StripeAPIKey, stripeOpts...)

	adapters := map[domain.PaymentMethod]payment.ProviderAdapter{
		domain.PaymentMethodCard:   payment.NewCardAdapter(api, confirmer),
		domain.PaymentMethodWallet: payment.NewWalletAdapter(api),
		domain.PaymentMethodCash:   payment.NewCashAdapter(api),
	}

	shipping := order.ThresholdShipping{
		Threshold: money.FromFloat(cfg.FreeShippingThreshold),
		FlatFee:   money.FromFloat(cfg.FlatShippingFee),
	}

	router := httpapi.NewRouter(
		sess,
		httpapi.NewCartHandler(store, engine, logger),
		httpapi.NewCheckoutHandler(store, engine, assembler, api, orch, adapters, shipping, logger),
		httpapi.NewLedgerHandler(view, logger),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "checkout"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("checkout service starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	sess.Teardown()
	logger.Info("server exited")
}
