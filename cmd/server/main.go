package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	admissionconfig "paygate/internal/admission/config"
	admissionmetrics "paygate/internal/admission/metrics"
	"paygate/internal/admission/reputation"
	admission "paygate/internal/admission/service"
	"paygate/internal/admission/store"
	"paygate/internal/checkout/handler"
	"paygate/internal/checkout/processor"
	checkout "paygate/internal/checkout/service"
	"paygate/internal/checkout/tracer"
	"paygate/internal/platform/config"
	"paygate/internal/platform/logger"
	"paygate/internal/platform/middleware"
	"paygate/internal/platform/redis"
	"paygate/pkg/platform/httputil"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing paygate",
		"addr", cfg.Addr,
		"redis_configured", cfg.Redis.URL != "",
		"stripe_configured", cfg.StripeSecretKey != "",
	)

	// Counter store: Redis when configured, so limits hold across instances;
	// otherwise the in-memory reference store (soft deterrent only).
	var counters admission.CounterStore = store.NewInMemoryCounterStore()
	storeName := "memory"
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		counters = store.NewRedisCounterStore(redisClient.Client)
		storeName = "redis"
		defer redisClient.Close()

		go func() {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for range ticker.C {
				redisClient.RecordPoolStats()
			}
		}()
	}

	metrics := admissionmetrics.New()
	admissionSvc, err := admission.New(counters,
		admission.WithLogger(log),
		admission.WithMetrics(metrics),
		admission.WithStoreName(storeName),
		admission.WithConfig(&admissionconfig.Config{
			EmailMaxAttempts: cfg.Admission.EmailMaxAttempts,
			IPMaxAttempts:    cfg.Admission.IPMaxAttempts,
			Window:           cfg.Admission.Window,
		}),
	)
	if err != nil {
		log.Error("admission service init failed", "error", err)
		os.Exit(1)
	}

	// A missing Stripe key is surfaced per-request as a configuration error
	// rather than crashing, matching serverless deployments where the handler
	// must answer even when misconfigured.
	var intents checkout.IntentCreator
	if cfg.StripeSecretKey != "" {
		client, err := processor.New(cfg.StripeSecretKey)
		if err != nil {
			log.Error("stripe client init failed", "error", err)
			os.Exit(1)
		}
		intents = client
	} else {
		log.Error("STRIPE_SECRET_KEY is not set; submissions will fail with a configuration error")
	}

	checkoutSvc, err := checkout.New(admissionSvc, intents,
		checkout.WithLogger(log),
		checkout.WithReputation(reputation.New()),
		checkout.WithMetrics(metrics),
		checkout.WithTracer(tracer.NewOTel()),
	)
	if err != nil {
		log.Error("checkout service init failed", "error", err)
		os.Exit(1)
	}

	router := newRouter(cfg, handler.New(checkoutSvc, log), log)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// newRouter wires the public endpoints with the middleware stack.
func newRouter(cfg config.Server, h *handler.Handler, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Metadata(&middleware.MetadataConfig{ForwardedIPHeader: cfg.ForwardedIPHeader}))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.CORS)

	// Non-POST/OPTIONS methods get the JSON 405 envelope.
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteMethodNotAllowed(w)
	})

	h.Register(r)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
