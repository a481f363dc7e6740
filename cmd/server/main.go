package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"attesta/internal/audit"
	"attesta/internal/card"
	identityhandler "attesta/internal/identity/handler"
	identityservice "attesta/internal/identity/service"
	identitystore "attesta/internal/identity/store"
	"attesta/internal/platform/config"
	"attesta/internal/platform/health"
	"attesta/internal/platform/httpserver"
	"attesta/internal/platform/logger"
	"attesta/internal/platform/metrics"
	"attesta/internal/purpose"
	"attesta/internal/scan"
	scantracer "attesta/internal/scan/tracer"
	"attesta/internal/session"
	"attesta/internal/token"
	httptransport "attesta/internal/transport/http"
	verificationhandler "attesta/internal/verification/handler"
	verificationservice "attesta/internal/verification/service"
	verificationstore "attesta/internal/verification/store"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing attesta authority",
		"addr", cfg.Addr,
		"base_url", cfg.BaseURL,
		"environment", cfg.Environment,
	)

	m := metrics.New()
	auditor := audit.NewPublisher(audit.NewInMemoryStore(), audit.WithPublisherLogger(log))
	defer auditor.Close()

	identitySvc := identityservice.NewService(
		identitystore.New(),
		identityservice.NewDigiLockerAttestor(),
		auditor,
		log,
		identityservice.WithMetrics(m),
	)
	verificationSvc := verificationservice.NewService(
		verificationstore.New(),
		identitySvc,
		auditor,
		log,
		verificationservice.WithMetrics(m),
		verificationservice.WithRequestTTL(cfg.RequestTTL),
	)
	sessionSvc := session.NewService(
		session.NewCredentialStore(),
		session.NewTokenService(cfg.JWTSigningKey, cfg.BaseURL, cfg.SessionTTL),
		log,
		session.WithMetrics(m),
	)

	codec := token.NewCodec(cfg.BaseURL)
	healthHandler := health.New(cfg.Environment)
	healthHandler.RegisterCheck("purpose_catalog", func() error {
		if len(purpose.List()) == 0 {
			return errors.New("purpose catalog is empty")
		}
		return nil
	})
	handlers := httptransport.Handlers{
		Health:       healthHandler,
		Session:      session.NewHandler(sessionSvc, log),
		Identity:     identityhandler.New(identitySvc, log),
		Verification: verificationhandler.New(verificationSvc, identitySvc, log, m),
		Card:         card.NewHandler(verificationSvc, codec, card.NewRenderer(codec), log),
		Scan: scan.NewHandler(verificationSvc, log,
			scan.WithHandlerTracer(scantracer.NewOTel()),
			scan.WithHandlerMetrics(m),
		),
		Audit:       audit.NewHandler(auditor, log),
		SessionAuth: session.Middleware(sessionSvc),
	}
	router := httptransport.NewRouter(handlers, log)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
