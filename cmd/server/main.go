package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/helix-ai/backend/internal/analytics"
	"github.com/helix-ai/backend/internal/api"
	"github.com/helix-ai/backend/internal/auth"
	"github.com/helix-ai/backend/internal/domain/clinicalcase"
	"github.com/helix-ai/backend/internal/domain/question"
	"github.com/helix-ai/backend/internal/email"
	"github.com/helix-ai/backend/internal/grader"
	"github.com/helix-ai/backend/internal/infrastructure/config"
	"github.com/helix-ai/backend/internal/jobs"
	"github.com/helix-ai/backend/internal/scheduler"
	"github.com/helix-ai/backend/internal/service"
	"github.com/helix-ai/backend/internal/store"
	"github.com/helix-ai/backend/internal/tutor"

	_ "github.com/helix-ai/backend/docs" // generated swagger docs
)

// @title           Helix.AI API
// @version         1.0
// @description     Tutoria de biologia molecular para medicina: questões e casos clínicos corrigidos por IA, progresso gamificado e painel do professor.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// ── Dependencies ────────────────────────────────────────────────
	var db store.Store
	db, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		// Read-only volumes cannot host a SQLite database; the JSON
		// file store keeps a small class going.
		logger.Warn("sqlite unavailable, falling back to json file store", "error", err)
		db, err = store.NewJSONFile(cfg.DBPath + ".json")
		if err != nil {
			logger.Error("failed to open store", "error", err)
			os.Exit(1)
		}
	}
	defer db.Close()

	questions := question.Default()
	cases := clinicalcase.Default()

	keys := grader.NewKeyPool(cfg.LLMKeys)
	dispatcher := grader.NewDispatcher(
		grader.NewRubricGrader(),
		grader.NewAIGrader(cfg.LLMURL, cfg.LLMModel, keys, logger),
	)

	authSvc := auth.NewService(db, cfg.JWTSecret, cfg.TokenTTL, cfg.StudentDomain, cfg.ProfessorDomain, cfg.AdminEmails)
	submissions := service.NewSubmissionService(db, dispatcher, questions, cases, logger)
	aggregator := analytics.NewAggregator(questions, cases)
	tutorSvc := tutor.New(cfg.LLMURL, cfg.LLMModel, keys, logger)

	// ── Background jobs and weekly digest ───────────────────────────
	var digest *scheduler.Scheduler
	sender := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, logger)
	if sender.Configured() {
		manager := jobs.NewManager(cfg.RedisAddr, sender, logger)
		go func() {
			if err := manager.Start(); err != nil {
				logger.Error("job worker stopped", "error", err)
			}
		}()
		defer manager.Stop()

		digest = scheduler.New(db, aggregator, manager, logger)
		if cfg.DigestCron != "" {
			if err := digest.Start(cfg.DigestCron); err != nil {
				logger.Error("failed to start digest schedule", "error", err)
				os.Exit(1)
			}
			defer digest.Stop()
		}
	} else {
		logger.Info("smtp not configured, weekly digest disabled")
	}

	handler := api.NewHandler(db, authSvc, submissions, aggregator, tutorSvc, digest, questions, cases, logger)

	// ── Routes ──────────────────────────────────────────────────────
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	handler.RegisterRoutes(mux)

	// Swagger UI served at /swagger/
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// ── Middleware chain: Logging → CORS → mux ──────────────────────
	logged := api.Logging(logger)(api.CORS(mux))

	// ── Server ──────────────────────────────────────────────────────
	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           logged,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// No write timeout: tutor chat streams can outlive any fixed
		// deadline. Per-request limits come from the LLM client.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
	}()

	logger.Info("starting server", "address", cfg.ServerAddress)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed to start", "error", err)
		os.Exit(1)
	}
}
