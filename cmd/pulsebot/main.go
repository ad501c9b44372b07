package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PabloGalante/pulsebot/internal/adapters/discord"
	httpadapter "github.com/PabloGalante/pulsebot/internal/adapters/http"
	"github.com/PabloGalante/pulsebot/internal/adapters/llm"
	"github.com/PabloGalante/pulsebot/internal/adapters/notify"
	memstore "github.com/PabloGalante/pulsebot/internal/adapters/storage/memory"
	"github.com/PabloGalante/pulsebot/internal/app/analysis"
	"github.com/PabloGalante/pulsebot/internal/app/feedback"
	"github.com/PabloGalante/pulsebot/internal/app/schedule"
	"github.com/PabloGalante/pulsebot/internal/config"
	"github.com/PabloGalante/pulsebot/internal/domain"
	"github.com/PabloGalante/pulsebot/internal/observability"
)

func main() {
	ctx := context.Background()
	log := observability.Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// LLM: mock for local development, Gemini otherwise.
	var llmClient domain.LLMClient
	if cfg.UseMockLLM {
		log.Info("using mock LLM client")
		llmClient = llm.NewMockLLM()
	} else {
		log.Info("using Gemini LLM client", "project", cfg.GCPProjectID, "model", cfg.ModelName)
		llmClient, err = llm.NewGeminiClient(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.ModelName)
		if err != nil {
			log.Error("failed to initialize Gemini client", "error", err)
			os.Exit(1)
		}
	}

	// Delivery: discord gateway or plain log output.
	var notifier domain.Notifier
	switch cfg.Mode {
	case config.ModeDiscord:
		log.Info("using discord notifier")
		dn, err := discord.NewNotifier(cfg.DiscordBotToken)
		if err != nil {
			log.Error("failed to create discord notifier", "error", err)
			os.Exit(1)
		}
		if err := dn.Open(); err != nil {
			log.Error("failed to open discord session", "error", err)
			os.Exit(1)
		}
		defer dn.Close()
		notifier = dn
	default:
		log.Info("using log notifier")
		notifier = notify.NewLogNotifier()
	}

	store := memstore.NewSessionStore(cfg.MaxConcurrentSessions, cfg.SessionMaxAge, cfg.ReminderOffset)
	timer := schedule.NewScheduler()
	defer timer.Stop()

	// Hourly backstop sweep for sessions whose timers were lost.
	sweepTicker := time.NewTicker(time.Hour)
	defer sweepTicker.Stop()
	go func() {
		for range sweepTicker.C {
			store.SweepExpired(cfg.SessionMaxAge)
		}
	}()

	svc := feedback.NewService(store, timer, notifier, analysis.NewPipeline(llmClient), feedback.Config{
		LowResponseThreshold: cfg.LowResponseThreshold,
		AnalysisTimeout:      cfg.AnalysisTimeout,
	})

	handler := httpadapter.NewServer(svc, httpadapter.Options{
		DefaultDuration: time.Duration(cfg.DefaultSessionMinutes) * time.Minute,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		log.Info("pulsebot listening", "port", cfg.Port, "mode", cfg.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
}
