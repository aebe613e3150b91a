package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/verbadiem/internal/ai"
	"github.com/example/verbadiem/internal/api"
	"github.com/example/verbadiem/internal/bot"
	"github.com/example/verbadiem/internal/config"
	"github.com/example/verbadiem/internal/excel"
	"github.com/example/verbadiem/internal/gamification"
	"github.com/example/verbadiem/internal/quiz"
	"github.com/example/verbadiem/internal/scheduler"
	"github.com/example/verbadiem/internal/session"
	"github.com/example/verbadiem/internal/store"
)

func main() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	backend, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer backend.Close()

	var generator ai.Generator
	client, err := ai.New(cfg)
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		log.Println("GEMINI_API_KEY is not set, lessons use the offline deck only")
	case err != nil:
		log.Fatalf("Failed to create content client: %v", err)
	default:
		generator = client
	}

	deck := quiz.NewDeck()
	if cfg.OfflineDeckPath != "" {
		importCfg := excel.DefaultImportConfig()
		importCfg.FilePath = cfg.OfflineDeckPath
		result, err := excel.ImportWords(importCfg)
		if err != nil {
			log.Printf("Failed to import offline deck: %v", err)
		} else {
			deck = quiz.NewDeck(result.Words...)
			log.Printf("Imported %d offline words (%d skipped)", len(result.Words), result.Skipped)
		}
	}

	engine := gamification.NewEngine(cfg.Location)
	hub := api.NewHub(nil)
	go hub.Run()

	botConfig := bot.DefaultConfig()
	botConfig.AdminUserIDs = cfg.AdminUserIDs

	var b *bot.Bot
	registry := session.NewRegistry(backend, session.Options{Engine: engine}, func(profileID int64, opts *session.Options) {
		b.ConfigureSession(profileID, opts)
	})
	defer registry.Close()

	b, err = bot.New(bot.Options{
		Token:     cfg.TelegramToken,
		Config:    botConfig,
		Registry:  registry,
		Generator: generator,
		Deck:      deck,
		Publisher: hub,
	})
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	var sched *scheduler.Scheduler
	if cfg.SchedulerEnable {
		sched = scheduler.New(registry, engine, b, cfg.ReminderTime, nil)
		if err := sched.Start(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		log.Printf("Streak reminders scheduled daily at %s", cfg.ReminderTime)
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(api.NewHandler(registry, hub, cfg.APITokenHash, nil)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("HTTP API listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	done := make(chan struct{})

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v\n", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if sched != nil {
			sched.Stop()
		}
		b.Stop()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error during HTTP shutdown: %v", err)
		}
		hub.Stop()

		close(done)
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	go func() {
		if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Bot error: %v", err)
			sigChan <- syscall.SIGTERM
		}
	}()

	<-done
	log.Println("Bot stopped successfully")
}
