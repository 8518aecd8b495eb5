package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"PrismTracker/internal/capacity"
	"PrismTracker/internal/config"
	"PrismTracker/internal/feed"
	"PrismTracker/internal/gate"
	"PrismTracker/internal/history"
	"PrismTracker/internal/intake"
	"PrismTracker/internal/ledger"
	"PrismTracker/internal/notifier"
	"PrismTracker/internal/processor"
	"PrismTracker/internal/scheduler"
	"PrismTracker/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] PrismTracker starting...")

	// .env is optional; real deployments use environment variables directly
	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] loaded .env")
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init store
	var st store.Store
	if cfg.Database.SQLitePath != "" {
		ss, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite store failed, using in-memory store: %v", err)
			st = store.NewMemoryStore()
		} else {
			st = ss
			defer ss.Close()
		}
	} else {
		st = store.NewMemoryStore()
	}

	// Init price feed
	var fetcher feed.Fetcher
	if cfg.Feed.Source == "fixed" {
		fetcher = &feed.FixedFetcher{}
	} else {
		fetcher = feed.NewYahooFetcher(cfg.Proxy, cfg.Feed.KRXSuffix)
	}
	log.Printf("[INFO] price feed: %s", fetcher.Name())

	// Init engine components
	cm := capacity.NewManager(cfg.Portfolio.MaxSlots)
	book, err := ledger.NewLedger(st, cm)
	if err != nil {
		log.Fatalf("[FATAL] init ledger: %v", err)
	}
	agg := history.NewAggregator(st)
	admission := gate.New(book, cm, st)
	producer := intake.NewDirProducer(cfg.Intake.JudgmentDir)
	candidates := intake.NewDirSource(cfg.Intake.CandidateDir)
	proc := processor.New(book, st, fetcher, producer, nil)

	// Init notifier
	var sink scheduler.Sender
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sink = tn
	} else {
		log.Println("[WARN] no telegram token configured, notifications go to the log")
		sink = notifier.NoopNotifier{}
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, proc, admission, book, agg, candidates, fetcher, sink,
		cfg.Portfolio.TotalCapital, cfg.Portfolio.MinBuyScore, nil)
	if err := sched.RegisterAll(cfg.Schedule.MorningCron, cfg.Schedule.AfternoonCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing a cycle now")
		go sched.RunCycleNow()
	}

	log.Println("[INFO] PrismTracker is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] PrismTracker stopped")
}
