package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"EquityScreener/internal/alert"
	"EquityScreener/internal/collector"
	"EquityScreener/internal/config"
	"EquityScreener/internal/metrics"
	"EquityScreener/internal/notifier"
	"EquityScreener/internal/recorder"
	"EquityScreener/internal/scheduler"
	"EquityScreener/internal/screen"
	"EquityScreener/internal/universe"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] EquityScreener starting...")

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
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	hours, err := scheduler.ParseMarketHours(loc, cfg.Schedule.MarketOpen, cfg.Schedule.MarketClose)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	m := metrics.New()

	// Init providers
	var (
		bars  collector.BarProvider
		funds collector.FundamentalsProvider
	)
	switch cfg.DataSource.Provider {
	case "mock":
		mock := &collector.MockFetcher{}
		bars, funds = mock, mock
	default:
		yahoo := collector.NewYahooFetcher(cfg.Proxy, loc)
		yahoo.BaseURL = cfg.DataSource.YahooBaseURL
		bars, funds = yahoo, yahoo
		if cfg.DataSource.UseScreener {
			sf := collector.NewScreenerFetcher(cfg.Proxy)
			sf.BaseURL = cfg.DataSource.ScreenerBaseURL
			funds = collector.Merged{sf, yahoo}
		}
		limited := collector.NewRateLimited(bars, funds, cfg.DataSource.RequestsPerSecond, 1)
		bars, funds = limited.Bars(), limited.Fundamentals()
	}
	log.Printf("[INFO] data source: %s, fundamentals: %s", bars.Name(), funds.Name())

	// Init collector
	col := collector.NewCollector(bars, funds, cfg.DataSource.Retry, cfg.DataSource.LookbackDays)
	col.Metrics = m

	runner := &screen.Runner{
		Source:   col,
		Params:   cfg.Screen,
		Workers:  cfg.Run.Workers,
		Deadline: cfg.Run.Deadline,
		Metrics:  m,
	}

	// Init alert state
	store, err := alert.NewStore(cfg.Alerts.StateFile)
	if err != nil {
		log.Fatalf("[FATAL] init alert state: %v", err)
	}

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Metrics.Addr != "" {
		go m.Serve(ctx, cfg.Metrics.Addr)
	}

	// Init scheduler
	q := universe.NewQuarantine(cfg.Universe.BadSymbolsPath, cfg.Universe.RetryAfterDays)
	sched := scheduler.NewScheduler(ctx, runner, cfg.Universe.Path, q, store, tn, rec, hours)
	sched.ReportURL = cfg.Alerts.ReportURL
	if err := sched.RegisterAll(cfg.Schedule.ScanCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing scan now")
		go func() {
			if _, err := sched.RunNow(ctx, scheduler.SourceStartup); err != nil {
				log.Printf("[ERROR] startup scan: %v", err)
			}
		}()
	}

	log.Println("[INFO] EquityScreener is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] EquityScreener stopped")
}
