package config

import (
	"fmt"
	"os"
	"time"

	"EquityScreener/internal/collector"
	"EquityScreener/internal/fundamental"
	"EquityScreener/internal/screen"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider          string                `yaml:"provider"` // yahoo or mock
		YahooBaseURL      string                `yaml:"yahoo_base_url"`
		ScreenerBaseURL   string                `yaml:"screener_base_url"`
		UseScreener       bool                  `yaml:"use_screener"`
		LookbackDays      int                   `yaml:"lookback_days"`
		RequestsPerSecond float64               `yaml:"requests_per_second"`
		Retry             collector.RetryPolicy `yaml:"retry"`
	} `yaml:"data_source"`
	Universe struct {
		Path           string `yaml:"path"`
		BadSymbolsPath string `yaml:"bad_symbols_path"`
		RetryAfterDays int    `yaml:"retry_after_days"`
	} `yaml:"universe"`
	Schedule struct {
		ScanCron    string `yaml:"scan_cron"`
		Timezone    string `yaml:"timezone"`
		MarketOpen  string `yaml:"market_open"`
		MarketClose string `yaml:"market_close"`
	} `yaml:"schedule"`
	Run struct {
		Workers  int           `yaml:"workers"`
		Deadline time.Duration `yaml:"deadline"`
	} `yaml:"run"`
	Screen screen.Params `yaml:"screen"`
	Alerts struct {
		StateFile string `yaml:"state_file"`
		ReportURL string `yaml:"report_url"`
	} `yaml:"alerts"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// envOverrides maps the scanner environment variables onto Config.
type envOverrides struct {
	TelegramToken     string   `envconfig:"TELEGRAM_TOKEN"`
	TelegramBotToken  string   `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID    string   `envconfig:"TELEGRAM_CHAT_ID"`
	Proxy             string   `envconfig:"HTTPS_PROXY"`
	SQLitePath        string   `envconfig:"SQLITE_PATH"`
	ScanCron          string   `envconfig:"CRON_SCAN"`
	UniversePath      string   `envconfig:"UNIVERSE_PATH"`
	MetricsAddr       string   `envconfig:"METRICS_ADDR"`
	ReportURL         string   `envconfig:"REPORT_URL"`
	FundamentalsMode  string   `envconfig:"FUNDAMENTALS_MODE"`
	Workers           *int     `envconfig:"SCREEN_WORKERS"`
	MarketCapMinCrore *float64 `envconfig:"MARKETCAP_MIN_CRORE"`
	PEGMax            *float64 `envconfig:"PEG_MAX"`
	DebtEquityMax     *float64 `envconfig:"DEBT_EQUITY_MAX"`
	PromoterMin       *float64 `envconfig:"PROMOTER_MIN_PCT"`
	SalesGrowth3YMin  *float64 `envconfig:"SALES_GROWTH_3Y_MIN"`
	ProfitGrowth5YMin *float64 `envconfig:"PROFIT_GROWTH_5Y_MIN"`
	PledgedMax        *float64 `envconfig:"PLEDGED_MAX_PCT"`
	OPMMin            *float64 `envconfig:"OPM_MIN"`
	PriceToSalesMax   *float64 `envconfig:"PRICE_TO_SALES_MAX"`
	EVToEBITDAMax     *float64 `envconfig:"EV_EBITDA_MAX"`
	ROE5YMin          *float64 `envconfig:"ROE5Y_MIN"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{Screen: screen.DefaultParams()}
	cfg.DataSource.Provider = "yahoo"
	cfg.DataSource.YahooBaseURL = collector.DefaultYahooBaseURL
	cfg.DataSource.ScreenerBaseURL = collector.DefaultScreenerBaseURL
	cfg.DataSource.LookbackDays = 300
	cfg.DataSource.RequestsPerSecond = 2
	cfg.DataSource.Retry = collector.DefaultRetryPolicy()
	cfg.Universe.Path = "universe.csv"
	cfg.Universe.BadSymbolsPath = "data/bad_symbols.txt"
	cfg.Universe.RetryAfterDays = 7
	cfg.Schedule.ScanCron = "0 0 10,12,14 * * 1-5"
	cfg.Schedule.Timezone = "Asia/Kolkata"
	cfg.Schedule.MarketOpen = "09:00"
	cfg.Schedule.MarketClose = "15:30"
	cfg.Run.Workers = 4
	cfg.Run.Deadline = 20 * time.Minute
	cfg.Alerts.StateFile = "data/alert_state.json"
	cfg.Database.SQLitePath = "data/screener.db"
	return cfg
}

// Load reads config from a YAML file over the defaults, then applies
// .env and environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.applyEnv(&env)
	return cfg, nil
}

func (c *Config) applyEnv(env *envOverrides) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&c.Telegram.BotToken, env.TelegramBotToken)
	setString(&c.Telegram.BotToken, env.TelegramToken)
	setString(&c.Telegram.ChatID, env.TelegramChatID)
	setString(&c.Proxy, env.Proxy)
	setString(&c.Database.SQLitePath, env.SQLitePath)
	setString(&c.Schedule.ScanCron, env.ScanCron)
	setString(&c.Universe.Path, env.UniversePath)
	setString(&c.Metrics.Addr, env.MetricsAddr)
	setString(&c.Alerts.ReportURL, env.ReportURL)
	if env.FundamentalsMode != "" {
		c.Screen.Fundamentals.Mode = fundamental.Mode(env.FundamentalsMode)
	}
	if env.Workers != nil {
		c.Run.Workers = *env.Workers
	}

	t := &c.Screen.Fundamentals.Thresholds
	setFloat := func(dst **float64, v *float64) {
		if v != nil {
			*dst = v
		}
	}
	setFloat(&t.MarketCapMinCrore, env.MarketCapMinCrore)
	setFloat(&t.PEGMax, env.PEGMax)
	setFloat(&t.DebtToEquityMax, env.DebtEquityMax)
	setFloat(&t.PromoterMin, env.PromoterMin)
	setFloat(&t.SalesGrowth3YMin, env.SalesGrowth3YMin)
	setFloat(&t.ProfitGrowth5YMin, env.ProfitGrowth5YMin)
	setFloat(&t.PledgedMax, env.PledgedMax)
	setFloat(&t.OPMMin, env.OPMMin)
	setFloat(&t.PriceToSalesMax, env.PriceToSalesMax)
	setFloat(&t.EVToEBITDAMax, env.EVToEBITDAMax)
	setFloat(&t.ROE5YMin, env.ROE5YMin)
}

// Location returns the market time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("schedule.timezone %q: %w", c.Schedule.Timezone, err)
	}
	return loc, nil
}

// Validate checks that all required fields are set and that every
// engine threshold is usable. Any error here must stop the process
// before a run starts.
func (c *Config) Validate() error {
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	default:
		return fmt.Errorf("data_source.provider must be yahoo or mock, got %q", c.DataSource.Provider)
	}
	if c.DataSource.LookbackDays < c.Screen.Periods.SMALong {
		return fmt.Errorf("data_source.lookback_days (%d) must cover screen.sma_long (%d)",
			c.DataSource.LookbackDays, c.Screen.Periods.SMALong)
	}
	if c.DataSource.RequestsPerSecond <= 0 {
		return fmt.Errorf("data_source.requests_per_second must be positive")
	}
	if c.DataSource.Retry.Attempts < 1 {
		return fmt.Errorf("data_source.retry.attempts must be at least 1")
	}
	if c.DataSource.Retry.Timeout <= 0 {
		return fmt.Errorf("data_source.retry.timeout must be positive")
	}
	if c.Universe.Path == "" {
		return fmt.Errorf("universe.path is required")
	}
	if c.Run.Workers < 1 {
		return fmt.Errorf("run.workers must be at least 1")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	open, err := time.Parse("15:04", c.Schedule.MarketOpen)
	if err != nil {
		return fmt.Errorf("schedule.market_open: %w", err)
	}
	closeAt, err := time.Parse("15:04", c.Schedule.MarketClose)
	if err != nil {
		return fmt.Errorf("schedule.market_close: %w", err)
	}
	if !closeAt.After(open) {
		return fmt.Errorf("schedule.market_close must be after market_open")
	}
	return c.Screen.Validate()
}
