package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"vidqueue_user" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"vidqueue_password" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"vidqueue" description:"Database name"`

	// Application configuration
	Port        string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl     string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://vidqueue.example.com)"`
	WorkerCount int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for alternative search"`

	// Integrations
	BotToken       string `long:"bot-token" env:"BOT_TOKEN" description:"Telegram bot token (required)" required:"true"`
	VKServiceToken string `long:"vk-service-token" env:"VK_SERVICE_TOKEN" description:"VK service access token for the video.get API (optional, HTML fallback is used when absent)"`
	RedisAddr      string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the metadata cache (optional, in-memory cache is used when absent)"`
	MatcherFile    string `long:"matcher-file" env:"MATCHER_FILE" description:"Path to a YAML file overriding alternative-matching thresholds (optional)"`
	SearchEndpoint string `long:"search-endpoint" env:"SEARCH_ENDPOINT" default:"https://html.duckduckgo.com/html/" description:"HTML search endpoint used for alternative discovery"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"vidqueue/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/Moscow)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBHost:         raw.DBHost,
		DBPort:         raw.DBPort,
		DBUser:         raw.DBUser,
		DBPassword:     raw.DBPassword,
		DBName:         raw.DBName,
		Port:           raw.Port,
		BaseUrl:        raw.BaseUrl,
		WorkerCount:    raw.WorkerCount,
		BotToken:       raw.BotToken,
		VKServiceToken: raw.VKServiceToken,
		RedisAddr:      raw.RedisAddr,
		MatcherFile:    raw.MatcherFile,
		SearchEndpoint: raw.SearchEndpoint,
		UserAgent:      raw.UserAgent,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(c *Cfg) {
	globalCfg = c
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
