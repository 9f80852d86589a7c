package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration surface for ff-alpha-core,
// covering the simulation, alpha, runtime (as-of/leakage), analysis,
// server and audit sections.
type Config struct {
	// Server
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`
	ReadTimeoutSeconds  int  `mapstructure:"READ_TIMEOUT_SECONDS"`
	WriteTimeoutSeconds int  `mapstructure:"WRITE_TIMEOUT_SECONDS"`

	// Audit persistence
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`
	CacheRedisAddr string `mapstructure:"CACHE_REDIS_ADDR"`

	// Simulation (C1, C6)
	NumSimulations     int     `mapstructure:"NUM_SIMULATIONS"`
	Seed               int64   `mapstructure:"SEED"`
	UseGMM             bool    `mapstructure:"USE_GMM"`
	CacheDir           string  `mapstructure:"CACHE_DIR"`
	CacheTTLHours      int     `mapstructure:"CACHE_TTL_HOURS"`
	RatingsBlend       float64 `mapstructure:"RATINGS_BLEND"`
	ScoreVarianceFloor float64 `mapstructure:"SCORE_VARIANCE_FLOOR"`
	Workers            int     `mapstructure:"WORKERS"`

	// Alpha (C3, C4)
	AlphaMode             bool               `mapstructure:"ALPHA_MODE"`
	AlphaBlend            float64            `mapstructure:"ALPHA_BLEND"`
	ShrinkageK            float64            `mapstructure:"SHRINKAGE_K"`
	RecentWeeks           int                `mapstructure:"RECENT_WEEKS"`
	InjuryPenalties       map[string]float64 `mapstructure:"INJURY_PENALTIES"`
	SignalWeights         map[string]float64 `mapstructure:"SIGNAL_WEIGHTS"`
	SignalCaps            map[string]float64 `mapstructure:"SIGNAL_CAPS"`
	TotalCap              float64            `mapstructure:"TOTAL_CAP"`
	EnableExtendedSignals bool               `mapstructure:"ENABLE_EXTENDED_SIGNALS"`

	// Runtime / as-of (C2)
	TimeoutSeconds                    float64          `mapstructure:"TIMEOUT_SECONDS"`
	Retries                           int              `mapstructure:"RETRIES"`
	CacheTTLSeconds                   int              `mapstructure:"CACHE_TTL_SECONDS"`
	AsOfUTC                           *time.Time       `mapstructure:"AS_OF_UTC"`
	AsOfDate                          string           `mapstructure:"AS_OF_DATE"`
	AsOfMode                          string           `mapstructure:"AS_OF_MODE"`
	AsOfMissingPolicy                 string           `mapstructure:"AS_OF_MISSING_POLICY"`
	AsOfPublicationLagSecondsByFeed   map[string]int   `mapstructure:"AS_OF_PUBLICATION_LAG_SECONDS_BY_FEED"`
	AsOfMaxStalenessSecondsByFeed     map[string]int   `mapstructure:"AS_OF_MAX_STALENESS_SECONDS_BY_FEED"`
	AsOfSnapshotRoot                  string           `mapstructure:"AS_OF_SNAPSHOT_ROOT"`
	AsOfSnapshotRetentionDays         int              `mapstructure:"AS_OF_SNAPSHOT_RETENTION_DAYS"`

	// Analysis (C7)
	MinAdvantage             float64  `mapstructure:"MIN_ADVANTAGE"`
	MaxTradesPerTeam         int      `mapstructure:"MAX_TRADES_PER_TEAM"`
	MaxTotalOpportunities    int      `mapstructure:"MAX_TOTAL_OPPORTUNITIES"`
	MinAcceptanceProbability float64  `mapstructure:"MIN_ACCEPTANCE_PROBABILITY"`
	TopNRecommendations      int      `mapstructure:"TOP_N_RECOMMENDATIONS"`
	PositionsFilter          []string `mapstructure:"POSITIONS_FILTER"`
	ExcludeInjured           bool     `mapstructure:"EXCLUDE_INJURED"`
	UseROS                   bool     `mapstructure:"USE_ROS"`

	// Backtest scheduling (C8)
	BacktestCronExpr    string `mapstructure:"BACKTEST_CRON_EXPR"`
	EnableBacktestCron  bool   `mapstructure:"ENABLE_BACKTEST_CRON"`
}

// LoadConfig reads configuration from environment variables (and an
// optional .env file) with the defaults below, then validates the
// as-of mutual-exclusion and non-negative-duration invariants.
func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("READ_TIMEOUT_SECONDS", 15)
	viper.SetDefault("WRITE_TIMEOUT_SECONDS", 15)

	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("SQLITE_PATH", "data/audit.db")
	viper.SetDefault("CACHE_REDIS_ADDR", "")

	viper.SetDefault("NUM_SIMULATIONS", 10000)
	viper.SetDefault("SEED", 0)
	viper.SetDefault("USE_GMM", true)
	viper.SetDefault("CACHE_DIR", "data/player_cache")
	viper.SetDefault("CACHE_TTL_HOURS", 24)
	viper.SetDefault("RATINGS_BLEND", 0.5)
	viper.SetDefault("SCORE_VARIANCE_FLOOR", 4.0)
	viper.SetDefault("WORKERS", 4)

	viper.SetDefault("ALPHA_MODE", true)
	viper.SetDefault("ALPHA_BLEND", 0.4)
	viper.SetDefault("SHRINKAGE_K", 3.0)
	viper.SetDefault("RECENT_WEEKS", 3)
	viper.SetDefault("TOTAL_CAP", 6.0)
	viper.SetDefault("ENABLE_EXTENDED_SIGNALS", false)

	viper.SetDefault("TIMEOUT_SECONDS", 2.0)
	viper.SetDefault("RETRIES", 2)
	viper.SetDefault("CACHE_TTL_SECONDS", 900)
	viper.SetDefault("AS_OF_DATE", "")
	viper.SetDefault("AS_OF_MODE", "backward_publish_time")
	viper.SetDefault("AS_OF_MISSING_POLICY", "degrade_warn")
	viper.SetDefault("AS_OF_SNAPSHOT_ROOT", "data/snapshots")
	viper.SetDefault("AS_OF_SNAPSHOT_RETENTION_DAYS", 120)

	viper.SetDefault("MIN_ADVANTAGE", 3.0)
	viper.SetDefault("MAX_TRADES_PER_TEAM", 2)
	viper.SetDefault("MAX_TOTAL_OPPORTUNITIES", 10)
	viper.SetDefault("MIN_ACCEPTANCE_PROBABILITY", 0.30)
	viper.SetDefault("TOP_N_RECOMMENDATIONS", 10)
	viper.SetDefault("EXCLUDE_INJURED", true)
	viper.SetDefault("USE_ROS", true)

	viper.SetDefault("BACKTEST_CRON_EXPR", "0 6 * * 2")
	viper.SetDefault("ENABLE_BACKTEST_CRON", false)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		cfg.CorsOrigins = strings.Split(corsStr, ",")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate enforces the startup-time ConfigConflict invariants from the
// as-of / leakage-guard contract.
func (c *Config) validate() error {
	if c.AsOfUTC != nil && c.AsOfDate != "" {
		return fmt.Errorf("config conflict: as_of_utc and as_of_date are mutually exclusive")
	}
	if c.AsOfSnapshotRetentionDays < 0 {
		return fmt.Errorf("config conflict: as_of_snapshot_retention_days must be non-negative")
	}
	for feed, lag := range c.AsOfPublicationLagSecondsByFeed {
		if lag < 0 {
			return fmt.Errorf("config conflict: negative publication lag for feed %q", feed)
		}
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
