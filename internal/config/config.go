package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. Loaded once at startup
// and passed explicitly; components never read the environment themselves.
type Config struct {
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Anthropic   AnthropicConfig   `yaml:"anthropic" mapstructure:"anthropic"`
	YouTube     YouTubeConfig     `yaml:"youtube" mapstructure:"youtube"`
	Reddit      RedditConfig      `yaml:"reddit" mapstructure:"reddit"`
	ProductHunt ProductHuntConfig `yaml:"producthunt" mapstructure:"producthunt"`
	HackerNews  HackerNewsConfig  `yaml:"hackernews" mapstructure:"hackernews"`
	Research    ResearchConfig    `yaml:"research" mapstructure:"research"`
	Scoring     ScoringConfig     `yaml:"scoring" mapstructure:"scoring"`
	Sim         SimConfig         `yaml:"sim" mapstructure:"sim"`
	DemoMode    bool              `yaml:"demo_mode" mapstructure:"demo_mode"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// StoreConfig configures the run-history backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	Model       string `yaml:"model" mapstructure:"model"`
	MaxTokens   int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// YouTubeConfig holds YouTube Data API settings.
type YouTubeConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// RedditConfig holds Reddit API credentials.
type RedditConfig struct {
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
}

// ProductHuntConfig holds Product Hunt API settings.
type ProductHuntConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// HackerNewsConfig holds Algolia HN Search settings. No credentials needed.
type HackerNewsConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ResearchConfig bounds one research fetch.
type ResearchConfig struct {
	MaxPosts           int `yaml:"max_posts" mapstructure:"max_posts"`
	MaxCommentsPerPost int `yaml:"max_comments_per_post" mapstructure:"max_comments_per_post"`
	DaysBack           int `yaml:"days_back" mapstructure:"days_back"`
	TimeoutSecs        int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ScoringConfig holds the prioritization weights. JTBDWeight and RICEWeight
// scale the two stacked 0-100 components of the final score; 1:1 by default.
type ScoringConfig struct {
	JTBDWeight      float64 `yaml:"jtbd_weight" mapstructure:"jtbd_weight"`
	RICEWeight      float64 `yaml:"rice_weight" mapstructure:"rice_weight"`
	TotalPopulation int     `yaml:"total_population" mapstructure:"total_population"`
}

// SimConfig configures the scenario simulator.
type SimConfig struct {
	BaseRisk     float64 `yaml:"base_risk" mapstructure:"base_risk"`
	MaxScenarios int     `yaml:"max_scenarios" mapstructure:"max_scenarios"`
	// CatalogPath optionally points at a yaml frustration-event catalog that
	// replaces the built-in weights, so new domains can register their own
	// events without code changes.
	CatalogPath string `yaml:"catalog_path" mapstructure:"catalog_path"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PRODSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "prodscope.db")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4000)
	v.SetDefault("anthropic.timeout_secs", 30)
	v.SetDefault("youtube.base_url", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("reddit.base_url", "https://oauth.reddit.com")
	v.SetDefault("reddit.user_agent", "prodscope/0.1.0")
	v.SetDefault("producthunt.base_url", "https://api.producthunt.com/v2/api/graphql")
	v.SetDefault("hackernews.base_url", "https://hn.algolia.com/api/v1")
	v.SetDefault("research.max_posts", 20)
	v.SetDefault("research.max_comments_per_post", 5)
	v.SetDefault("research.days_back", 30)
	v.SetDefault("research.timeout_secs", 15)
	v.SetDefault("scoring.jtbd_weight", 1.0)
	v.SetDefault("scoring.rice_weight", 1.0)
	v.SetDefault("scoring.total_population", 50_000_000)
	v.SetDefault("sim.base_risk", 10.0)
	v.SetDefault("sim.max_scenarios", 10)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
