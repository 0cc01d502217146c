package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	App struct {
		Name            string   `mapstructure:"name"`
		Port            string   `mapstructure:"port"`
		LogLevel        string   `mapstructure:"log_level"`
		FrontendOrigins []string `mapstructure:"frontend_origins"`
	} `mapstructure:"app"`
	Database struct {
		Host         string `mapstructure:"host"`
		Port         string `mapstructure:"port"`
		User         string `mapstructure:"user"`
		Password     string `mapstructure:"password"`
		Name         string `mapstructure:"name"`
		Sslmode      string `mapstructure:"sslmode"`
		Timezone     string `mapstructure:"timezone"`
		MaxIdleConns int    `mapstructure:"max_idle_conns"`
		MaxOpenConns int    `mapstructure:"max_open_conns"`
	} `mapstructure:"database"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	JWT struct {
		Secret string        `mapstructure:"secret"`
		TTL    time.Duration `mapstructure:"ttl"`
	} `mapstructure:"jwt"`
	Telegram struct {
		APIBase       string `mapstructure:"api_base"`
		WebhookSecret string `mapstructure:"webhook_secret"`
		// Token is shared by every persona without its own token.
		Token             string `mapstructure:"token"`
		GEMAssist         string `mapstructure:"gemassist_token"`
		GemCyberAssist    string `mapstructure:"gemcyberassist_token"`
		CyberGEMSecure    string `mapstructure:"cybergemsecure_token"`
		RealEstateChannel string `mapstructure:"realestate_token"`
	} `mapstructure:"telegram"`
	Automation struct {
		WebhookURL  string `mapstructure:"webhook_url"`
		NotionURL   string `mapstructure:"notion_url"`
		TrelloURL   string `mapstructure:"trello_url"`
		TypeformURL string `mapstructure:"typeform_url"`
	} `mapstructure:"automation"`
	Channels struct {
		Security   int64 `mapstructure:"security"`
		RealEstate int64 `mapstructure:"realestate"`
		Client     int64 `mapstructure:"client"`
	} `mapstructure:"channels"`
	Feeds struct {
		TrustedSources  []string      `mapstructure:"trusted_sources"`
		ExtractArticles bool          `mapstructure:"extract_articles"`
		PollInterval    time.Duration `mapstructure:"poll_interval"`
		FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
		Sources         []Source      `mapstructure:"sources"`
	} `mapstructure:"feeds"`
	Workflow struct {
		CycleInterval time.Duration `mapstructure:"cycle_interval"`
		DrainLimit    int           `mapstructure:"drain_limit"`
	} `mapstructure:"workflow"`
	Assistant struct {
		APIKey string `mapstructure:"api_key"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"assistant"`
}

// Source overrides the built-in feed catalogue when listed in the config file.
type Source struct {
	Name     string `mapstructure:"name"`
	URL      string `mapstructure:"url"`
	Category string `mapstructure:"category"`
}

// Integrations maps integration service names to their webhooks, skipping empty ones.
func (c *Config) Integrations() map[string]string {
	out := make(map[string]string)
	for name, url := range map[string]string{
		"notion":   c.Automation.NotionURL,
		"trello":   c.Automation.TrelloURL,
		"typeform": c.Automation.TypeformURL,
	} {
		if url != "" {
			out[name] = url
		}
	}
	return out
}

// Addr turns the configured port into a listen address.
func (c *Config) Addr() string {
	port := c.App.Port
	if port == "" {
		port = "8080"
	}
	if !strings.Contains(port, ":") {
		port = ":" + port
	}
	return port
}

var AppConfig *Config

// legacyEnv binds config keys to the environment variable names deployments already use.
var legacyEnv = map[string]string{
	"telegram.token":                "TELEGRAM_BOT_TOKEN",
	"telegram.gemassist_token":      "GEMASSIST_BOT_TOKEN",
	"telegram.gemcyberassist_token": "GEMCYBERASSIST_BOT_TOKEN",
	"telegram.cybergemsecure_token": "CYBERGEMSECURE_BOT_TOKEN",
	"telegram.realestate_token":     "REALESTATE_BOT_TOKEN",
	"automation.webhook_url":        "MAKE_WEBHOOK_URL",
	"automation.notion_url":         "NOTION_WEBHOOK_URL",
	"automation.trello_url":         "TRELLO_WEBHOOK_URL",
	"automation.typeform_url":       "TYPEFORM_WEBHOOK_URL",
	"channels.security":             "SECURITY_CHANNEL_ID",
	"channels.realestate":           "REALESTATE_CHANNEL_ID",
	"channels.client":               "CLIENT_CHANNEL_ID",
	"assistant.api_key":             "GEMINI_API_KEY",
	"jwt.secret":                    "JWT_SECRET",
	"feeds.trusted_sources":         "TRUSTED_SOURCES",
	"app.frontend_origins":          "FRONTEND_ORIGINS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "gemhub")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.frontend_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "gemhub")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.ttl", 72*time.Hour)
	v.SetDefault("telegram.api_base", "https://api.telegram.org")
	v.SetDefault("telegram.webhook_secret", "")
	v.SetDefault("feeds.trusted_sources", []string{"Reuters Finance", "Bloomberg Markets", "CISA Alerts"})
	v.SetDefault("feeds.extract_articles", false)
	v.SetDefault("feeds.poll_interval", time.Hour)
	v.SetDefault("feeds.fetch_timeout", 10*time.Second)
	v.SetDefault("workflow.cycle_interval", time.Duration(0))
	v.SetDefault("workflow.drain_limit", 5)
	v.SetDefault("assistant.model", "gemini-2.5-flash")
}

// Load reads config.yaml from ./config, or from path when given, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// InitConfig loads the configuration into AppConfig.
func InitConfig(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	AppConfig = cfg
	return nil
}

// NewLogger builds a production zap logger at the given level ("debug", "info", ...).
func NewLogger(level string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zc.Build()
}
