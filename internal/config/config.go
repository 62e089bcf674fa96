package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// DevJWTSecret is the fallback signing secret outside production. Startup
// refuses to run with it in production mode.
const DevJWTSecret = "sahayai-insecure-dev-secret"

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	Group    string
	Consumer string
}

type StorageConfig struct {
	Endpoint          string
	AccessKey         string
	SecretKey         string
	BucketAttachments string
	UseSSL            bool
	Region            string
}

type SecurityConfig struct {
	JWTSecret      string
	SessionTTL     time.Duration
	CookieName     string
	CookieDomain   string
	CookieSecure   bool
	CookieHTTPOnly bool
	CookieSameSite string
}

type AnalyzerConfig struct {
	BaseURL string
	Timeout time.Duration
}

type JobsConfig struct {
	StuckCutoff time.Duration
	RescanSpec  string
	SweepSpec   string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Analyzer         AnalyzerConfig
	Jobs             JobsConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("SAHAYAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper already knows about, so keys with
	// no default need an explicit binding to arrive via environment.
	for _, key := range []string{
		"security.jwtsecret",
		"security.cookiedomain",
		"postgres.dsn",
		"redis.password",
		"storage.endpoint",
		"storage.accesskey",
		"storage.secretkey",
	} {
		_ = v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *AppConfig) error {
	if cfg.Security.JWTSecret == "" {
		if cfg.Environment == "production" {
			return fmt.Errorf("security.jwtsecret is required in production")
		}
		cfg.Security.JWTSecret = DevJWTSecret
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "grievance:analyze")
	v.SetDefault("redis.group", "analyzers")
	v.SetDefault("redis.consumer", "worker-1")

	v.SetDefault("storage.bucketattachments", "sahayai-attachments")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("security.sessionttl", "2h")
	v.SetDefault("security.cookiename", "token")
	v.SetDefault("security.cookiesecure", true)
	v.SetDefault("security.cookiehttponly", false)
	v.SetDefault("security.cookiesamesite", "None")

	v.SetDefault("analyzer.baseurl", "http://127.0.0.1:8000")
	v.SetDefault("analyzer.timeout", "10s")

	v.SetDefault("jobs.stuckcutoff", "15m")
	v.SetDefault("jobs.rescanspec", "0 */10 * * * *")
	v.SetDefault("jobs.sweepspec", "0 0 0 * * *")
}
