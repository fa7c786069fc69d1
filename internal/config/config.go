// Package config loads runtime settings from defaults, an optional config
// file and the environment, in increasing precedence.
package config

import (
	"bufio"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the job board.
type Config struct {
	HTTP struct {
		Addr            string        `mapstructure:"addr"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"http"`

	Database struct {
		URL          string `mapstructure:"url"`
		MaxOpenConns int    `mapstructure:"max_open_conns"`
		Migrate      bool   `mapstructure:"migrate"`
	} `mapstructure:"database"`

	Redis struct {
		URL string `mapstructure:"url"` // empty => in-process cache
	} `mapstructure:"redis"`

	Cache struct {
		TTL        time.Duration `mapstructure:"ttl"`
		HTTPMaxAge time.Duration `mapstructure:"http_max_age"`
		Sweep      time.Duration `mapstructure:"sweep"`
	} `mapstructure:"cache"`

	Site struct {
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"site"`

	Admin struct {
		Token string `mapstructure:"token"`
	} `mapstructure:"admin"`

	Log struct {
		JSON  bool   `mapstructure:"json"`
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	RateLimit struct {
		Requests   int           `mapstructure:"requests"`
		Window     time.Duration `mapstructure:"window"`
		TrustProxy bool          `mapstructure:"trust_proxy"` // key clients by X-Forwarded-For
	} `mapstructure:"ratelimit"`

	Importer struct {
		Schedule string        `mapstructure:"schedule"` // cron spec; empty disables
		Timeout  time.Duration `mapstructure:"timeout"`
		Sources  []string      `mapstructure:"sources"`
		Query    string        `mapstructure:"query"`
		Location string        `mapstructure:"location"`
		Type     string        `mapstructure:"type"` // keep only this type; empty keeps all
		ProxyURL string        `mapstructure:"proxy_url"`
	} `mapstructure:"importer"`
}

// SetDefaults registers every key so the environment can override it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":5000")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.migrate", true)
	v.SetDefault("redis.url", "")
	v.SetDefault("cache.ttl", 600*time.Second)
	v.SetDefault("cache.http_max_age", 300*time.Second)
	v.SetDefault("cache.sweep", time.Minute)
	v.SetDefault("site.base_url", "http://localhost:3000")
	v.SetDefault("admin.token", "")
	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("ratelimit.requests", 200)
	v.SetDefault("ratelimit.window", 15*time.Minute)
	v.SetDefault("ratelimit.trust_proxy", false)
	v.SetDefault("importer.schedule", "")
	v.SetDefault("importer.timeout", 30*time.Second)
	v.SetDefault("importer.sources", []string{})
	v.SetDefault("importer.query", "fresher")
	v.SetDefault("importer.location", "India")
	v.SetDefault("importer.type", "")
	v.SetDefault("importer.proxy_url", "")
}

// New returns a viper instance wired to JOBBOARD_* variables. The bare
// PORT, DATABASE_URL and REDIS_URL names common on PaaS hosts are honored
// as fallbacks.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("JOBBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("database.url", "JOBBOARD_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("redis.url", "JOBBOARD_REDIS_URL", "REDIS_URL")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("JOBBOARD_HTTP_ADDR") == "" {
		v.SetDefault("http.addr", ":"+port)
	}
	return v
}

// Load reads an optional config file into v and decodes the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "config: read %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Cache.TTL <= 0 {
		return errors.Newf("config: cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.RateLimit.Requests < 0 {
		return errors.Newf("config: ratelimit.requests must not be negative, got %d", c.RateLimit.Requests)
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		return errors.New("config: ratelimit.window must be positive")
	}
	return nil
}

// LoadDotEnv copies KEY=VALUE lines from path into the environment without
// overriding variables that are already set. A missing file is ignored.
func LoadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.Trim(strings.TrimSpace(val), `"'`)
		if _, set := os.LookupEnv(key); !set {
			os.Setenv(key, val)
		}
	}
}
