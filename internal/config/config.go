package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port    string `mapstructure:"PORT"`
	AppEnv  string `mapstructure:"APP_ENV"`
	Version string `mapstructure:"APP_VERSION"`

	StoreDriver        string `mapstructure:"STORE_DRIVER"`
	MongoURI           string `mapstructure:"MONGODB_URI"`
	MongoDatabase      string `mapstructure:"MONGODB_DATABASE"`
	MongoTransactions  bool   `mapstructure:"MONGODB_TRANSACTIONS"`
	SeedSampleProducts bool   `mapstructure:"SEED_SAMPLE_PRODUCTS"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTExpire time.Duration `mapstructure:"JWT_EXPIRE"`

	CORSOrigins  string `mapstructure:"CORS_ORIGINS"`
	MaxBodyBytes int64  `mapstructure:"MAX_BODY_BYTES"`

	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	ProductCacheTTL time.Duration `mapstructure:"PRODUCT_CACHE_TTL"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`
}

var defaults = map[string]any{
	"PORT":                 "5000",
	"APP_ENV":              "development",
	"APP_VERSION":          "1.0.0",
	"STORE_DRIVER":         StoreMongo,
	"MONGODB_URI":          "",
	"MONGODB_DATABASE":     "rosellea",
	"MONGODB_TRANSACTIONS": false,
	"SEED_SAMPLE_PRODUCTS": false,
	"JWT_SECRET":           "dev_secret",
	"JWT_EXPIRE":           "168h",
	"CORS_ORIGINS":         "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173,http://127.0.0.1:3000,http://localhost:4173",
	"MAX_BODY_BYTES":       1_000_000,
	"REDIS_ADDR":           "",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
	"PRODUCT_CACHE_TTL":    "5m",
	"LOG_LEVEL":            "info",
	"LOG_PRETTY":           false,
}

// Load reads the environment, after preloading envFiles (default ".env") when
// they exist. Variables already set in the process win over file values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			return errors.New("MONGODB_URI is required when STORE_DRIVER=mongo")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.JWTExpire <= 0 {
		return errors.New("JWT_EXPIRE must be positive")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("MAX_BODY_BYTES must be positive")
	}
	return nil
}

func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

func (c *Config) Addr() string { return ":" + c.Port }
