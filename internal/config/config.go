package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port           string
	DBDriver       string
	DBDSN          string
	DBMaxConns     int
	CacheBackend   string
	CacheTTL       time.Duration
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	ConditionDir   string
	NazotteLimit   int
	ListLimit      int
	MaxPerPage     int
	MaxUploadBytes int
	LogLevel       string
	LogFile        string
	AccessLog      bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "1323")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "isuumo.db") // sqlite file in project root
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("CACHE_BACKEND", "memory")
	v.SetDefault("CACHE_TTL", 60*time.Second)
	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CONDITION_DIR", "")
	v.SetDefault("NAZOTTE_LIMIT", 50)
	v.SetDefault("LIST_LIMIT", 20)
	v.SetDefault("MAX_PER_PAGE", 100)
	v.SetDefault("MAX_UPLOAD_BYTES", 32<<20)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("ACCESS_LOG", true)
}

// Load reads configuration from the environment, an optional .env file and an
// optional config.yaml in the working directory. Environment wins.
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:           v.GetString("PORT"),
		DBDriver:       strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:          v.GetString("DB_DSN"),
		DBMaxConns:     v.GetInt("DB_MAX_CONNS"),
		CacheBackend:   strings.ToLower(v.GetString("CACHE_BACKEND")),
		CacheTTL:       v.GetDuration("CACHE_TTL"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		ConditionDir:   v.GetString("CONDITION_DIR"),
		NazotteLimit:   v.GetInt("NAZOTTE_LIMIT"),
		ListLimit:      v.GetInt("LIST_LIMIT"),
		MaxPerPage:     v.GetInt("MAX_PER_PAGE"),
		MaxUploadBytes: v.GetInt("MAX_UPLOAD_BYTES"),
		LogLevel:       strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFile:        v.GetString("LOG_FILE"),
		AccessLog:      v.GetBool("ACCESS_LOG"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.CacheBackend {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("config: unsupported CACHE_BACKEND %q", c.CacheBackend)
	}
	if c.DBDSN == "" {
		return errors.New("config: DB_DSN is empty")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("config: DB_MAX_CONNS must be >= 1, got %d", c.DBMaxConns)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("config: CACHE_TTL must not be negative, got %s", c.CacheTTL)
	}
	if c.NazotteLimit < 1 || c.ListLimit < 1 || c.MaxPerPage < 1 {
		return errors.New("config: NAZOTTE_LIMIT, LIST_LIMIT and MAX_PER_PAGE must be positive")
	}
	if c.MaxUploadBytes < 1 {
		return errors.New("config: MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// Fields is the loggable view of the config. Secrets are left out.
func (c Config) Fields() map[string]any {
	return map[string]any{
		"port":          c.Port,
		"db_driver":     c.DBDriver,
		"db_max_conns":  c.DBMaxConns,
		"cache_backend": c.CacheBackend,
		"cache_ttl":     c.CacheTTL.String(),
		"condition_dir": c.ConditionDir,
		"log_level":     c.LogLevel,
		"log_file":      c.LogFile,
	}
}
