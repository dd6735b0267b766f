package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`

	PostgresDSN string `mapstructure:"postgres_dsn"`
	RedisAddr   string `mapstructure:"redis_addr"`

	// ScoreBackend selects where counters live: "memory" for a single
	// process, "redis" when several gateways share a room space.
	ScoreBackend string `mapstructure:"score_backend"`

	// SingleAnswer caps scoring at one answer per question per member.
	SingleAnswer bool `mapstructure:"single_answer"`

	OracleTimeout  time.Duration `mapstructure:"oracle_timeout"`
	PersistQueue   int           `mapstructure:"persist_queue"`
	PersistRetries int           `mapstructure:"persist_retries"`
	PersistBackoff time.Duration `mapstructure:"persist_backoff"`
	PersistTimeout time.Duration `mapstructure:"persist_timeout"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("secret", "quizlive-dev-secret")
	v.SetDefault("ping_period", "54s")
	v.SetDefault("score_backend", "memory")
	v.SetDefault("single_answer", false)
	v.SetDefault("oracle_timeout", "3s")
	v.SetDefault("persist_queue", 256)
	v.SetDefault("persist_retries", 3)
	v.SetDefault("persist_backoff", "2s")
	v.SetDefault("persist_timeout", "5s")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Scores: %s\n", cfg.Mode, cfg.Port, cfg.ScoreBackend)
	return &cfg, nil
}
