package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Symbol      string `yaml:"symbol"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Engine struct {
		Timeframe          string             `yaml:"timeframe"`
		AnalysisInterval   time.Duration      `yaml:"analysis_interval"`
		SettlementInterval time.Duration      `yaml:"settlement_interval"`
		WindowSize         int                `yaml:"window_size"`
		BaseStake          float64            `yaml:"base_stake"`
		ProfitRates        map[string]float64 `yaml:"profit_rates"`
		Indicators         struct {
			RSIPeriod  int     `yaml:"rsi_period"`
			BollPeriod int     `yaml:"boll_period"`
			BollK      float64 `yaml:"boll_k"`
			KDJPeriod  int     `yaml:"kdj_period"`
		} `yaml:"indicators"`
		Thresholds struct {
			RSILow  float64 `yaml:"rsi_low"`
			RSIHigh float64 `yaml:"rsi_high"`
			KDJLow  float64 `yaml:"kdj_low"`
			KDJHigh float64 `yaml:"kdj_high"`
		} `yaml:"thresholds"`
	} `yaml:"engine"`
	Sources struct {
		Binance struct {
			RestURL        string        `yaml:"rest_url"`
			WsURL          string        `yaml:"ws_url"`
			Interval       string        `yaml:"interval"`
			Limit          int           `yaml:"limit"`
			ReconnectDelay time.Duration `yaml:"reconnect_delay"`
			PingInterval   time.Duration `yaml:"ping_interval"`
		} `yaml:"binance"`
		CoinGecko struct {
			URL  string `yaml:"url"`
			Days int    `yaml:"days"`
		} `yaml:"coingecko"`
	} `yaml:"sources"`
	Cache struct {
		Enabled bool          `yaml:"enabled"`
		TTL     time.Duration `yaml:"ttl"`
		Redis   struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Archive struct {
		Backend      string        `yaml:"backend"` // none, kafka, clickhouse
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
	} `yaml:"archive"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		AsyncInsert      bool          `yaml:"async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML, applies a .env file if present, and
// overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load() // missing .env is fine

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SYMBOL"); v != "" {
		c.Symbol = v
	}
	if v := os.Getenv("ARCHIVE_BACKEND"); v != "" {
		c.Archive.Backend = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("TIMEFRAME"); v != "" {
		c.Engine.Timeframe = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	switch c.Archive.Backend {
	case "", "none", "kafka", "clickhouse":
	default:
		return fmt.Errorf("archive.backend must be 'none', 'kafka' or 'clickhouse', got '%s'", c.Archive.Backend)
	}
	if c.Engine.Timeframe == "" {
		return fmt.Errorf("engine.timeframe is required")
	}
	if _, ok := c.Engine.ProfitRates[c.Engine.Timeframe]; !ok {
		return fmt.Errorf("engine.profit_rates missing entry for timeframe '%s'", c.Engine.Timeframe)
	}
	for tf, r := range c.Engine.ProfitRates {
		if r < 0 || r > 1 {
			return fmt.Errorf("engine.profit_rates[%s] must be in [0,1], got %v", tf, r)
		}
	}
	if c.Engine.BaseStake <= 0 {
		return fmt.Errorf("engine.base_stake must be positive")
	}
	if c.Engine.AnalysisInterval <= 0 || c.Engine.SettlementInterval <= 0 {
		return fmt.Errorf("engine intervals must be positive")
	}
	if c.Engine.WindowSize < c.Engine.Indicators.RSIPeriod+1 ||
		c.Engine.WindowSize < c.Engine.Indicators.BollPeriod ||
		c.Engine.WindowSize < c.Engine.Indicators.KDJPeriod {
		return fmt.Errorf("engine.window_size %d is smaller than the longest indicator lookback", c.Engine.WindowSize)
	}
	return nil
}
