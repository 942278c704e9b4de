package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

func GetConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err = json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Pricing.CacheTTLSeconds <= 0 {
		cfg.Pricing.CacheTTLSeconds = 60
	}
	if cfg.Pricing.Timezone == "" {
		cfg.Pricing.Timezone = "Asia/Kolkata"
	}
	if cfg.Pricing.BaseCurrency == "" {
		cfg.Pricing.BaseCurrency = "USD"
	}
	if cfg.Pricing.TargetCurrency == "" {
		cfg.Pricing.TargetCurrency = "INR"
	}
	if cfg.Pricing.ImportDutyRate == 0 {
		cfg.Pricing.ImportDutyRate = 0.06
	}
	if cfg.Pricing.TaxRate == 0 {
		cfg.Pricing.TaxRate = 0.03
	}
	if cfg.Pricing.LocalPremiumRate == 0 {
		cfg.Pricing.LocalPremiumRate = 0.03
	}
	if cfg.Providers.TimeoutSeconds <= 0 {
		cfg.Providers.TimeoutSeconds = 5
	}
}

// Override with environment variables
func applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.App.Port = p
		}
	}

	// DB environment variables
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Repository.DBHost = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Repository.DBPort = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Repository.DBUsername = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Repository.DBPassword = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Repository.DBName = name
	}

	// Redis environment variables
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		cfg.Cache.RedisHost = redisHost
	}
	if redisPort := os.Getenv("REDIS_PORT"); redisPort != "" {
		cfg.Cache.RedisPort, _ = strconv.Atoi(redisPort)
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.Cache.RedisPassword = redisPassword
	}
	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		cfg.Cache.RedisDB, _ = strconv.Atoi(redisDB)
	}

	// Pricing environment variables
	if ttl := os.Getenv("PRICE_CACHE_TTL_SECONDS"); ttl != "" {
		if v, err := strconv.Atoi(ttl); err == nil {
			cfg.Pricing.CacheTTLSeconds = v
		}
	}
	if tz := os.Getenv("MARKET_TIMEZONE"); tz != "" {
		cfg.Pricing.Timezone = tz
	}
	if duty := os.Getenv("IMPORT_DUTY_RATE"); duty != "" {
		if v, err := strconv.ParseFloat(duty, 64); err == nil {
			cfg.Pricing.ImportDutyRate = v
		}
	}
	if tax := os.Getenv("TAX_RATE"); tax != "" {
		if v, err := strconv.ParseFloat(tax, 64); err == nil {
			cfg.Pricing.TaxRate = v
		}
	}
	if premium := os.Getenv("LOCAL_PREMIUM_RATE"); premium != "" {
		if v, err := strconv.ParseFloat(premium, 64); err == nil {
			cfg.Pricing.LocalPremiumRate = v
		}
	}
	if secret := os.Getenv("REFRESH_SECRET"); secret != "" {
		cfg.Pricing.RefreshSecret = secret
	}

	// Provider environment variables (endpoint overrides by position)
	for i := range cfg.Providers.Providers {
		if url := os.Getenv(fmt.Sprintf("PROVIDER%d_URL", i+1)); url != "" {
			cfg.Providers.Providers[i].BaseURL = url
		}
		if apiKey := os.Getenv(fmt.Sprintf("PROVIDER%d_API_KEY", i+1)); apiKey != "" {
			cfg.Providers.Providers[i].APIKey = apiKey
		}
	}
}

type Config struct {
	App        App        `json:"app"`
	Repository Repository `json:"repository"`
	Cache      Cache      `json:"cache"`
	Providers  Providers  `json:"providers"`
	Pricing    Pricing    `json:"pricing"`
}

type App struct {
	Port int `json:"port"`
}

type Repository struct {
	DBHost      string `json:"db_host"`
	DBPort      int    `json:"db_port"`
	DBUsername  string `json:"db_username"`
	DBPassword  string `json:"db_password"`
	DBName      string `json:"db_name"`
	DBSSLMode   string `json:"db_ssl_mode"`
	MaxConn     int    `json:"max_conn"`
	MaxIdleConn int    `json:"max_idle_conn"`
}

type Cache struct {
	RedisHost     string `json:"redis_host"`
	RedisPort     int    `json:"redis_port"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`
	PoolSize      int    `json:"pool_size"`
	MinIdleConns  int    `json:"min_idle_conns"`
}

type Providers struct {
	TimeoutSeconds int              `json:"timeout_seconds"`
	Providers      []ProviderConfig `json:"providers"`
}

// ProviderConfig describes one upstream source. Type "yahoo" uses the
// finance chart API with per-instrument symbols; type "json" fetches a
// configured URL per instrument and extracts the value at a gjson path.
type ProviderConfig struct {
	Name         string            `json:"name"`
	Type         string            `json:"type"`
	BaseURL      string            `json:"base_url"`
	QuoteSymbols map[string]string `json:"quote_symbols"`
	RateSymbols  map[string]string `json:"rate_symbols"`
	PricePath    string            `json:"price_path"`
	APIKeyHeader string            `json:"api_key_header"`
	APIKey       string            `json:"api_key"`
}

type Pricing struct {
	CacheTTLSeconds  int     `json:"cache_ttl_seconds"`
	ImportDutyRate   float64 `json:"import_duty_rate"`
	TaxRate          float64 `json:"tax_rate"`
	LocalPremiumRate float64 `json:"local_premium_rate"`
	Timezone         string  `json:"timezone"`
	BaseCurrency     string  `json:"base_currency"`
	TargetCurrency   string  `json:"target_currency"`
	RefreshSecret    string  `json:"refresh_secret"`
}
