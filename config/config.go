package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
			MaxConns          int32  `mapstructure:"maxConns"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Embedding     EmbeddingConfig     `mapstructure:"embedding"`
	Search        SearchConfig        `mapstructure:"search"`
	Scoring       ScoringConfig       `mapstructure:"scoring"`
	Itinerary     ItineraryConfig     `mapstructure:"itinerary"`
	RateLimit     RateLimitConfig     `mapstructure:"rateLimit"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type EmbeddingConfig struct {
	Provider   string        `mapstructure:"provider"`
	Model      string        `mapstructure:"model"`
	Dimensions int           `mapstructure:"dimensions"`
	CacheTTL   time.Duration `mapstructure:"cacheTTL"`
}

type SearchConfig struct {
	DefaultLimit    int           `mapstructure:"defaultLimit"`
	MaxLimit        int           `mapstructure:"maxLimit"`
	MinResults      int           `mapstructure:"minResults"`
	OverfetchFactor int           `mapstructure:"overfetchFactor"`
	CacheTTL        time.Duration `mapstructure:"cacheTTL"`
}

type ScoringConfig struct {
	MustSeeBoost float64 `mapstructure:"mustSeeBoost"`
}

type ItineraryConfig struct {
	CandidateLimit int `mapstructure:"candidateLimit"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requestsPerSecond"`
	Burst             int     `mapstructure:"burst"`
}

type ObservabilityConfig struct {
	ServiceName string `mapstructure:"serviceName"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
