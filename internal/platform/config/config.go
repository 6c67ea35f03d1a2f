// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the reconciler process needs to wire its
// collaborators.
type Config struct {
	DatabaseURL string
	Redis       RedisConfig
	Kafka       KafkaConfig
	Enrichment  EnrichmentConfig
}

// RedisConfig configures the enrichment cache. An empty URL disables caching.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the batch-created notifier. Empty brokers disable it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// EnrichmentConfig configures the company-profile lookup. An empty base URL
// disables enrichment; new companies then get deterministic fallback names.
type EnrichmentConfig struct {
	BaseURL string
	Timeout time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		DatabaseURL: os.Getenv("ORGBOOK_DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("ORGBOOK_REDIS_URL"),
			PoolSize:     envInt("ORGBOOK_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("ORGBOOK_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("ORGBOOK_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("ORGBOOK_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("ORGBOOK_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: envList("ORGBOOK_KAFKA_BROKERS"),
			Topic:   envString("ORGBOOK_KAFKA_TOPIC", ""),
		},
		Enrichment: EnrichmentConfig{
			BaseURL: os.Getenv("ORGBOOK_ENRICHMENT_URL"),
			Timeout: envDuration("ORGBOOK_ENRICHMENT_TIMEOUT", 3*time.Second),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
