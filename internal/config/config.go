package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type ServerConfig struct {
	Addr            string
	SavePath        string
	TickEvery       time.Duration
	MaxOfflineTicks int
	RunOnce         bool
	Seed            int64
}

type ClientConfig struct {
	APIBaseURL string
}

func LoadServerFromEnv() ServerConfig {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("FIZZWORKS_ADDR", ":8090")
	}

	return ServerConfig{
		Addr:            addr,
		SavePath:        strings.TrimSpace(os.Getenv("FIZZWORKS_SAVE_PATH")),
		TickEvery:       envDurationDefault("FIZZWORKS_TICK_EVERY", time.Second),
		MaxOfflineTicks: envIntDefault("FIZZWORKS_MAX_OFFLINE_TICKS", 3600),
		RunOnce:         envBoolDefault("FIZZWORKS_RUN_ONCE", false),
		Seed:            envInt64Default("FIZZWORKS_SEED", 0),
	}
}

func LoadClientFromEnv() ClientConfig {
	return ClientConfig{
		APIBaseURL: strings.TrimRight(envDefault("FIZZWORKS_API_BASE_URL", "http://localhost:8090"), "/"),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envIntDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
