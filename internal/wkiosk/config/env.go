package config

import (
	"os"
	"strconv"
	"time"
)

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// getEnvMulti returns the first non-empty variable among keys
func getEnvMulti(keys []string, fallback string) string {
	for _, key := range keys {
		if v := getEnv(key, ""); v != "" {
			return v
		}
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// getEnvAsBool reports the parsed value and whether the variable was set
// to something parseable
func getEnvAsBool(key string) (bool, bool) {
	v := getEnv(key, "")
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
