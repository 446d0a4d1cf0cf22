package config

import (
	"strings"
	"time"
)

// CacheConfig selects the backend of the injected cache service and the
// settings of the availability response cache.
//
//	CACHE_BACKEND        memory or redis (redis needs a reachable server)
//	CACHE_NAMESPACE      redis key namespace
//	LOCATIONS_CACHE_TTL  lifetime of a cached location list
//	RESPONSE_CACHE_*     availability response cache
type CacheConfig struct {
	Backend      string
	Namespace    string
	LocationsTTL time.Duration

	ResponseEnabled bool
	ResponseTTL     time.Duration
	ResponsePrefix  string
	MaxBodyBytes    int
}

func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Backend:         strings.ToLower(envStr("CACHE_BACKEND", "memory")),
		Namespace:       envStr("CACHE_NAMESPACE", "cache"),
		LocationsTTL:    envDur("LOCATIONS_CACHE_TTL", time.Hour),
		ResponseEnabled: envBool("RESPONSE_CACHE_ENABLED", true),
		ResponseTTL:     envDur("RESPONSE_CACHE_TTL", 30*time.Second),
		ResponsePrefix:  envStr("RESPONSE_CACHE_PREFIX", "resp"),
		MaxBodyBytes:    envInt("RESPONSE_CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
