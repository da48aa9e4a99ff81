package config

import (
	"time"
)

// SyncConfig tunes the polling reconciliation loops and the read-through
// caches sitting in front of the request store.
type SyncConfig struct {
	PollInterval    time.Duration `yaml:"poll_interval"`
	RequestCacheTTL time.Duration `yaml:"request_cache_ttl"`
	DriverLockTTL   time.Duration `yaml:"driver_lock_ttl"`
}

func loadSyncConfig() *SyncConfig {
	return &SyncConfig{
		PollInterval:    getEnvAsDuration("SYNC_POLL_INTERVAL", 30*time.Second),
		RequestCacheTTL: getEnvAsDuration("SYNC_REQUEST_CACHE_TTL", 30*time.Second),
		DriverLockTTL:   getEnvAsDuration("SYNC_DRIVER_LOCK_TTL", 5*time.Second),
	}
}
