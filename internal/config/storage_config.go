package config

import "time"

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "")
}

func (Storage) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Storage) GetRedisDB() int {
	return GetIntEnv("REDIS_DB", 0)
}

// GetTokenTTL is how long a stored token pair survives without being written. Zero keeps it forever.
func (Storage) GetTokenTTL() time.Duration {
	return GetDurationEnv("TOKEN_TTL", 30*24*time.Hour)
}
