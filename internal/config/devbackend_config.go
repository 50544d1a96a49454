package config

import "time"

// DevBackendConfig configures cmd/devbackend, the local stand-in for the LMS backend.
type DevBackendConfig interface {
	GetDevBackendPort() string
	GetDevJWTSecret() string
	GetDevAccessTokenTTL() time.Duration
}

type DevBackend struct{}

var _ DevBackendConfig = DevBackend{}

func (DevBackend) GetDevBackendPort() string {
	return listenAddr(GetEnv("DEV_BACKEND_PORT", "5000"))
}

func (DevBackend) GetDevJWTSecret() string {
	return GetEnv("DEV_JWT_SECRET", "dev-secret-change-me")
}

func (DevBackend) GetDevAccessTokenTTL() time.Duration {
	return GetDurationEnv("DEV_ACCESS_TOKEN_TTL", 15*time.Minute)
}
