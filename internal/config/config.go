package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	BackendConfig
	SessionConfig
	StorageConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetBaseURL() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// BackendConfig locates the LMS backend API the portal talks to.
type BackendConfig interface {
	GetAPIURL() string
	GetAPITimeout() time.Duration
}

type SessionConfig interface {
	GetSessionCookieName() string
	GetSessionMaxAge() time.Duration
	GetAuthInitTimeout() time.Duration
	GetSessionSweepInterval() time.Duration
}

// StorageConfig selects the token store. An empty Redis address means in-memory.
type StorageConfig interface {
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetTokenTTL() time.Duration
}

type mainConfig struct {
	EnvVars
	Cors
	Backend
	Session
	Storage
}

func New() Config {
	return mainConfig{}
}
