package config

import (
	"strings"
	"time"
)

type Backend struct{}

var _ BackendConfig = Backend{}

func (Backend) GetAPIURL() string {
	return strings.TrimSuffix(GetEnv("API_URL", "http://localhost:5000/api"), "/")
}

func (Backend) GetAPITimeout() time.Duration {
	return GetDurationEnv("API_TIMEOUT", 10*time.Second)
}
