package config

import "time"

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionCookieName() string {
	return GetEnv("SESSION_COOKIE", "lms_portal_sid")
}

func (Session) GetSessionMaxAge() time.Duration {
	return GetDurationEnv("SESSION_MAX_AGE", 7*24*time.Hour)
}

// GetAuthInitTimeout bounds a whole auth initialization run (fetch, refresh, re-fetch)
func (Session) GetAuthInitTimeout() time.Duration {
	return GetDurationEnv("AUTH_INIT_TIMEOUT", 15*time.Second)
}

func (Session) GetSessionSweepInterval() time.Duration {
	return GetDurationEnv("SESSION_SWEEP_INTERVAL", 10*time.Minute)
}
