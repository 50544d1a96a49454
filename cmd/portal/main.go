package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-lms-portal/auth"
	"github.com/jrsteele09/go-lms-portal/backend"
	"github.com/jrsteele09/go-lms-portal/internal/config"
	"github.com/jrsteele09/go-lms-portal/internal/metrics"
	"github.com/jrsteele09/go-lms-portal/server"
	"github.com/jrsteele09/go-lms-portal/sessions"
	"github.com/jrsteele09/go-lms-portal/standards"
	"github.com/jrsteele09/go-lms-portal/token"
	"github.com/jrsteele09/go-lms-portal/token/refresh"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	tokens, closeTokens, err := newTokenStore(c)
	if err != nil {
		return err
	}
	defer closeTokens()

	m := metrics.New()
	client := backend.NewClient(c, backend.WithMetrics(m))
	sessionStore := sessions.NewMemoryStore()
	authService := auth.NewService(
		auth.Repos{Tokens: tokens, Sessions: sessionStore},
		client,
		refresh.NewManager(client, refresh.WithMetrics(m)),
		auth.WithInitTimeout(c.GetAuthInitTimeout()),
		auth.WithMetrics(m),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sessionStore.StartSweeper(ctx, c.GetSessionSweepInterval(), c.GetSessionMaxAge())

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           server.New(c, authService, client, standards.New(), m),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func setupLogging(c config.EnvConfig) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// newTokenStore uses Redis when an address is configured and memory otherwise
func newTokenStore(c config.StorageConfig) (token.Keyed, func(), error) {
	addr := c.GetRedisAddr()
	if addr == "" {
		log.Warn().Msg("REDIS_ADDR not set, tokens are kept in memory and lost on restart")
		return token.NewMemoryStore(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: c.GetRedisPassword(),
		DB:       c.GetRedisDB(),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	log.Info().Str("addr", addr).Msg("Token store: redis")
	return token.NewRedisStore(client, "", c.GetTokenTTL()), func() { _ = client.Close() }, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
