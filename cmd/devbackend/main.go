package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-lms-portal/internal/config"
	"github.com/jrsteele09/go-lms-portal/internal/devbackend"
	"github.com/jrsteele09/go-lms-portal/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Seed accounts for local development
const (
	seedAdminEmail   = "admin@lms.local"
	seedStudentEmail = "student@lms.local"
	seedPassword     = "password123"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Dev backend failed")
	}
}

func run() error {
	c := config.DevBackend{}
	figure.NewFigure("LMS dev backend", "cybermedium", true).Print()
	fmt.Println()

	b := devbackend.New(c.GetDevJWTSecret(), c.GetDevAccessTokenTTL())
	if _, err := b.AddUser("Ada", "Admin", seedAdminEmail, seedPassword, users.RoleAdmin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if _, err := b.AddUser("Sam", "Student", seedStudentEmail, seedPassword, users.RoleStudent); err != nil {
		return fmt.Errorf("seed student: %w", err)
	}
	log.Info().Str("admin", seedAdminEmail).Str("student", seedStudentEmail).Str("password", seedPassword).Msg("Seeded accounts")

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", b))
	httpServer := &http.Server{Addr: c.GetDevBackendPort(), Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("Dev backend listening on /api")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Err(err).Msg("ListenAndServe")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}
