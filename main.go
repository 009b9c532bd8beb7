// Package main provides the entry point for the HealthTrack server.
//
// Usage:
//
//	healthtrack serve
//	healthtrack render <view>
//
// See --help for all available options.
package main

import (
	"context"
	"log"

	"github.com/techagentng/healthtrack/config"
	"github.com/techagentng/healthtrack/db"
	"github.com/techagentng/healthtrack/i18n"
	"github.com/techagentng/healthtrack/models"
	"github.com/techagentng/healthtrack/server"
	"github.com/techagentng/healthtrack/services"
	"github.com/techagentng/healthtrack/views"
)

func main() {
	Execute()
}

func loadSeed(conf *config.Config) (models.Seed, error) {
	return models.LoadSeed(conf.SeedFile)
}

// newServer opens the store and wires the services behind the HTTP server.
func newServer(ctx context.Context, conf *config.Config) (*server.Server, db.Store, error) {
	seed, err := loadSeed(conf)
	if err != nil {
		return nil, nil, err
	}
	store, err := db.Open(conf, seed)
	if err != nil {
		return nil, nil, err
	}

	msgs, err := i18n.New(conf.Locale)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	router, err := views.NewRouter(store)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	var scanner services.Scanner
	if conf.ScannerInbox != "" {
		log.Printf("Scanning documents from %s", conf.ScannerInbox)
		scanner = services.NewInboxScanner(conf.ScannerInbox, conf.MaxUploadSize)
	}
	archiver, err := services.NewS3Archiver(ctx, conf)
	if err != nil {
		log.Printf("Scan archival disabled: %v", err)
	}

	s := &server.Server{
		Config:        conf,
		Router:        router,
		Messages:      msgs,
		AuthService:   services.NewAuthService(store, msgs, conf),
		ReportService: services.NewReportService(store, conf),
		ScanService:   services.NewScanService(store, scanner, archiver, msgs, conf),
	}
	return s, store, nil
}
