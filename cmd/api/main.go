package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/github-leak-audit/internal/api"
	"github.com/kurihiro0119/github-leak-audit/internal/audit"
	"github.com/kurihiro0119/github-leak-audit/internal/auth"
	"github.com/kurihiro0119/github-leak-audit/internal/config"
	"github.com/kurihiro0119/github-leak-audit/internal/domain"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	tokens, err := auth.NewTokenProvider(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to set up GitHub credentials")
	}

	// Every request gets a fresh token and collector; nothing is kept between audits
	run := func(ctx context.Context) (*domain.Report, error) {
		auditor, err := audit.NewFromConfig(ctx, cfg, tokens)
		if err != nil {
			return nil, err
		}
		return auditor.Run(ctx)
	}

	router := api.SetupRoutes(api.NewHandler(run), cfg.AllowedOrigins)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	logrus.WithFields(logrus.Fields{
		"addr": addr,
		"org":  cfg.OrgName,
		"auth": cfg.AuthType(),
	}).Info("starting API server")

	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}
