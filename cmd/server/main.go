// Package main is the entry point for the microblog API server.
//
// Its job is deliberately small: load configuration from the environment,
// build the logger and the optional media client, and hand everything to
// internal/server. All process-wide state — token secrets, the database
// path, the Cloudinary credentials — is read once here and injected; no
// package below this reads an env var.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sakif/microblog/internal/media"
	"github.com/sakif/microblog/internal/server"
	"github.com/sakif/microblog/internal/service"
)

func main() {
	// A .env file is a development convenience; in production the
	// variables come from the real environment and the file is absent.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
		port = p
	}

	dbPath := "data/microblog.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// Two secrets, one per token class. Generate with:
	//   openssl rand -hex 32
	accessSecret := os.Getenv("JWT_ACCESS_SECRET")
	refreshSecret := os.Getenv("JWT_REFRESH_SECRET")
	if accessSecret == "" || refreshSecret == "" {
		logger.Error("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must both be set")
		os.Exit(1)
	}

	clientOrigin := os.Getenv("CLIENT_ORIGIN")
	if clientOrigin == "" {
		clientOrigin = "http://localhost:5173"
	}

	// Cloudinary cleanup is optional — without credentials the server runs
	// and deleted posts simply leave their media behind.
	var mediaClient service.MediaCleaner
	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")
	if cloudName != "" || apiKey != "" || apiSecret != "" {
		client, err := media.New(cloudName, apiKey, apiSecret, logger)
		if err != nil {
			logger.Error("invalid Cloudinary configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}
		mediaClient = client
	} else {
		logger.Warn("Cloudinary not configured — deleted posts will not clean up their media")
	}

	cfg := server.Config{
		Port:          port,
		DBPath:        dbPath,
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		ClientOrigin:  clientOrigin,
	}

	srv, err := server.New(cfg, logger, mediaClient)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
