package main

import (
	"os"
	"os/signal"
	"syscall"

	"fluxcut/internal/config"
	"fluxcut/internal/database"
	"fluxcut/internal/mediapool"
	"fluxcut/internal/store"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := "./config.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	// Optional .env overrides (library path, db path) for local setups.
	if err := godotenv.Load(".env"); err == nil {
		if v := os.Getenv("FLUXCUT_CONFIG"); v != "" {
			configPath = v
		}
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.WithError(err).Fatal("Error loading configuration")
	}
	applyLogging(logger, cfg)

	if _, err := os.Stat(cfg.Media.LibraryPath); os.IsNotExist(err) {
		logger.WithField("library_path", cfg.Media.LibraryPath).Fatal("Media directory does not exist. Please create it and add your media files.")
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Error initializing database")
	}
	defer db.Close()

	settings := cfg.ProjectSettings()
	pool := mediapool.New(cfg.Media.LibraryPath, settings.FrameRate, logger)

	if cfg.Media.ScanOnStartup {
		if err := pool.Scan(); err != nil {
			logger.WithError(err).Fatal("Error scanning media library")
		}
		if pool.Len() == 0 {
			logger.WithField("library_path", cfg.Media.LibraryPath).Warn("No supported media files found in media directory")
		}
		for _, item := range pool.Items() {
			if err := db.UpsertMediaItem(item); err != nil {
				logger.WithError(err).Warn("Could not persist media item")
			}
		}
	}

	if cfg.Media.WatchForChanges {
		if err := pool.StartWatcher(); err != nil {
			logger.WithError(err).Warn("Could not start media watcher")
		}
		defer pool.StopWatcher()
	}

	st := store.New(settings, logger)

	// Handle Ctrl-C cleanly even while the shell is reading.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		logger.Info("Received shutdown signal")
		pool.StopWatcher()
		db.Close()
		os.Exit(0)
	}()

	sh := newShell(st, pool, db, logger)
	sh.run()
}

// applyLogging configures the shared logger from the config section.
func applyLogging(logger *logrus.Logger, cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			logger.WithError(err).Warn("Could not open log file, logging to stderr")
		} else {
			logger.SetOutput(f)
		}
	}
}
