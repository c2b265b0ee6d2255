package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aquaponics-lab/aquamon/db"
	"github.com/aquaponics-lab/aquamon/internal/api"
	"github.com/aquaponics-lab/aquamon/internal/client"
	"github.com/aquaponics-lab/aquamon/internal/config"
	"github.com/aquaponics-lab/aquamon/internal/datadog"
	"github.com/aquaponics-lab/aquamon/internal/env"
	"github.com/aquaponics-lab/aquamon/internal/logging"
	"github.com/aquaponics-lab/aquamon/internal/model"
	"github.com/aquaponics-lab/aquamon/internal/notifications"
	"github.com/aquaponics-lab/aquamon/internal/poller"
	"github.com/aquaponics-lab/aquamon/internal/render"
	"github.com/aquaponics-lab/aquamon/system/shutdown"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel)
	env.Cfg = cfg

	log.Info().
		Str("base_url", cfg.BaseURL).
		Int("poll_interval_ms", cfg.PollIntervalMs).
		Msg("Starting aquaponics monitor")

	datadog.InitMetrics()
	notifications.Init()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create data directory")
	}

	dbConn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open settings database")
	}

	settings, err := db.GetSettings(dbConn)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load settings, starting with defaults")
		settings = &model.Settings{AutoRefresh: true}
	}

	log.Info().
		Bool("auto_refresh", settings.AutoRefresh).
		Bool("failure_simulated", settings.FailureSimulated).
		Msg("Loaded settings")

	cl := client.New(cfg.BaseURL, time.Duration(cfg.HTTPTimeoutMs)*time.Millisecond)
	term := render.NewTerminal(os.Stdout)

	p := poller.New(cl, term, time.Duration(cfg.PollIntervalMs)*time.Millisecond, settings.AutoRefresh)
	p.SetCommandHook(func(cmd model.CommandRequest, cmdErr error) {
		if err := db.RecordCommand(dbConn, cmd, cmdErr == nil); err != nil {
			log.Warn().Err(err).Msg("Failed to record command")
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	server := api.NewServer(dbConn, p)
	go func() {
		if err := server.Start(cfg.ListenPort); err != nil {
			shutdown.ShutdownWithError(err, "Local control API failed", cancel, dbConn)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	shutdown.Shutdown(cancel, dbConn)
}
