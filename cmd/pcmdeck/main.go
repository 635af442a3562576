// Package main is the entry point for the pcmdeck PCM feed player.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pcmdeck/internal/audio"
	"pcmdeck/internal/catalog"
	"pcmdeck/internal/config"
	"pcmdeck/internal/control"
	"pcmdeck/internal/state"
	"pcmdeck/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Environment overrides (PCMDECK_CONFIG etc.) may come from a .env file
	_ = godotenv.Load()

	cfg, err := config.LoadOrCreate(config.GetConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFile, err := setupLogging(cfg)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer logFile.Close()

	log.Info().
		Int("sample_rate", cfg.SampleRate).
		Str("asset_dir", cfg.AssetDir).
		Int("ring_size", cfg.RingSize).
		Uint8("default_volume", cfg.DefaultVolume).
		Msg("Configuration")

	cat, err := buildCatalog(cfg)
	if err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}
	log.Info().Int("tracks", cat.Len()).Msg("Catalog ready")

	// Shared state and control channels
	playback := state.New(cfg.DefaultVolume)
	transport := control.NewTransport()
	rotation := control.NewRotationQueue()

	// Output ring and its hardware drain. Speaker init failure is a bring-up
	// fault: fatal before the feed loop ever starts.
	ring := audio.NewRing(cfg.RingSize)
	sr := beep.SampleRate(cfg.SampleRate)
	if err := speaker.Init(sr, sr.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(audio.NewRingStreamer(ring))

	// Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Spawn the feed engine and the gain-control consumer
	engine := audio.NewEngine(ring, cat, playback, transport, log.Logger)
	engineErr := make(chan error, 1)
	go func() {
		err := engine.Run(ctx)
		engineErr <- err
		if err != nil && !errors.Is(err, context.Canceled) {
			// Fatal sink fault: tear the whole process down.
			cancel()
		}
	}()

	consumer := audio.NewVolumeConsumer(rotation, playback, cfg.VolumeStep, log.Logger)
	go consumer.Run(ctx)

	// Run the front panel (blocks until quit or cancellation)
	if err := ui.Run(ctx, playback, cat.Titles(), transport, rotation, cfg.KeyBindings); err != nil && !errors.Is(err, context.Canceled) {
		cancel()
		return fmt.Errorf("run ui: %w", err)
	}
	cancel()

	// Surface a fatal feed fault as the exit error
	if err := <-engineErr; err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("feed engine: %w", err)
	}
	return nil
}

// setupLogging sends structured logs to a file so they do not tear the
// terminal panel.
func setupLogging(cfg *config.Config) (*os.File, error) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: f, TimeFormat: time.RFC3339, NoColor: true})
	return f, nil
}

// buildCatalog loads assets from the configured directory, falling back to
// two synthesized tones so the catalog always has at least one track.
func buildCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	tracks, err := catalog.Load(cfg.AssetDir, cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		log.Warn().Str("asset_dir", cfg.AssetDir).Msg("No assets found, using built-in tones")
		tracks = []catalog.Track{
			catalog.ToneTrack("Tone A4", 440, 8*time.Second, cfg.SampleRate),
			catalog.ToneTrack("Tone E5", 659.25, 8*time.Second, cfg.SampleRate),
		}
	}
	return catalog.New(tracks)
}
