package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sollytics/provenance/internal/analyzer"
	"github.com/sollytics/provenance/internal/api"
	"github.com/sollytics/provenance/internal/classifier"
	"github.com/sollytics/provenance/internal/config"
	"github.com/sollytics/provenance/internal/flows"
	"github.com/sollytics/provenance/internal/narrative"
	"github.com/sollytics/provenance/internal/solana"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the configuration file")
	flag.Parse()

	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMicro
	log.Logger = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "provenance-api").
		Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.General.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	if cfg.General.LogFormat == "text" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Info().
		Str("instance_id", cfg.General.InstanceID).
		Str("environment", cfg.General.Environment).
		Str("provider", cfg.Provider.Endpoint).
		Bool("narrative_enabled", cfg.Narrative.Enabled).
		Msg("Configuration loaded")

	// Chain data provider
	client := solana.NewLiveClient(cfg.Provider.ClientConfig())
	defer client.Close()

	// Analysis engines
	tables := classifier.DefaultTables()
	cls := classifier.New(classifier.DefaultConfig(), tables)
	ext := flows.NewExtractor(flows.DefaultExtractorConfig(), tables)
	det := flows.NewDetector(flows.DefaultDetectorConfig())

	narrativeCfg := cfg.Narrative.ExplainerConfig()
	var gen narrative.TextGenerator
	if narrativeCfg.Enabled && narrativeCfg.APIKey != "" {
		gen = narrative.NewOpenAIGenerator(narrativeCfg.APIKey, narrativeCfg.BaseURL, narrativeCfg.Model)
	}
	exp := narrative.NewExplainer(narrativeCfg, gen)

	an := analyzer.New(cfg.Analysis.AnalyzerConfig(), client, cls, ext,
		cfg.Analysis.AggregatorConfig(), det, exp)

	server := api.NewServer(cfg.Server.APIConfig(), an, client)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Warn().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
	}()

	if err := server.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
	log.Info().Msg("Provenance API - Shutdown complete")
}
