package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/innkeep/localize/internal/config"
	"github.com/innkeep/localize/internal/detect"
	"github.com/innkeep/localize/internal/translation"
	"github.com/innkeep/localize/internal/translator"
)

// buildService wires a translator service from configuration: provider
// registry, detector, cache, dispatcher and debouncer. The registry is
// returned alongside the service for callers that surface provider metadata.
func buildService(cfg *config.Config, providerName string, logger zerolog.Logger) (*translator.Service, *translation.Registry, error) {
	registry := translation.NewRegistryFromEnv()
	if providerName == "" {
		providerName = cfg.Provider
	}
	provider, err := registry.Provider(providerName)
	if err != nil {
		return nil, nil, err
	}

	detector := detect.New(detect.EnvSource{}, detect.WithMemoTTL(cfg.DetectionTTL()))

	svc, err := translator.New(provider, detector, translator.Options{
		CacheCapacity:     cfg.CacheCapacity,
		Workers:           cfg.TranslationWorkers,
		DebounceInterval:  cfg.DebounceInterval(),
		DefaultSourceLang: cfg.DefaultSourceLang,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("build translator service: %w", err)
	}

	logger.Debug().
		Str("provider", provider.Name()).
		Int("cache_capacity", cfg.CacheCapacity).
		Int("workers", cfg.TranslationWorkers).
		Msg("translator service initialized")

	return svc, registry, nil
}
