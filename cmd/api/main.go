package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hospital-finder/internal/cache"
	"hospital-finder/internal/config"
	httphandler "hospital-finder/internal/http"
	"hospital-finder/internal/services/dispute"
	"hospital-finder/internal/services/geo"
	"hospital-finder/internal/services/hospitals"
	"hospital-finder/internal/services/llm"
)

func main() {
	port := flag.String("port", "", "Port to run the server on (overrides PORT)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	setupLogging(cfg.Log)

	geoCache, closeCache := newGeocodeCache(cfg)
	defer closeCache()

	geocoder := geo.NewNominatim(cfg.Geocoding.BaseURL, cfg.Geocoding.ContactEmail, cfg.Geocoding.Timeout, geoCache)

	hospitalLLM := llm.NewOpenAIClient(llm.ClientConfig{
		APIKey:  cfg.OpenRouter.APIKey,
		BaseURL: cfg.OpenRouter.BaseURL,
		Model:   cfg.OpenRouter.Model,
		Timeout: cfg.OpenRouter.Timeout,
		Headers: map[string]string{
			"HTTP-Referer": cfg.OpenRouter.Referer,
			"X-Title":      cfg.OpenRouter.Title,
		},
	})
	disputeLLM := llm.NewOpenAIClient(llm.ClientConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
		Timeout: cfg.OpenAI.Timeout,
	})
	if !hospitalLLM.Configured() {
		log.Warn().Msg("OPENROUTER_API_KEY not set; hospital search will fail")
	}
	if !disputeLLM.Configured() {
		log.Warn().Msg("OPENAI_API_KEY not set; dispute analysis will fail")
	}

	normalizer := hospitals.NewNormalizer(hospitals.NewHTTPProber(cfg.Probe.Timeout), geocoder, cfg.Probe.Concurrency)
	hospitalService := hospitals.NewService(hospitalLLM, geocoder, normalizer, llm.Options{
		Temperature: cfg.OpenRouter.Temperature,
		MaxTokens:   cfg.OpenRouter.MaxTokens,
	})

	registry := dispute.NewRegistry(cfg.Dispute.PolicyDocsDir)
	registry.Verify()
	disputeService := dispute.NewService(disputeLLM, registry, dispute.ExtractPDFText, cfg.OpenAI.Temperature)

	router := httphandler.NewRouter(cfg.AllowedOrigins(), cfg.Server.WriteTimeout)
	router.RegisterHealthRoutes()
	router.RegisterHospitalRoutes(httphandler.NewHospitalHandler(hospitalService))
	router.RegisterDisputeRoutes(httphandler.NewDisputeHandler(disputeService, cfg.Dispute.UploadDir, cfg.Dispute.MaxUploadBytes))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Strs("cors_origins", cfg.AllowedOrigins()).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Server stopped")
}

func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Env == "local" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// newGeocodeCache returns Redis when configured and reachable, otherwise a
// bounded in-process LRU.
func newGeocodeCache(cfg *config.Config) (cache.Cache, func()) {
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err == nil {
			return redisCache, func() { redisCache.Close() }
		}
		log.Warn().Err(err).Msg("Redis unavailable; using in-process geocode cache")
	}

	lruCache, err := cache.NewLRUCache(cfg.Geocoding.CacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create geocode cache")
	}
	log.Info().Int("size", cfg.Geocoding.CacheSize).Msg("Using in-process geocode cache")
	return lruCache, func() {}
}
