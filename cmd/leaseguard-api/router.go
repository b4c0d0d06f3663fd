// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/leaseguard/leaseguard/cmd/leaseguard-api/handlers"
	"github.com/leaseguard/leaseguard/cmd/leaseguard-api/middleware"
	"github.com/leaseguard/leaseguard/internal/analyze"
	"github.com/leaseguard/leaseguard/internal/config"
	"github.com/leaseguard/leaseguard/internal/observability"
	"github.com/leaseguard/leaseguard/internal/openai"
	"github.com/leaseguard/leaseguard/internal/pdfrender"
	"github.com/leaseguard/leaseguard/internal/registry"
)

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config) (http.Handler, error) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"House Analysis API"}`))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"leaseguard"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ready"}`))
	})

	// Service dependencies. Each request holds only its own state; nothing
	// here is shared mutable state beyond the HTTP clients.
	inferenceClient, err := openai.NewClient(openai.Config{
		APIKey:        cfg.OpenAI.APIKey,
		BaseURL:       cfg.OpenAI.BaseURL,
		Model:         cfg.OpenAI.Model,
		UploadPurpose: cfg.OpenAI.UploadPurpose,
		Timeout:       cfg.OpenAI.RequestTimeout,
	})
	if err != nil {
		return nil, err
	}

	rasterizer := pdfrender.NewRasterizer(cfg.OpenAI.RasterDPI)
	analyzer := analyze.NewService(inferenceClient, inferenceClient, rasterizer, cfg.OpenAI.InferenceTimeout, logger)
	registryClient := registry.NewClient(registry.Config{
		BaseURL: cfg.Registry.BaseURL,
		Timeout: cfg.Registry.Timeout,
	}, logger)

	analysisHandler := handlers.NewAnalysisHandler(logger, analyzer, cfg.Server.MaxUploadBytes)
	licenseHandler := handlers.NewLicenseHandler(logger, registryClient)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analysis", analysisHandler.Analyze)

		r.Route("/license", func(r chi.Router) {
			r.Post("/verify", licenseHandler.Verify)
		})
	})

	return r, nil
}
