// Package main provides a command-line front end to the analysis pipeline.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/leaseguard/leaseguard/internal/analyze"
	"github.com/leaseguard/leaseguard/internal/config"
	"github.com/leaseguard/leaseguard/internal/observability"
	"github.com/leaseguard/leaseguard/internal/openai"
	"github.com/leaseguard/leaseguard/internal/pdfrender"
)

var (
	cfgPath string
	timeout time.Duration
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "leaseguard",
		Short: "Lease document safety analysis",
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file")

	analyzeCmd := &cobra.Command{
		Use:   "analyze <file>...",
		Short: "Analyze lease documents and print the verdict",
		Long: `Runs the full analysis pipeline over the given document files (PDF or
image) and prints the six-field verdict as JSON. Requires OPENAI_API_KEY.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnalyze,
	}
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 0, "inference deadline override")

	rootCmd.AddCommand(analyzeCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if timeout > 0 {
		cfg.OpenAI.InferenceTimeout = timeout
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      "console",
		ServiceName: "leaseguard-cli",
		Output:      os.Stderr,
	})

	client, err := openai.NewClient(openai.Config{
		APIKey:        cfg.OpenAI.APIKey,
		BaseURL:       cfg.OpenAI.BaseURL,
		Model:         cfg.OpenAI.Model,
		UploadPurpose: cfg.OpenAI.UploadPurpose,
		Timeout:       cfg.OpenAI.RequestTimeout,
	})
	if err != nil {
		return err
	}

	uploads := make([]analyze.FileUpload, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		uploads = append(uploads, analyze.FileUpload{
			Filename: filepath.Base(path),
			Data:     data,
		})
	}

	rasterizer := pdfrender.NewRasterizer(cfg.OpenAI.RasterDPI)
	service := analyze.NewService(client, client, rasterizer, cfg.OpenAI.InferenceTimeout, logger)

	verdict, err := service.Analyze(cmd.Context(), uploads)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
