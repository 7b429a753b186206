package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gradeagent/gradeagent/internal/config"
	"github.com/gradeagent/gradeagent/pkg/ai"
)

var testConnectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Validate model API credentials and connectivity",
	Long:  "Issue a minimal model request to verify the API key works.\nExits non-zero on failure.",
	RunE:  runTestConnection,
}

func runTestConnection(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := config.Load(rootFlags.settingsFile)
	if err != nil {
		return err
	}
	if issue := cfg.APIKeyIssue(); issue != "" {
		logger.Warn().Msg(issue)
	}

	grader, err := ai.NewOpenAIGrader(ai.OpenAIConfig{
		APIKey:      strings.TrimSpace(cfg.APIKey),
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxOutputTokens,
		Temperature: cfg.Temperature,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if !grader.TestConnection(ctx) {
		return fmt.Errorf("connection test failed for model %s", cfg.Model)
	}

	logger.Info().Str("model", cfg.Model).Msg("connection test succeeded")
	return nil
}
