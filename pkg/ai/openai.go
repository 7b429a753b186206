package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "grader",
		Subsystem: "ai",
		Name:      "grading_duration_seconds",
		Help:      "Duration of grading model requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "grader",
		Subsystem: "ai",
		Name:      "grading_failures_total",
		Help:      "Number of failed grading model requests",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI grader. The API
// key is supplied explicitly by the caller; the client never reads the
// environment itself.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIGrader implements Grader against the OpenAI chat completion API,
// sending the rubric image and submission text as a multimodal message.
type OpenAIGrader struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGrader builds a new grader using the provided configuration.
func NewOpenAIGrader(cfg OpenAIConfig) (*OpenAIGrader, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-5-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2000
	}

	tracer := otel.Tracer("github.com/gradeagent/gradeagent/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIGrader{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Grade sends one grading request and returns the raw response content. The
// response is requested as a JSON object; the caller owns decoding so that a
// malformed body can be retried under its own policy.
func (g *OpenAIGrader) Grade(parent context.Context, req GradingRequest) (string, error) {
	ctx, span := g.tracer.Start(parent, "openai.grade", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.Int("blocks", len(req.Blocks)),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.SystemPrompt,
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: toMessageParts(req.Blocks),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(g.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("openai grade: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	g.logger.Debug().
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("grading completion generated")

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// TestConnection issues a minimal completion to validate credentials and
// connectivity. It reports success as a boolean and never propagates errors.
func (g *OpenAIGrader) TestConnection(ctx context.Context) bool {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: "Say 'OK' if you can read this.",
			},
		},
		MaxTokens: 10,
	})
	if err != nil {
		g.logger.Error().Err(err).Msg("connection test failed")
		return false
	}

	if len(resp.Choices) == 0 {
		g.logger.Error().Msg("connection test returned no choices")
		return false
	}

	return strings.Contains(strings.ToLower(resp.Choices[0].Message.Content), "ok")
}

func toMessageParts(blocks []ContentBlock) []openai.ChatMessagePart {
	parts := make([]openai.ChatMessagePart, 0, len(blocks))
	for _, block := range blocks {
		switch block.Type {
		case BlockTypeImage:
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    block.ImageURL,
					Detail: openai.ImageURLDetailHigh,
				},
			})
		default:
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: block.Text,
			})
		}
	}
	return parts
}
