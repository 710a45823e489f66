package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"archintel/domain/services/decision"
	pkgerrors "archintel/pkg/errors"
)

const systemPrompt = "You are an enterprise architect. Explain architecture decisions to " +
	"stakeholders in at most two short paragraphs. Do not change the recommended option " +
	"and do not invent numbers that are not in the request."

// ChatClient is the subset of the OpenAI client used for reasoning
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ReasonerConfig holds the model parameters and breaker settings
type ReasonerConfig struct {
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration

	// Circuit breaker
	MaxRequests      uint32
	Interval         time.Duration
	OpenTimeout      time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultReasonerConfig returns a default configuration for the reasoner
func DefaultReasonerConfig(model string) ReasonerConfig {
	return ReasonerConfig{
		Model:            model,
		Temperature:      0.2,
		MaxTokens:        400,
		Timeout:          20 * time.Second,
		MaxRequests:      1,
		Interval:         60 * time.Second,
		OpenTimeout:      60 * time.Second,
		FailureThreshold: 0.5,
		MinRequests:      3,
	}
}

// OpenAIReasoner rewrites decision reasoning with a chat model. Calls are
// bounded by a timeout and guarded by a circuit breaker so an unavailable
// provider fails fast and the engine keeps its rule-based text.
type OpenAIReasoner struct {
	client  ChatClient
	config  ReasonerConfig
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewOpenAIReasoner creates a reasoner over an OpenAI chat client
func NewOpenAIReasoner(client ChatClient, cfg ReasonerConfig, logger *zap.Logger) *OpenAIReasoner {
	if logger == nil {
		logger = zap.NewNop()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openai-reasoning",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &OpenAIReasoner{
		client:  client,
		config:  cfg,
		breaker: breaker,
		logger:  logger,
	}
}

// NewOpenAIClient builds the go-openai client, optionally against a compatible base URL
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

var _ decision.ReasoningEnricher = (*OpenAIReasoner)(nil)

// EnrichReasoning asks the model to restate the baseline reasoning
func (r *OpenAIReasoner) EnrichReasoning(ctx context.Context, req decision.ReasoningRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	out, err := r.breaker.Execute(func() (interface{}, error) {
		resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       r.config.Model,
			Temperature: r.config.Temperature,
			MaxTokens:   r.config.MaxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(req)},
			},
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("model returned no choices")
		}
		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	})
	if err != nil {
		r.logger.Warn("Reasoning enrichment failed",
			zap.String("model", r.config.Model),
			zap.String("breakerState", r.breaker.State().String()),
			zap.Error(err),
		)
		return "", pkgerrors.NewExternalError("openai", err)
	}

	text := out.(string)
	r.logger.Debug("Reasoning enriched",
		zap.String("model", r.config.Model),
		zap.Int("chars", len(text)),
	)
	return text, nil
}

// BuildPrompt renders the decision for the model
func BuildPrompt(req decision.ReasoningRequest) string {
	var b strings.Builder
	dctx := req.Context

	fmt.Fprintf(&b, "Phase: %s\nLayer: %s\nDecision type: %s\n", dctx.Phase, dctx.Layer, dctx.Type)
	if dctx.Scope != "" {
		fmt.Fprintf(&b, "Scope: %s\n", dctx.Scope)
	}
	fmt.Fprintf(&b, "Urgency: %s\n", dctx.Urgency)
	writeList(&b, "Business drivers", dctx.BusinessDrivers)
	writeList(&b, "Constraints", dctx.Constraints)
	writeList(&b, "Known gaps", dctx.KnownGaps)

	b.WriteString("\nRanked options:\n")
	for _, option := range req.Alternatives {
		fmt.Fprintf(&b, "%d. %s (score %.3f, cost %s, %d days)\n",
			option.Rank, option.Option.Name, option.Score,
			decision.FormatCost(option.Option.Cost), option.Option.TimeToImplement)
	}

	fmt.Fprintf(&b, "\nRecommended: %s with %s confidence.\n", req.Recommended.Option.Name, req.Confidence)
	fmt.Fprintf(&b, "Baseline reasoning: %s\n", req.BaselineReasoning)
	b.WriteString("\nRewrite the reasoning for stakeholders.")
	return b.String()
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, strings.Join(items, "; "))
}
