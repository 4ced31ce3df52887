package categorizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/txn-categorizer/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// ContentGenerator is the slice of *genai.GenerativeModel the oracle needs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiOracle asks Gemini to pick a category among the known ones.
type GeminiOracle struct {
	model   ContentGenerator
	limiter *rate.Limiter
	timeout time.Duration
	logger  logging.Logger
}

// NewGeminiModel opens a client for apiKey and returns the named model along
// with the client so the caller can close it.
func NewGeminiModel(ctx context.Context, apiKey, modelName string) (*genai.Client, *genai.GenerativeModel, error) {
	if apiKey == "" {
		return nil, nil, errors.New("gemini API key is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)
	return client, model, nil
}

// NewGeminiOracle wraps model. requestsPerMinute <= 0 disables throttling and
// timeout <= 0 disables the per-call deadline.
func NewGeminiOracle(model ContentGenerator, requestsPerMinute int, timeout time.Duration, logger logging.Logger) *GeminiOracle {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	limit := rate.Inf
	burst := 1
	if requestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
	}
	return &GeminiOracle{
		model:   model,
		limiter: rate.NewLimiter(limit, burst),
		timeout: timeout,
		logger:  logger.WithField(logging.FieldOracle, "gemini"),
	}
}

func (o *GeminiOracle) Name() string { return "gemini" }

// Resolve returns Accept when Gemini's answer maps onto a known category and
// Skip otherwise.
func (o *GeminiOracle) Resolve(ctx context.Context, description string, known []string) (Decision, error) {
	if len(known) == 0 {
		return Skip(), nil
	}
	if err := o.limiter.Wait(ctx); err != nil {
		return Skip(), fmt.Errorf("rate limiter: %w", err)
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	resp, err := o.model.GenerateContent(ctx, genai.Text(buildPrompt(description, known)))
	if err != nil {
		return Skip(), fmt.Errorf("gemini API error: %w", err)
	}
	answer, err := responseText(resp)
	if err != nil {
		return Skip(), err
	}

	category, ok := SnapToKnownCategory(answer, known)
	if !ok {
		o.logger.WithFields(
			logging.Field{Key: logging.FieldDescription, Value: description},
			logging.Field{Key: "suggestion", Value: answer},
		).Warn("Gemini suggested a category outside the known set")
		return Skip(), nil
	}

	o.logger.WithFields(
		logging.Field{Key: logging.FieldDescription, Value: description},
		logging.Field{Key: logging.FieldCategory, Value: category},
	).Debug("Gemini categorized description")
	return Accept(category), nil
}

func buildPrompt(description string, known []string) string {
	return fmt.Sprintf(`Given this financial transaction description: '%s'

Choose the most appropriate category from this list:
%s

Respond with ONLY the category name, nothing else.`, description, strings.Join(known, "\n"))
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response from Gemini API")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errors.New("empty response from Gemini API")
	}
	return strings.TrimSpace(b.String()), nil
}
