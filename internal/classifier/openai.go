package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/repository"
)

var _ repository.Classifier = (*OpenAIClassifier)(nil)

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
	MaxRetries     = 3
	BaseBackoff    = 2 * time.Second
	MaxBackoff     = 32 * time.Second
)

// ErrAPIKeyNotSet is returned when no OpenAI API key is configured.
var ErrAPIKeyNotSet = errors.New("classifier: OpenAI API key not set")

// Config configures the OpenAI-backed classifier.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// OpenAIClassifier asks a chat completion model which items are leads.
type OpenAIClassifier struct {
	client      openai.Client
	model       string
	timeout     time.Duration
	baseBackoff time.Duration
	logger      *zap.Logger
}

// NewOpenAIClassifier creates a classifier. Rate limit retries are handled here,
// so the SDK's own retries are disabled.
func NewOpenAIClassifier(cfg Config, logger *zap.Logger) (*OpenAIClassifier, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClassifier{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		baseBackoff: BaseBackoff,
		logger:      logger,
	}, nil
}

// Classify sends the query and content to the model and interprets the answer.
// API failures come back as an error classification; only cancellation is returned as an error.
func (c *OpenAIClassifier) Classify(ctx context.Context, query string, posts []domain.Post, comments []domain.Comment) (domain.Classification, error) {
	userPrompt, err := buildUserPrompt(query, posts, comments)
	if err != nil {
		return domain.ClassificationFailure(err.Error()), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	content, err := c.completeWithRetry(callCtx, userPrompt)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Classification{}, ctx.Err()
		}
		c.logger.Error("Classification request failed", zap.Error(err))
		return domain.ClassificationFailure(err.Error()), nil
	}

	result := Interpret(content)
	c.logger.Info("Classification finished",
		zap.String("kind", string(result.Kind)),
		zap.Int("post_leads", len(result.PostLeads)),
		zap.Int("comment_leads", len(result.CommentLeads)),
	)
	return result, nil
}

func (c *OpenAIClassifier) completeWithRetry(ctx context.Context, userPrompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * c.baseBackoff
			if backoff > MaxBackoff {
				backoff = MaxBackoff
			}
			c.logger.Warn("Rate limited by model API, backing off",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: shared.ChatModel(c.model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemPrompt),
				openai.UserMessage(userPrompt),
			},
		})
		if err != nil {
			lastErr = err
			if isRateLimitError(err) {
				continue
			}
			return "", fmt.Errorf("classifier: chat completion: %w", err)
		}
		if len(completion.Choices) == 0 {
			return "", errors.New("classifier: no completion choices returned")
		}
		return completion.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("classifier: max retries exceeded: %w", lastErr)
}

func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}
