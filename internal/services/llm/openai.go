package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rs/zerolog/log"
)

const maxErrorBody = 600

// ClientConfig configures an OpenAI-compatible endpoint (OpenAI itself or
// OpenRouter).
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// Headers are sent with every request, e.g. OpenRouter attribution.
	Headers map[string]string
}

type OpenAIClient struct {
	client openai.Client
	cfg    ClientConfig
}

// NewOpenAIClient creates a gateway. An empty API key is accepted; Complete
// then fails with ErrMissingCredentials.
func NewOpenAIClient(cfg ClientConfig) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}
	for k, v := range cfg.Headers {
		opts = append(opts, option.WithHeader(k, v))
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		cfg:    cfg,
	}
}

func (c *OpenAIClient) Configured() bool {
	return c.cfg.APIKey != ""
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if !c.Configured() {
		return "", ErrMissingCredentials
	}

	callID := uuid.New().String()
	start := time.Now()

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.User))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.cfg.Model),
		Messages:    messages,
		Temperature: openai.Float(req.Options.Temperature),
	}
	if req.Options.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.Options.MaxTokens))
	}

	var reqOpts []option.RequestOption
	if req.Options.WebSearch {
		reqOpts = append(reqOpts, option.WithJSONSet("web_search", true))
	}

	log.Info().
		Str("call_id", callID).
		Str("model", c.cfg.Model).
		Bool("web_search", req.Options.WebSearch).
		Int("prompt_chars", len(req.System)+len(req.User)).
		Msg("LLM request started")

	resp, err := c.client.Chat.Completions.New(ctx, params, reqOpts...)
	if err != nil {
		log.Error().Err(err).
			Str("call_id", callID).
			Dur("elapsed", time.Since(start)).
			Msg("LLM request failed")
		return "", classifyError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		log.Error().Str("call_id", callID).Msg("LLM response had no message content")
		return "", ErrMalformedResponse
	}

	log.Info().
		Str("call_id", callID).
		Dur("elapsed", time.Since(start)).
		Int("content_chars", len(resp.Choices[0].Message.Content)).
		Msg("LLM request completed")

	return resp.Choices[0].Message.Content, nil
}

func classifyError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &StatusError{StatusCode: apiErr.StatusCode, Body: truncate(responseBody(apiErr), maxErrorBody)}
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}

// responseBody returns the raw upstream body, which the SDK re-buffers on
// error responses.
func responseBody(apiErr *openai.Error) string {
	if apiErr.Response == nil || apiErr.Response.Body == nil {
		return ""
	}
	body, err := io.ReadAll(apiErr.Response.Body)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(body))
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
