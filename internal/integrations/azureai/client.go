// Package azureai sends chat completions to an Azure OpenAI deployment.
package azureai

import (
	"context"
	"errors"
	"strings"

	questionsdomain "book-club-go/internal/domain/questions"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
)

const (
	defaultAPIVersion = "2024-06-01"
	defaultMaxTokens  = 1000
	temperature       = 0.8
)

var errNoChoices = errors.New("azure openai: response has no choices")

type Config struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
	MaxTokens  int64
}

type Client struct {
	api        openai.Client
	deployment string
	maxTokens  int64
}

func New(cfg Config, opts ...option.RequestOption) *Client {
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	options := []option.RequestOption{
		azure.WithEndpoint(strings.TrimRight(cfg.Endpoint, "/"), apiVersion),
		azure.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	options = append(options, opts...)

	return &Client{
		api:        openai.NewClient(options...),
		deployment: cfg.Deployment,
		maxTokens:  maxTokens,
	}
}

func (c *Client) Complete(ctx context.Context, messages []questionsdomain.Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.deployment),
		Messages:    toParams(messages),
		MaxTokens:   openai.Int(c.maxTokens),
		Temperature: openai.Float(temperature),
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

func toParams(messages []questionsdomain.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case questionsdomain.RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}
	return result
}
