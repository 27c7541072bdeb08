package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// AzureLLMClient implements LLMClient against an Azure OpenAI deployment.
type AzureLLMClient struct {
	client     *openai.Client
	deployment string
}

// AzureConfig holds the Azure OpenAI connection settings.
type AzureConfig struct {
	Endpoint   string
	APIKey     string
	APIVersion string
	Deployment string
}

// NewAzureLLMClient creates an Azure OpenAI chat client.
func NewAzureLLMClient(cfg AzureConfig) (*AzureLLMClient, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("conversation: azure openai endpoint and api key are required")
	}
	if strings.TrimSpace(cfg.Deployment) == "" {
		return nil, errors.New("conversation: azure openai deployment is required")
	}

	clientCfg := openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
	if cfg.APIVersion != "" {
		clientCfg.APIVersion = cfg.APIVersion
	}

	return &AzureLLMClient{
		client:     openai.NewClientWithConfig(clientCfg),
		deployment: cfg.Deployment,
	}, nil
}

// Complete sends a completion request to the Azure deployment.
func (c *AzureLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+len(req.System))
	for _, sys := range req.System {
		if strings.TrimSpace(sys) == "" {
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: sys,
		})
	}
	for _, msg := range req.Messages {
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case ChatRoleAssistant:
			role = openai.ChatMessageRoleAssistant
		case ChatRoleSystem:
			role = openai.ChatMessageRoleSystem
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.deployment,
		Messages:    messages,
		MaxTokens:   int(req.MaxTokens),
		Temperature: req.Temperature,
	})
	if err != nil {
		return LLMResponse{}, fmt.Errorf("conversation: azure openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return LLMResponse{}, errors.New("conversation: azure openai returned no choices")
	}
	return LLMResponse{Text: strings.TrimSpace(resp.Choices[0].Message.Content)}, nil
}
