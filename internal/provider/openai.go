package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/kayz/veoscene/internal/ai"
	"github.com/kayz/veoscene/internal/logger"
	"github.com/kayz/veoscene/internal/scene"
)

// OpenAICompatProvider serves every preset speaking the chat completions protocol.
type OpenAICompatProvider struct {
	client       *openai.Client
	providerName string
	schemaOK     bool
}

func newOpenAICompat(preset *ai.ProviderConfig, apiKey string) *OpenAICompatProvider {
	config := openai.DefaultConfig(apiKey)
	if preset.BaseURL != "" {
		config.BaseURL = preset.BaseURL
	}

	return &OpenAICompatProvider{
		client:       openai.NewClientWithConfig(config),
		providerName: preset.Name,
		schemaOK:     preset.SupportsJSONSchema,
	}
}

func (p *OpenAICompatProvider) Name() string {
	return p.providerName
}

func (p *OpenAICompatProvider) Complete(ctx context.Context, req Request) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature:    req.Temperature,
		MaxTokens:      req.MaxTokens,
		ResponseFormat: p.responseFormat(req.JSONSchema),
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", p.mapError(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return "", emptyReply()
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", emptyReply()
	}
	logger.Debug("[%s] completion finished: model=%s finish=%s tokens=%d", p.providerName, resp.Model, resp.Choices[0].FinishReason, resp.Usage.TotalTokens)
	return content, nil
}

func (p *OpenAICompatProvider) responseFormat(wantSchema bool) *openai.ChatCompletionResponseFormat {
	if wantSchema && p.schemaOK {
		return &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "generated_scene",
				Schema: scene.Schema(),
				Strict: true,
			},
		}
	}
	if wantSchema {
		logger.Debug("[%s] json_schema output not supported, using json_object", p.providerName)
	}
	return &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
}

func (p *OpenAICompatProvider) mapError(ctx context.Context, err error) error {
	if mapped := contextError(ctx, p.providerName, err); mapped != nil {
		return mapped
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return scene.Transport(apiErr.HTTPStatusCode, strings.TrimSpace(apiErr.Message), err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return scene.Transport(reqErr.HTTPStatusCode, "", err)
	}
	return scene.Transport(0, "", err)
}
