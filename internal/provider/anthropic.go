package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/kayz/veoscene/internal/ai"
	"github.com/kayz/veoscene/internal/logger"
	"github.com/kayz/veoscene/internal/scene"
)

// jsonOnlySuffix is appended to the system text since the messages API has no JSON mode.
const jsonOnlySuffix = "\n\nRespond with the JSON object only. Do not wrap it in code fences."

type AnthropicProvider struct {
	client       *anthropic.Client
	providerName string
}

func newAnthropic(preset *ai.ProviderConfig, apiKey string) *AnthropicProvider {
	var opts []anthropic.ClientOption
	if preset.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(preset.BaseURL))
	}
	return &AnthropicProvider{
		client:       anthropic.NewClient(apiKey, opts...),
		providerName: preset.Name,
	}
}

func (p *AnthropicProvider) Name() string {
	return p.providerName
}

func (p *AnthropicProvider) Complete(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8000
	}
	temperature := req.Temperature

	resp, err := p.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(req.Model),
		System:      req.System + jsonOnlySuffix,
		Messages:    []anthropic.Message{anthropic.NewUserTextMessage(req.User)},
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", p.mapError(ctx, err)
	}

	content := stripCodeFence(resp.GetFirstContentText())
	if strings.TrimSpace(content) == "" {
		return "", emptyReply()
	}
	logger.Debug("[%s] message finished: stop=%s in=%d out=%d", p.providerName, resp.StopReason, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	return content, nil
}

func (p *AnthropicProvider) mapError(ctx context.Context, err error) error {
	if mapped := contextError(ctx, p.providerName, err); mapped != nil {
		return mapped
	}

	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		return scene.Transport(0, strings.TrimSpace(apiErr.Message), err)
	}
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		return scene.Transport(reqErr.StatusCode, "", err)
	}
	return scene.Transport(0, "", err)
}

// stripCodeFence removes a ```json fence around the whole reply, if present.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") || !strings.HasSuffix(t, "```") || len(t) < 6 {
		return s
	}
	t = strings.TrimSuffix(strings.TrimPrefix(t, "```"), "```")
	if i := strings.IndexByte(t, '\n'); i >= 0 && !strings.ContainsAny(t[:i], "{[") {
		t = t[i+1:]
	}
	return strings.TrimSpace(t)
}
