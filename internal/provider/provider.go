// Package provider talks to the external generation services. Each call is a single round trip with no
// retries; failures come back as *scene.Error.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kayz/veoscene/internal/ai"
	"github.com/kayz/veoscene/internal/scene"
)

// Request is one structured generation request.
type Request struct {
	Model       string
	System      string
	User        string
	Temperature float32
	MaxTokens   int
	// JSONSchema asks for schema-constrained output when the service supports it.
	JSONSchema bool
}

// Provider returns the raw text of the service's first reply choice.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// New builds the client for preset. The key is captured by the client for its lifetime only.
func New(preset *ai.ProviderConfig, apiKey string) (Provider, error) {
	if preset == nil {
		return nil, scene.Configurationf("no provider selected")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, scene.Configurationf("API key is required")
	}

	switch preset.Type {
	case ai.TypeOpenAI:
		return newOpenAICompat(preset, apiKey), nil
	case ai.TypeAnthropic:
		return newAnthropic(preset, apiKey), nil
	default:
		return nil, scene.Configurationf("provider %s has unsupported type %q", preset.Name, preset.Type)
	}
}

// Factory matches New and lets callers substitute test doubles.
type Factory func(preset *ai.ProviderConfig, apiKey string) (Provider, error)

func emptyReply() error {
	return scene.Parsef(nil, "No content received from API")
}

// contextError maps cancellation and deadlines onto transport errors.
func contextError(ctx context.Context, name string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return scene.Transport(0, fmt.Sprintf("%s request timed out", name), err)
		}
		return scene.Transport(0, fmt.Sprintf("%s request canceled", name), err)
	}
	return nil
}
