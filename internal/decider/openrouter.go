// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package decider

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/pdiddy/scipathbench/pkg/types"
)

// defaultOpenRouterBaseURL targets OpenRouter's OpenAI-compatible endpoint.
const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouter is a model-backed decision maker speaking the OpenAI chat
// completions protocol. With the default base URL it reaches any model
// OpenRouter hosts; pointing BaseURL at api.openai.com works the same way.
type OpenRouter struct {
	client *openai.Client
	model  string
}

// NewOpenRouter builds the maker from cfg. The API key is required.
func NewOpenRouter(cfg types.DeciderConfig) (*OpenRouter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter decider requires an API key")
	}
	if cfg.Model == "" {
		return nil, errors.New("openrouter decider requires a model")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
	)
	return &OpenRouter{client: &client, model: cfg.Model}, nil
}

// Name implements Maker.
func (m *OpenRouter) Name() string { return "openrouter" }

// Decide implements Maker. Transport failures surface as plain errors;
// unparseable model output surfaces as ErrMalformed so the engine can
// re-request with a corrective note.
func (m *OpenRouter) Decide(ctx context.Context, req Request) (Decision, error) {
	completion, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(m.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(buildPrompt(req)),
					},
				},
			},
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: openai.Ptr(shared.NewResponseFormatJSONObjectParam()),
		},
	})
	if err != nil {
		return Decision{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Decision{}, fmt.Errorf("%w: empty completion", ErrMalformed)
	}

	return parseDecision(completion.Choices[0].Message.Content, req)
}
