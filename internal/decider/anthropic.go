// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package decider

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/pdiddy/scipathbench/pkg/types"
)

// Anthropic is a Claude-backed decision maker using the official SDK.
type Anthropic struct {
	client *anthropic.Client
	model  string
}

// NewAnthropic builds the maker from cfg. The API key is required.
func NewAnthropic(cfg types.DeciderConfig) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic decider requires an API key")
	}
	if cfg.Model == "" {
		return nil, errors.New("anthropic decider requires a model")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := anthropic.NewClient(opts...)
	return &Anthropic{client: &client, model: cfg.Model}, nil
}

// Name implements Maker.
func (m *Anthropic) Name() string { return "anthropic" }

// Decide implements Maker.
func (m *Anthropic) Decide(ctx context.Context, req Request) (Decision, error) {
	message, err := m.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(m.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(req))),
		},
	})
	if err != nil {
		return Decision{}, fmt.Errorf("creating message: %w", err)
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return Decision{}, fmt.Errorf("%w: empty response", ErrMalformed)
	}

	return parseDecision(text, req)
}
