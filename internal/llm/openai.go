package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// openaiProvider also serves OpenRouter, which speaks the same API.
type openaiProvider struct {
	name   string
	client *openai.Client
	model  string
}

func newOpenAI(name string, cfg Config) (*openaiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: API key is required", name)
	}
	c := openai.DefaultConfig(cfg.APIKey)
	switch {
	case cfg.BaseURL != "":
		c.BaseURL = cfg.BaseURL
	case name == ProviderOpenRouter:
		c.BaseURL = openRouterBaseURL
	}
	return &openaiProvider{name: name, client: openai.NewClientWithConfig(c), model: cfg.Model}, nil
}

func (p *openaiProvider) Name() string  { return p.name }
func (p *openaiProvider) Model() string { return p.model }

func (p *openaiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	chat := openai.ChatCompletionRequest{
		Model:               p.model,
		Messages:            messages,
		MaxCompletionTokens: maxTokens(req),
		Temperature:         float32(req.Temperature),
	}
	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("marshal schema %s: %w", req.Schema.Name, err)
		}
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: json.RawMessage(def),
				Strict: true,
			},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, statusError(p.name, apiErr.HTTPStatusCode, err)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return nil, statusError(p.name, reqErr.HTTPStatusCode, err)
		}
		return nil, &Error{Kind: KindUnavailable, Provider: p.name, Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Kind: KindInvalid, Provider: p.name, Err: errors.New("no choices")}
	}

	choice := resp.Choices[0]
	return finish(p.name, req, &Response{
		Content: json.RawMessage(choice.Message.Content),
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		Model:     resp.Model,
		Truncated: choice.FinishReason == openai.FinishReasonLength,
	})
}
