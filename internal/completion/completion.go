// Package completion wraps the OpenAI Responses API for the one-shot and
// multi-turn completions tutord issues outside the assistants surface:
// persona classification, title summarization and the curriculum chain.
package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message of accumulated conversation context.
type Turn struct {
	Role    string
	Content string
}

// Completer issues completions. Client is the production implementation.
type Completer interface {
	Complete(ctx context.Context, instructions string, turns []Turn) (string, error)
	CompleteStructured(ctx context.Context, name, instructions string, schema map[string]interface{}, turns []Turn) (string, error)
}

type Client struct {
	api   *openai.Client
	model string
}

// NewClient builds a completion client for the given model. Extra request
// options (e.g. a test base URL) are passed through to the SDK.
func NewClient(apiKey, model string, opts ...option.RequestOption) *Client {
	all := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	api := openai.NewClient(all...)
	return &Client{api: &api, model: model}
}

// Complete runs a free-form completion over the given turns.
func (c *Client) Complete(ctx context.Context, instructions string, turns []Turn) (string, error) {
	params := responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: inputItems(turns),
		},
	}
	if instructions != "" {
		params.Instructions = openai.String(instructions)
	}

	resp, err := c.api.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}
	out := resp.OutputText()
	if out == "" {
		return "", errors.New("completion: empty response")
	}
	return out, nil
}

// CompleteStructured runs a completion constrained to a strict JSON schema
// and returns the raw JSON text.
func (c *Client) CompleteStructured(ctx context.Context, name, instructions string, schema map[string]interface{}, turns []Turn) (string, error) {
	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:   name,
			Schema: schema,
			Strict: openai.Bool(true),
			Type:   "json_schema",
		},
	}
	params := responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: inputItems(turns),
		},
		Text: responses.ResponseTextConfigParam{Format: format},
	}
	if instructions != "" {
		params.Instructions = openai.String(instructions)
	}

	resp, err := c.api.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("completion %s: %w", name, err)
	}
	return resp.OutputText(), nil
}

// CompleteJSON runs a structured completion against the schema reflected
// from T, decodes the result into out, and returns the raw JSON for replay
// into later pipeline context. A response that does not satisfy the schema
// surfaces as a parse error.
func CompleteJSON[T any](ctx context.Context, c Completer, name, instructions string, turns []Turn, out *T) (string, error) {
	raw, err := c.CompleteStructured(ctx, name, instructions, GenerateSchema[T](), turns)
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return "", fmt.Errorf("parse %s response: %w", name, err)
	}
	return raw, nil
}

func inputItems(turns []Turn) []responses.ResponseInputItemUnionParam {
	items := make([]responses.ResponseInputItemUnionParam, 0, len(turns))
	for _, t := range turns {
		role := responses.EasyInputMessageRoleUser
		if t.Role == RoleAssistant {
			role = responses.EasyInputMessageRoleAssistant
		}
		items = append(items, responses.ResponseInputItemParamOfMessage(t.Content, role))
	}
	return items
}
