package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// GenerateRequest is one schema-constrained generation call.
type GenerateRequest struct {
	Instructions      string
	Input             string
	SchemaName        string
	SchemaDescription string
	Schema            map[string]any
}

// StructuredGenerator returns the raw JSON text produced for a request.
type StructuredGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

type responsesGenerator struct {
	client *openai.Client
	model  string
}

// NewResponsesGenerator builds a generator on the OpenAI Responses API.
// SDK-level retries are disabled; the Agent owns the retry budget.
func NewResponsesGenerator(cfg Config) StructuredGenerator {
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithMaxRetries(0),
	}
	if trimmed := strings.TrimRight(cfg.BaseURL, "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	client := openai.NewClient(opts...)

	model := cfg.Model
	if model == "" {
		model = string(shared.ChatModelGPT4o)
	}
	return &responsesGenerator{client: &client, model: model}
}

func (g *responsesGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	params := responses.ResponseNewParams{
		Model:        shared.ResponsesModel(g.model),
		Instructions: openai.String(req.Instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(req.Input),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        req.SchemaName,
					Strict:      param.NewOpt(true),
					Schema:      req.Schema,
					Description: param.NewOpt(req.SchemaDescription),
				},
			},
		},
	}

	resp, err := g.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return "", fmt.Errorf("empty response content")
	}
	return content, nil
}
