package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"joel-backend/internal/llm"
	"joel-backend/internal/shared/telemetry"
	"joel-backend/internal/tools"
)

const (
	defaultMaxTokens = 8192
	// Hard cap on model round-trips per run; tool-use loops must terminate
	// even when the model keeps asking for tools.
	maxIterations = 8
)

// Agent drives the Anthropic messages API with a tool-use loop.
type Agent struct {
	client    sdk.Client
	model     string
	maxTokens int64
	registry  *tools.Registry
}

// New builds the agent. The registry supplies the tool implementations
// dispatched during the run.
func New(apiKey, model string, registry *tools.Registry) *Agent {
	return &Agent{
		client:    sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: defaultMaxTokens,
		registry:  registry,
	}
}

// Run executes the agent loop: send the prompt, dispatch any requested
// tools, feed results back, and return the final text once the model stops.
func (a *Agent) Run(ctx context.Context, input llm.RunInput) (string, error) {
	selected := a.registry.Select(input.Tools)
	toolParams := buildToolParams(selected)
	byKey := map[string]tools.Tool{}
	for _, t := range selected {
		byKey[t.Key()] = t
	}

	messages := []sdk.MessageParam{
		sdk.NewUserMessage(sdk.NewTextBlock(input.User)),
	}

	var finalText strings.Builder
	for iteration := 0; iteration < maxIterations; iteration++ {
		params := sdk.MessageNewParams{
			Model:     sdk.Model(a.model),
			MaxTokens: a.maxTokens,
			System:    []sdk.TextBlockParam{{Text: input.System}},
			Messages:  messages,
		}
		if len(toolParams) > 0 {
			params.Tools = toolParams
		}

		resp, err := a.client.Messages.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("anthropic messages: %w", err)
		}

		finalText.Reset()
		var toolResults []sdk.ContentBlockParamUnion
		for _, block := range resp.Content {
			switch variant := block.AsAny().(type) {
			case sdk.TextBlock:
				finalText.WriteString(variant.Text)
			case sdk.ToolUseBlock:
				result, isError := a.dispatch(ctx, byKey, variant.Name, []byte(variant.JSON.Input.Raw()))
				toolResults = append(toolResults, sdk.NewToolResultBlock(variant.ID, result, isError))
			}
		}

		if resp.StopReason != "tool_use" || len(toolResults) == 0 {
			break
		}

		messages = append(messages, resp.ToParam())
		messages = append(messages, sdk.NewUserMessage(toolResults...))
	}

	text := strings.TrimSpace(finalText.String())
	if text == "" {
		return "", llm.ErrEmptyOutput
	}
	return text, nil
}

func (a *Agent) dispatch(ctx context.Context, byKey map[string]tools.Tool, name string, rawInput []byte) (string, bool) {
	tool, ok := byKey[name]
	if !ok {
		return "unknown tool: " + name, true
	}

	var input struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(rawInput, &input); err != nil || strings.TrimSpace(input.Query) == "" {
		return "tool input must contain a query string", true
	}

	result, err := tool.Run(ctx, input.Query)
	if err != nil {
		telemetry.Error("agent.tool_failed", map[string]any{
			"tool":  name,
			"error": err.Error(),
		})
		return "tool error: " + err.Error(), true
	}
	return result, false
}

func buildToolParams(selected []tools.Tool) []sdk.ToolUnionParam {
	var out []sdk.ToolUnionParam
	for _, t := range selected {
		tool := sdk.ToolParam{
			Name:        t.Key(),
			Description: sdk.String(t.Description()),
			InputSchema: sdk.ToolInputSchemaParam{
				Properties: map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Termo ou expressão de busca",
					},
				},
				Required: []string{"query"},
			},
		}
		out = append(out, sdk.ToolUnionParam{OfTool: &tool})
	}
	return out
}

var _ llm.Agent = (*Agent)(nil)
