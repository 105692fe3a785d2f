package openai

import (
	"github.com/google/uuid"
	"github.com/openai/openai-go"

	"github.com/lunarhue/agentic/core"
	"github.com/lunarhue/agentic/model"
)

// responseAdapter reads blocking chat completions.
type responseAdapter struct{}

func asCompletion(resp any) (*openai.ChatCompletion, error) {
	completion, ok := resp.(*openai.ChatCompletion)
	if !ok {
		return nil, core.NewParsingError("unexpected response type %T", resp)
	}
	if len(completion.Choices) == 0 {
		return nil, core.NewParsingError("chat completion contained no choices")
	}
	return completion, nil
}

func (responseAdapter) ExtractText(resp any) (string, error) {
	completion, err := asCompletion(resp)
	if err != nil {
		return "", err
	}
	return completion.Choices[0].Message.Content, nil
}

func (responseAdapter) ExtractToolCalls(resp any) ([]core.ToolCall, error) {
	completion, err := asCompletion(resp)
	if err != nil {
		return nil, err
	}
	var calls []core.ToolCall
	for _, tc := range completion.Choices[0].Message.ToolCalls {
		calls = append(calls, core.ToolCall{
			CallID:    tc.ID,
			Name:      tc.Function.Name,
			Arguments: core.NormalizeArguments(tc.Function.Arguments),
		})
	}
	return calls, nil
}

func (responseAdapter) ExtractTokenUsage(resp any) *core.TokenUsage {
	completion, ok := resp.(*openai.ChatCompletion)
	if !ok {
		return nil
	}
	return mapUsage(completion.Usage)
}

func (responseAdapter) BuildToolCallMessage(resp any) ([]model.WireMessage, error) {
	completion, err := asCompletion(resp)
	if err != nil {
		return nil, err
	}
	msg := completion.Choices[0].Message
	wire := model.WireMessage{"role": "assistant"}
	if msg.Content != "" {
		wire["content"] = msg.Content
	}
	var calls []map[string]any
	for _, tc := range msg.ToolCalls {
		calls = append(calls, map[string]any{
			"id":        tc.ID,
			"name":      tc.Function.Name,
			"arguments": tc.Function.Arguments,
		})
	}
	if len(calls) > 0 {
		wire["tool_calls"] = calls
	}
	return []model.WireMessage{wire}, nil
}

func (responseAdapter) BuildToolOutputMessage(callID, name, output string) []model.WireMessage {
	return []model.WireMessage{toolOutputWire(callID, name, output)}
}

func (responseAdapter) ToItems(resp any) ([]core.Item, error) {
	completion, err := asCompletion(resp)
	if err != nil {
		return nil, err
	}
	msg := completion.Choices[0].Message
	var items []core.Item
	if msg.Content != "" {
		items = append(items, core.MessageItem{
			ID:      completion.ID,
			Content: msg.Content,
			Raw:     completion,
		})
	}
	for _, tc := range msg.ToolCalls {
		args, ok := core.ArgumentsMap(core.NormalizeArguments(tc.Function.Arguments))
		if !ok {
			args = map[string]any{}
		}
		itemID := tc.ID
		if itemID == "" {
			itemID = uuid.NewString()
		}
		items = append(items, core.ToolCallItem{
			ID:        itemID,
			CallID:    tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
			Raw:       tc,
		})
	}
	return items, nil
}

// mapUsage reshapes the SDK's rolled-up counters into independent buckets.
// The API reports cached tokens inside prompt_tokens and reasoning tokens
// inside completion_tokens, so both are subtracted out; the reported total
// is carried verbatim.
func mapUsage(u openai.CompletionUsage) *core.TokenUsage {
	cached := u.PromptTokensDetails.CachedTokens
	reasoning := u.CompletionTokensDetails.ReasoningTokens
	usage := &core.TokenUsage{}
	if n := u.PromptTokens - cached; n > 0 {
		usage.InputTokens = core.Count(n)
	}
	if n := u.CompletionTokens - reasoning; n > 0 {
		usage.OutputTokens = core.Count(n)
	}
	if cached > 0 {
		usage.CachedReadTokens = core.Count(cached)
	}
	if reasoning > 0 {
		usage.ReasoningTokens = core.Count(reasoning)
	}
	if u.TotalTokens > 0 {
		usage.TotalTokens = core.Count(u.TotalTokens)
	}
	if usage.IsZero() {
		return nil
	}
	return usage
}
