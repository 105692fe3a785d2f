package anthropic

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/lunarhue/agentic/core"
	"github.com/lunarhue/agentic/model"
)

// responseAdapter reads blocking Messages API responses.
type responseAdapter struct{}

func asMessage(resp any) (*anthropic.Message, error) {
	msg, ok := resp.(*anthropic.Message)
	if !ok {
		return nil, core.NewParsingError("unexpected response type %T", resp)
	}
	return msg, nil
}

func (responseAdapter) ExtractText(resp any) (string, error) {
	msg, err := asMessage(resp)
	if err != nil {
		return "", err
	}
	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.AsText().Text
		}
	}
	return text, nil
}

func (responseAdapter) ExtractToolCalls(resp any) ([]core.ToolCall, error) {
	msg, err := asMessage(resp)
	if err != nil {
		return nil, err
	}
	var calls []core.ToolCall
	for _, block := range msg.Content {
		if block.Type != "tool_use" {
			continue
		}
		tu := block.AsToolUse()
		calls = append(calls, core.ToolCall{
			CallID:    tu.ID,
			Name:      tu.Name,
			Arguments: toolUseArguments(tu.Input),
		})
	}
	return calls, nil
}

func (responseAdapter) ExtractTokenUsage(resp any) *core.TokenUsage {
	msg, ok := resp.(*anthropic.Message)
	if !ok {
		return nil
	}
	return mapUsage(msg.Usage)
}

func (responseAdapter) BuildToolCallMessage(resp any) ([]model.WireMessage, error) {
	msg, err := asMessage(resp)
	if err != nil {
		return nil, err
	}
	wire := model.WireMessage{"role": "assistant"}
	var text string
	var calls []map[string]any
	var thinking []map[string]any
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			text += block.AsText().Text
		case "tool_use":
			tu := block.AsToolUse()
			calls = append(calls, map[string]any{
				"id":        tu.ID,
				"name":      tu.Name,
				"arguments": rawArguments(tu.Input),
			})
		case "thinking":
			tb := block.AsThinking()
			thinking = append(thinking, map[string]any{
				"thinking":  tb.Thinking,
				"signature": tb.Signature,
			})
		}
	}
	if text != "" {
		wire["content"] = text
	}
	if len(calls) > 0 {
		wire["tool_calls"] = calls
	}
	if len(thinking) > 0 {
		wire["thinking"] = thinking
	}
	return []model.WireMessage{wire}, nil
}

func (responseAdapter) BuildToolOutputMessage(callID, name, output string) []model.WireMessage {
	return []model.WireMessage{toolResultWire(callID, name, output)}
}

func (responseAdapter) ToItems(resp any) ([]core.Item, error) {
	msg, err := asMessage(resp)
	if err != nil {
		return nil, err
	}
	var items []core.Item
	var text string
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			text += block.AsText().Text
		case "thinking":
			tb := block.AsThinking()
			items = append(items, core.ReasoningItem{
				ID:        msg.ID,
				Summary:   tb.Thinking,
				Signature: tb.Signature,
				Raw:       msg,
			})
		}
	}
	if text != "" {
		items = append(items, core.MessageItem{ID: msg.ID, Content: text, Raw: msg})
	}
	for _, block := range msg.Content {
		if block.Type != "tool_use" {
			continue
		}
		tu := block.AsToolUse()
		args, ok := core.ArgumentsMap(toolUseArguments(tu.Input))
		if !ok {
			args = map[string]any{}
		}
		items = append(items, core.ToolCallItem{
			ID:        tu.ID,
			CallID:    tu.ID,
			Name:      tu.Name,
			Arguments: args,
			Raw:       msg,
		})
	}
	return items, nil
}

// toolUseArguments normalizes whatever shape the SDK decoded tool input
// into.
func toolUseArguments(input any) any {
	switch v := input.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return v
	case json.RawMessage:
		if len(v) == 0 {
			return map[string]any{}
		}
		return core.NormalizeArguments(string(v))
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return map[string]any{}
		}
		return core.NormalizeArguments(string(data))
	}
}

// rawArguments renders tool input back to its JSON string form for the wire.
func rawArguments(input any) string {
	if input == nil {
		return "{}"
	}
	if raw, ok := input.(json.RawMessage); ok {
		if len(raw) == 0 {
			return "{}"
		}
		return string(raw)
	}
	data, err := json.Marshal(input)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// mapUsage copies the API's already independent token buckets. No total is
// reported, so downstream accounting derives it from the buckets.
func mapUsage(u anthropic.Usage) *core.TokenUsage {
	usage := &core.TokenUsage{}
	if u.InputTokens > 0 {
		usage.InputTokens = core.Count(u.InputTokens)
	}
	if u.OutputTokens > 0 {
		usage.OutputTokens = core.Count(u.OutputTokens)
	}
	if u.CacheReadInputTokens > 0 {
		usage.CachedReadTokens = core.Count(u.CacheReadInputTokens)
	}
	if u.CacheCreationInputTokens > 0 {
		usage.CachedWriteTokens = core.Count(u.CacheCreationInputTokens)
	}
	if usage.IsZero() {
		return nil
	}
	return usage
}
