package anthropic

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/lunarhue/agentic/core"
	"github.com/lunarhue/agentic/model"
)

// Normalize converts caller input into Anthropic-shaped wire messages.
func (m *Model) Normalize(input model.Input) ([]model.WireMessage, error) {
	switch in := input.(type) {
	case model.TextInput:
		return []model.WireMessage{{"role": "user", "content": string(in)}}, nil
	case model.MessagesInput:
		out := make([]model.WireMessage, len(in))
		copy(out, in)
		return out, nil
	case model.ConversationInput:
		if in.Conversation == nil {
			return nil, core.NewInputError("conversation input is nil")
		}
		if err := in.Conversation.Err(); err != nil {
			return nil, err
		}
		var out []model.WireMessage
		for _, msg := range in.Conversation.Messages() {
			wire, err := serializeMessage(msg)
			if err != nil {
				return nil, err
			}
			out = append(out, wire...)
		}
		return out, nil
	case nil:
		return nil, core.NewInputError("input must not be nil")
	default:
		return nil, core.NewInputError("unsupported input type %T", input)
	}
}

func serializeMessage(msg core.Message) ([]model.WireMessage, error) {
	switch msg.Role {
	case core.RoleSystem:
		var text string
		for _, block := range msg.Blocks {
			if b, ok := block.(core.TextBlock); ok {
				text += b.Text
			}
		}
		return []model.WireMessage{{"role": "system", "content": text}}, nil

	case core.RoleAssistant:
		wire := model.WireMessage{"role": "assistant"}
		var text string
		var calls []map[string]any
		var thinking []map[string]any
		for _, block := range msg.Blocks {
			switch b := block.(type) {
			case core.TextBlock:
				text += b.Text
			case core.ToolCallBlock:
				args, err := json.Marshal(b.Arguments)
				if err != nil {
					return nil, core.NewSerializationError("tool call arguments for '%s' are not serializable", b.Name).Wrap(err)
				}
				calls = append(calls, map[string]any{
					"id":        b.CallID,
					"name":      b.Name,
					"arguments": string(args),
				})
			case core.ReasoningBlock:
				if b.Signature == "" {
					return nil, core.NewSerializationError("Anthropic thinking replay requires a signature")
				}
				thinking = append(thinking, map[string]any{
					"thinking":  b.Summary,
					"signature": b.Signature,
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

	case core.RoleUser:
		var out []model.WireMessage
		var text string
		flush := func() {
			if text != "" {
				out = append(out, model.WireMessage{"role": "user", "content": text})
				text = ""
			}
		}
		for _, block := range msg.Blocks {
			switch b := block.(type) {
			case core.TextBlock:
				text += b.Text
			case core.ToolOutputBlock:
				flush()
				output, err := outputText(b)
				if err != nil {
					return nil, err
				}
				wire := toolResultWire(b.CallID, b.Name, output)
				if b.IsError {
					wire["is_error"] = true
				}
				out = append(out, wire)
			}
		}
		flush()
		return out, nil

	default:
		return nil, core.NewSerializationError("unsupported message role %q", msg.Role)
	}
}

func outputText(b core.ToolOutputBlock) (string, error) {
	switch v := b.Output.(type) {
	case string:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", core.NewSerializationError("tool output for call '%s' is not serializable", b.CallID).Wrap(err)
		}
		return string(data), nil
	}
}

func toolResultWire(callID, name, output string) model.WireMessage {
	return model.WireMessage{
		"role":         "tool_result",
		"tool_call_id": callID,
		"name":         name,
		"content":      output,
	}
}

func toolCallWire(text string, calls []core.ToolCall) model.WireMessage {
	wire := model.WireMessage{"role": "assistant"}
	if text != "" {
		wire["content"] = text
	}
	wireCalls := make([]map[string]any, 0, len(calls))
	for _, call := range calls {
		wireCalls = append(wireCalls, map[string]any{
			"id":        call.CallID,
			"name":      call.Name,
			"arguments": argumentsString(call.Arguments),
		})
	}
	if len(wireCalls) > 0 {
		wire["tool_calls"] = wireCalls
	}
	return wire
}

func argumentsString(args any) string {
	switch v := args.(type) {
	case string:
		return v
	case nil:
		return "{}"
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "{}"
		}
		return string(data)
	}
}

// toSDKMessages converts wire messages into Messages API params. System text
// travels out of band, tool results become user-side tool_result blocks, and
// adjacent same-role messages merge so the transcript alternates the way the
// API demands.
func toSDKMessages(req model.Request) ([]anthropic.MessageParam, []anthropic.TextBlockParam, error) {
	var system []anthropic.TextBlockParam
	if req.System != "" {
		system = append(system, anthropic.TextBlockParam{Text: req.System})
	}

	var messages []anthropic.MessageParam
	var role string
	var blocks []anthropic.ContentBlockParamUnion
	flush := func() {
		if len(blocks) == 0 {
			return
		}
		if role == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(blocks...))
		} else {
			messages = append(messages, anthropic.NewUserMessage(blocks...))
		}
		blocks = nil
	}
	push := func(r string, bs ...anthropic.ContentBlockParamUnion) {
		if r != role {
			flush()
			role = r
		}
		blocks = append(blocks, bs...)
	}

	for _, wire := range req.Messages {
		wireRole, _ := wire["role"].(string)
		content, _ := wire["content"].(string)
		switch wireRole {
		case "system":
			system = append(system, anthropic.TextBlockParam{Text: content})
		case "user":
			push("user", anthropic.NewTextBlock(content))
		case "tool_result":
			callID, _ := wire["tool_call_id"].(string)
			isError, _ := wire["is_error"].(bool)
			push("user", anthropic.NewToolResultBlock(callID, content, isError))
		case "assistant":
			bs := assistantBlocks(wire, content)
			if len(bs) == 0 {
				continue
			}
			push("assistant", bs...)
		default:
			return nil, nil, core.NewInputError("wire message has unsupported role %q", wireRole)
		}
	}
	flush()
	return messages, system, nil
}

// assistantBlocks orders one assistant turn the way the API requires:
// thinking first, then text, then tool_use.
func assistantBlocks(wire model.WireMessage, content string) []anthropic.ContentBlockParamUnion {
	var blocks []anthropic.ContentBlockParamUnion
	if thinking, ok := wire["thinking"].([]map[string]any); ok {
		for _, tb := range thinking {
			text, _ := tb["thinking"].(string)
			signature, _ := tb["signature"].(string)
			blocks = append(blocks, anthropic.ContentBlockParamUnion{
				OfThinking: &anthropic.ThinkingBlockParam{Thinking: text, Signature: signature},
			})
		}
	}
	if content != "" {
		blocks = append(blocks, anthropic.NewTextBlock(content))
	}
	if calls, ok := wire["tool_calls"].([]map[string]any); ok {
		for _, call := range calls {
			id, _ := call["id"].(string)
			name, _ := call["name"].(string)
			args, _ := call["arguments"].(string)
			var input any
			if args != "" {
				if err := json.Unmarshal([]byte(args), &input); err != nil {
					input = args
				}
			}
			blocks = append(blocks, anthropic.NewToolUseBlock(id, input, name))
		}
	}
	return blocks
}
