package openai

import (
	"encoding/json"

	"github.com/openai/openai-go"

	"github.com/lunarhue/agentic/core"
	"github.com/lunarhue/agentic/model"
)

// Normalize converts caller input into OpenAI-shaped wire messages.
// Conversations go through the strict serialization tier: constructible
// messages that violate this provider's replay rules fail here, not at the
// API.
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

// serializeMessage applies the strict tier for one canonical message.
func serializeMessage(msg core.Message) ([]model.WireMessage, error) {
	switch msg.Role {
	case core.RoleSystem, core.RoleAssistant:
		wire := model.WireMessage{"role": string(msg.Role)}
		var text string
		var calls []map[string]any
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
				if b.ReasoningID == "" || b.Summary == "" {
					return nil, core.NewSerializationError("OpenAI reasoning replay requires a reasoning id and summary")
				}
				wire["reasoning_id"] = b.ReasoningID
				wire["reasoning_summary"] = b.Summary
			}
		}
		if text != "" {
			wire["content"] = text
		}
		if len(calls) > 0 {
			wire["tool_calls"] = calls
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
				out = append(out, toolOutputWire(b.CallID, b.Name, output))
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

func toolOutputWire(callID, name, output string) model.WireMessage {
	return model.WireMessage{
		"role":         "tool",
		"tool_call_id": callID,
		"name":         name,
		"content":      output,
	}
}

// toolCallWire shapes the assistant turn that requested tool calls.
// Arguments are carried as JSON strings, matching the chat wire format.
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

// toSDKMessages converts wire messages into SDK unions, prepending the
// request's system instruction.
func toSDKMessages(req model.Request) ([]openai.ChatCompletionMessageParamUnion, error) {
	var out []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		out = append(out, openai.SystemMessage(req.System))
	}
	for _, wire := range req.Messages {
		role, _ := wire["role"].(string)
		content, _ := wire["content"].(string)
		switch role {
		case "system":
			out = append(out, openai.SystemMessage(content))
		case "user":
			out = append(out, openai.UserMessage(content))
		case "assistant":
			calls := wireToolCalls(wire)
			if len(calls) == 0 {
				out = append(out, openai.AssistantMessage(content))
				continue
			}
			assistant := openai.ChatCompletionAssistantMessageParam{ToolCalls: calls}
			if content != "" {
				assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
					OfString: openai.String(content),
				}
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		case "tool":
			callID, _ := wire["tool_call_id"].(string)
			out = append(out, openai.ToolMessage(content, callID))
		default:
			return nil, core.NewInputError("wire message has unsupported role %q", role)
		}
	}
	return out, nil
}

func wireToolCalls(wire model.WireMessage) []openai.ChatCompletionMessageToolCallParam {
	raw, ok := wire["tool_calls"].([]map[string]any)
	if !ok {
		return nil
	}
	var out []openai.ChatCompletionMessageToolCallParam
	for _, call := range raw {
		id, _ := call["id"].(string)
		name, _ := call["name"].(string)
		args, _ := call["arguments"].(string)
		out = append(out, openai.ChatCompletionMessageToolCallParam{
			ID:   id,
			Type: "function",
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      name,
				Arguments: args,
			},
		})
	}
	return out
}
