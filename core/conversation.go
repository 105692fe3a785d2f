package core

import "encoding/json"

// Conversation is an ordered canonical message sequence. Insertion order is
// conversation order and is semantically load-bearing; providers serialize
// it into wire history at run start.
//
// Builder methods record the first failure instead of panicking; check Err
// before handing the conversation to a run. A conversation is owned by one
// run at a time and is not safe for concurrent mutation.
type Conversation struct {
	messages []Message
	err      error
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Err returns the first builder failure, or nil.
func (c *Conversation) Err() error { return c.err }

// Len returns the number of messages.
func (c *Conversation) Len() int { return len(c.messages) }

// Messages returns a copy of the message sequence in insertion order.
func (c *Conversation) Messages() []Message {
	return append([]Message(nil), c.messages...)
}

// Clone returns a shallow copy sharing no slice storage with the original.
func (c *Conversation) Clone() *Conversation {
	return &Conversation{messages: append([]Message(nil), c.messages...), err: c.err}
}

// Add appends one canonical message.
func (c *Conversation) Add(msg Message) *Conversation {
	if c.err != nil {
		return c
	}
	c.messages = append(c.messages, msg)
	return c
}

func (c *Conversation) addChecked(msg Message, err error) *Conversation {
	if c.err != nil {
		return c
	}
	if err != nil {
		c.err = err
		return c
	}
	c.messages = append(c.messages, msg)
	return c
}

// AddSystem appends a system text message.
func (c *Conversation) AddSystem(text string) *Conversation {
	return c.Add(SystemMessage(text))
}

// AddUser appends a user text message.
func (c *Conversation) AddUser(text string) *Conversation {
	return c.Add(UserMessage(text))
}

// AddAssistant appends an assistant text message.
func (c *Conversation) AddAssistant(text string) *Conversation {
	return c.Add(AssistantMessage(text))
}

// AddToolCall appends an assistant tool-call message. Arguments may be a
// map[string]any or a JSON string; the string form must decode to an object.
func (c *Conversation) AddToolCall(callID, name string, arguments any) *Conversation {
	if c.err != nil {
		return c
	}
	parsed, err := toolCallArguments(arguments)
	if err != nil {
		c.err = err
		return c
	}
	msg, err := NewMessage(RoleAssistant, ToolCallBlock{CallID: callID, Name: name, Arguments: parsed})
	return c.addChecked(msg, err)
}

func toolCallArguments(arguments any) (map[string]any, error) {
	switch v := arguments.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out, nil
	case string:
		var decoded any
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			return nil, NewSerializationError("arguments JSON must be valid and decode to an object").Wrap(err)
		}
		obj, ok := decoded.(map[string]any)
		if !ok {
			return nil, NewSerializationError("arguments JSON must decode to an object")
		}
		return obj, nil
	default:
		return nil, NewInputError("arguments must be a map or JSON string, got %T", arguments)
	}
}

// ToolOutputOption customizes a tool output message.
type ToolOutputOption func(*ToolOutputBlock)

// WithToolName records the tool name on the output block.
func WithToolName(name string) ToolOutputOption {
	return func(b *ToolOutputBlock) { b.Name = name }
}

// AsToolError marks the output as a failed result.
func AsToolError() ToolOutputOption {
	return func(b *ToolOutputBlock) { b.IsError = true }
}

// AddToolOutput appends a user tool-output message. Output is a string or a
// map; anything else is rejected.
func (c *Conversation) AddToolOutput(callID string, output any, opts ...ToolOutputOption) *Conversation {
	if c.err != nil {
		return c
	}
	switch output.(type) {
	case string, map[string]any:
	default:
		c.err = NewInputError("tool output must be a string or map, got %T", output)
		return c
	}
	block := ToolOutputBlock{CallID: callID, Output: output}
	for _, opt := range opts {
		opt(&block)
	}
	msg, err := NewMessage(RoleUser, block)
	return c.addChecked(msg, err)
}

// AddReasoning appends an assistant reasoning message. The block must carry
// at least one non-empty field.
func (c *Conversation) AddReasoning(block ReasoningBlock) *Conversation {
	if c.err != nil {
		return c
	}
	msg, err := NewMessage(RoleAssistant, block)
	return c.addChecked(msg, err)
}
