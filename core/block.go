package core

// Role identifies who produced a message in a canonical conversation.
type Role string

const (
	// RoleSystem carries standing instructions for the model.
	RoleSystem Role = "system"
	// RoleUser carries caller input and tool outputs.
	RoleUser Role = "user"
	// RoleAssistant carries model output: text, tool calls and reasoning.
	RoleAssistant Role = "assistant"
)

// Block represents one polymorphic segment of message content. Concrete block
// types implement the unexported isBlock marker enabling a closed set.
type Block interface{ isBlock() }

// TextBlock is a plain text content segment.
type TextBlock struct {
	Text string
}

func (TextBlock) isBlock() {}

// ToolCallBlock is an assistant-emitted request to invoke a named tool.
type ToolCallBlock struct {
	CallID    string
	Name      string
	Arguments map[string]any
}

func (ToolCallBlock) isBlock() {}

// ToolOutputBlock is a user-emitted result of a tool invocation. Output is a
// string or a map; IsError flags results the caller wants surfaced as
// failures to the model.
type ToolOutputBlock struct {
	CallID  string
	Name    string
	Output  any
	IsError bool
}

func (ToolOutputBlock) isBlock() {}

// ReasoningBlock carries provider-agnostic reasoning metadata. At least one
// field must be set; providers may demand more at serialization time.
type ReasoningBlock struct {
	Summary      string
	Signature    string
	ReasoningID  string
	ProviderMeta map[string]any
}

func (ReasoningBlock) isBlock() {}

// Empty reports whether every reasoning field is unset.
func (b ReasoningBlock) Empty() bool {
	return b.Summary == "" && b.Signature == "" && b.ReasoningID == "" && len(b.ProviderMeta) == 0
}

// Message is a canonical conversation message. Construct through NewMessage
// or the role helpers so the role/block invariants always hold.
type Message struct {
	Role   Role
	Blocks []Block
}

var allowedBlocks = map[Role]map[string]bool{
	RoleSystem:    {"text": true},
	RoleAssistant: {"text": true, "tool_call": true, "reasoning": true},
	RoleUser:      {"text": true, "tool_output": true},
}

func blockKind(b Block) string {
	switch b.(type) {
	case TextBlock:
		return "text"
	case ToolCallBlock:
		return "tool_call"
	case ToolOutputBlock:
		return "tool_output"
	case ReasoningBlock:
		return "reasoning"
	default:
		return ""
	}
}

// NewMessage builds a message and enforces the construction invariants:
// content must be non-empty, every block type must be legal for the role,
// and reasoning blocks must carry at least one field. Invalid input fails
// construction instead of dropping blocks.
func NewMessage(role Role, blocks ...Block) (Message, error) {
	allowed, ok := allowedBlocks[role]
	if !ok {
		return Message{}, NewInputError("unknown message role %q", role)
	}
	if len(blocks) == 0 {
		return Message{}, NewInputError("message content cannot be empty")
	}
	for _, b := range blocks {
		kind := blockKind(b)
		if kind == "" {
			return Message{}, NewInputError("unsupported block type %T", b)
		}
		if !allowed[kind] {
			return Message{}, NewInputError("block type %q is not valid for role %q", kind, role)
		}
		if rb, isReasoning := b.(ReasoningBlock); isReasoning && rb.Empty() {
			return Message{}, NewInputError("reasoning block requires at least one of summary, signature, reasoning id or provider meta")
		}
	}
	return Message{Role: role, Blocks: append([]Block(nil), blocks...)}, nil
}

// SystemMessage builds a single text system message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Blocks: []Block{TextBlock{Text: text}}}
}

// UserMessage builds a single text user message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Blocks: []Block{TextBlock{Text: text}}}
}

// AssistantMessage builds a single text assistant message.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Blocks: []Block{TextBlock{Text: text}}}
}
