package core

// Item is one append-only record of what happened during a run. Concrete
// item types implement the unexported isItem marker enabling a closed set.
// Items are appended in turn order, never mutated afterwards, and owned by
// the run that created them.
type Item interface{ isItem() }

// MessageItem records assistant text output for one turn.
type MessageItem struct {
	ID      string
	Content string
	Raw     any
}

func (MessageItem) isItem() {}

// ToolCallItem records a tool invocation requested by the model.
type ToolCallItem struct {
	ID        string
	CallID    string
	Name      string
	Arguments map[string]any
	Raw       any
}

func (ToolCallItem) isItem() {}

// ToolOutputItem records the result of a tool execution.
type ToolOutputItem struct {
	ID     string
	CallID string
	Name   string
	Result string
}

func (ToolOutputItem) isItem() {}

// ReasoningItem records reasoning content surfaced by the model.
type ReasoningItem struct {
	ID        string
	Summary   string
	Signature string
	Raw       any
}

func (ReasoningItem) isItem() {}
