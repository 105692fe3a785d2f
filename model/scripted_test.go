package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunarhue/agentic/core"
)

func TestScriptedModel_ConsumesTurnsInOrder(t *testing.T) {
	m := NewScriptedModel(
		TextTurn("first"),
		TextTurn("second"),
	)

	resp, err := m.Generate(context.Background(), Request{})
	require.NoError(t, err)
	text, err := m.ResponseAdapter().ExtractText(resp)
	require.NoError(t, err)
	assert.Equal(t, "first", text)

	resp, err = m.Generate(context.Background(), Request{})
	require.NoError(t, err)
	text, _ = m.ResponseAdapter().ExtractText(resp)
	assert.Equal(t, "second", text)

	_, err = m.Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, core.CodeExecution, core.CodeOf(err))
	assert.Equal(t, 2, m.CallCount())
}

func TestScriptedModel_RecordsRequests(t *testing.T) {
	m := NewScriptedModel(TextTurn("ok"))
	req := Request{System: "be brief", ToolChoice: "auto"}
	_, err := m.Generate(context.Background(), req)
	require.NoError(t, err)

	got := m.Requests()
	require.Len(t, got, 1)
	assert.Equal(t, "be brief", got[0].System)
	assert.Equal(t, "auto", got[0].ToolChoice)
}

func TestScriptedModel_ResponseAdapter(t *testing.T) {
	usage := core.TokenUsage{InputTokens: core.Count(10), OutputTokens: core.Count(4)}
	m := NewScriptedModel(
		ToolCallTurn("calling now",
			core.ToolCall{CallID: "c1", Name: "calc", Arguments: map[string]any{"x": 1}},
		).WithUsage(usage),
	)
	resp, err := m.Generate(context.Background(), Request{})
	require.NoError(t, err)
	adapter := m.ResponseAdapter()

	calls, err := adapter.ExtractToolCalls(resp)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "calc", calls[0].Name)

	got := adapter.ExtractTokenUsage(resp)
	require.NotNil(t, got)
	require.NotNil(t, got.InputTokens)
	assert.Equal(t, int64(10), *got.InputTokens)

	wire, err := adapter.BuildToolCallMessage(resp)
	require.NoError(t, err)
	require.Len(t, wire, 1)
	assert.Equal(t, "assistant", wire[0]["role"])
	assert.Equal(t, "calling now", wire[0]["content"])

	items, err := adapter.ToItems(resp)
	require.NoError(t, err)
	require.Len(t, items, 2)
	_, isMsg := items[0].(core.MessageItem)
	assert.True(t, isMsg)
	callItem, isCall := items[1].(core.ToolCallItem)
	require.True(t, isCall)
	assert.Equal(t, "c1", callItem.CallID)

	// Adapters reject foreign response values rather than guessing.
	_, err = adapter.ExtractText(42)
	assert.Equal(t, core.CodeParsing, core.CodeOf(err))
}

func TestScriptedModel_StreamingDrivesCorrelator(t *testing.T) {
	usage := core.TokenUsage{InputTokens: core.Count(5), OutputTokens: core.Count(2)}
	m := NewScriptedModel(
		ToolCallTurn("let me check",
			core.ToolCall{CallID: "c1", Name: "get_weather", Arguments: map[string]any{"city": "Paris"}},
		).WithUsage(usage),
	)

	chunks, err := m.GenerateStream(context.Background(), Request{})
	require.NoError(t, err)
	events := m.StreamAdapter().Process(chunks)

	var (
		sawStart   bool
		text       string
		deltas     int
		done       *core.ToolCallDone
		terminalOK bool
	)
	for events.Next() {
		switch ev := events.Current().(type) {
		case core.StreamStart:
			sawStart = true
		case core.MessageDelta:
			text += ev.Delta
		case core.ToolCallDelta:
			deltas++
			assert.Equal(t, "c1", ev.CallID)
		case core.ToolCallDone:
			d := ev
			done = &d
		case core.OtherEvent:
			if ev.Usage != nil {
				terminalOK = true
				require.NotNil(t, ev.Usage.InputTokens)
				assert.Equal(t, int64(5), *ev.Usage.InputTokens)
			}
		}
	}
	require.NoError(t, events.Err())
	require.NoError(t, events.Close())

	assert.True(t, sawStart)
	assert.Equal(t, "let me check", text)
	assert.Positive(t, deltas)
	require.NotNil(t, done)
	assert.Equal(t, "get_weather", done.Name)
	assert.Equal(t, map[string]any{"city": "Paris"}, done.Arguments)
	assert.True(t, terminalOK, "tool turn must end with a neutral usage-bearing event")
}

func TestScriptedModel_TextTurnStreamsToEnd(t *testing.T) {
	m := NewScriptedModel(TextTurn("all done").WithUsage(core.TokenUsage{InputTokens: core.Count(1), OutputTokens: core.Count(1)}))
	chunks, err := m.GenerateStream(context.Background(), Request{})
	require.NoError(t, err)
	events := m.StreamAdapter().Process(chunks)

	var sawEnd bool
	var finalText string
	for events.Next() {
		switch ev := events.Current().(type) {
		case core.MessageDone:
			finalText = ev.Text
		case core.StreamEnd:
			sawEnd = true
			require.NotNil(t, ev.Usage)
		}
	}
	require.NoError(t, events.Err())
	assert.True(t, sawEnd)
	assert.Equal(t, "all done", finalText)
}

func TestScriptedModel_Normalize(t *testing.T) {
	m := NewScriptedModel()

	t.Run("text input", func(t *testing.T) {
		wire, err := m.Normalize(TextInput("hello"))
		require.NoError(t, err)
		require.Len(t, wire, 1)
		assert.Equal(t, "user", wire[0]["role"])
		assert.Equal(t, "hello", wire[0]["content"])
	})

	t.Run("messages input is copied", func(t *testing.T) {
		in := MessagesInput{{"role": "user", "content": "x"}}
		wire, err := m.Normalize(in)
		require.NoError(t, err)
		in[0] = nil
		assert.NotNil(t, wire[0])
	})

	t.Run("conversation input", func(t *testing.T) {
		conv := core.NewConversation().
			AddSystem("be brief").
			AddUser("what is 2+2?").
			AddToolCall("c1", "calc", map[string]any{"x": 2}).
			AddToolOutput("c1", "4", core.WithToolName("calc"))
		wire, err := m.Normalize(ConversationInput{Conversation: conv})
		require.NoError(t, err)
		require.Len(t, wire, 4)
		assert.Equal(t, "system", wire[0]["role"])
		assert.Equal(t, "assistant", wire[2]["role"])
		assert.Equal(t, "tool", wire[3]["role"])
	})

	t.Run("poisoned conversation propagates its error", func(t *testing.T) {
		conv := core.NewConversation().AddToolCall("c1", "calc", 42)
		_, err := m.Normalize(ConversationInput{Conversation: conv})
		assert.Equal(t, core.CodeInput, core.CodeOf(err))
	})

	t.Run("nil input rejected", func(t *testing.T) {
		_, err := m.Normalize(nil)
		assert.Equal(t, core.CodeInput, core.CodeOf(err))
	})
}
