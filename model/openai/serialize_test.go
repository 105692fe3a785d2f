package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunarhue/agentic/core"
	"github.com/lunarhue/agentic/model"
)

func TestNormalizeTextInput(t *testing.T) {
	m := New()

	wire, err := m.Normalize(model.TextInput("hello"))
	require.NoError(t, err)

	require.Len(t, wire, 1)
	assert.Equal(t, model.WireMessage{"role": "user", "content": "hello"}, wire[0])
}

func TestNormalizeMessagesInputPassesThrough(t *testing.T) {
	m := New()
	in := model.MessagesInput{
		{"role": "user", "content": "hi"},
		{"role": "assistant", "content": "hello"},
	}

	wire, err := m.Normalize(in)
	require.NoError(t, err)

	require.Len(t, wire, 2)
	assert.Equal(t, "hi", wire[0]["content"])
	assert.Equal(t, "hello", wire[1]["content"])
}

func TestNormalizeConversation(t *testing.T) {
	m := New()
	conv := core.NewConversation().
		AddSystem("be helpful").
		AddUser("weather in Paris?").
		AddToolCall("call_1", "get_weather", map[string]any{"city": "Paris"}).
		AddToolOutput("call_1", "sunny, 21C", core.WithToolName("get_weather"))
	require.NoError(t, conv.Err())

	wire, err := m.Normalize(model.ConversationInput{Conversation: conv})
	require.NoError(t, err)
	require.Len(t, wire, 4)

	assert.Equal(t, model.WireMessage{"role": "system", "content": "be helpful"}, wire[0])
	assert.Equal(t, model.WireMessage{"role": "user", "content": "weather in Paris?"}, wire[1])

	assert.Equal(t, "assistant", wire[2]["role"])
	calls, ok := wire[2]["tool_calls"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, calls, 1)
	assert.Equal(t, "call_1", calls[0]["id"])
	assert.Equal(t, "get_weather", calls[0]["name"])
	assert.JSONEq(t, `{"city":"Paris"}`, calls[0]["arguments"].(string))

	assert.Equal(t, model.WireMessage{
		"role":         "tool",
		"tool_call_id": "call_1",
		"name":         "get_weather",
		"content":      "sunny, 21C",
	}, wire[3])
}

func TestNormalizeInterleavedUserBlocks(t *testing.T) {
	m := New()
	msg, err := core.NewMessage(core.RoleUser,
		core.TextBlock{Text: "before"},
		core.ToolOutputBlock{CallID: "call_9", Name: "lookup", Output: "found"},
		core.TextBlock{Text: "after"},
	)
	require.NoError(t, err)
	conv := core.NewConversation().Add(msg)

	wire, err := m.Normalize(model.ConversationInput{Conversation: conv})
	require.NoError(t, err)
	require.Len(t, wire, 3)

	assert.Equal(t, "user", wire[0]["role"])
	assert.Equal(t, "before", wire[0]["content"])
	assert.Equal(t, "tool", wire[1]["role"])
	assert.Equal(t, "user", wire[2]["role"])
	assert.Equal(t, "after", wire[2]["content"])
}

func TestNormalizeMapToolOutputSerialized(t *testing.T) {
	m := New()
	conv := core.NewConversation().
		AddToolOutput("call_2", map[string]any{"ok": true}, core.WithToolName("check"))

	wire, err := m.Normalize(model.ConversationInput{Conversation: conv})
	require.NoError(t, err)
	require.Len(t, wire, 1)
	assert.JSONEq(t, `{"ok":true}`, wire[0]["content"].(string))
}

func TestNormalizeReasoningReplay(t *testing.T) {
	m := New()

	t.Run("requires id and summary", func(t *testing.T) {
		conv := core.NewConversation().
			AddReasoning(core.ReasoningBlock{Summary: "thought about it"})

		_, err := m.Normalize(model.ConversationInput{Conversation: conv})
		require.Error(t, err)
		assert.Equal(t, core.CodeSerialization, core.CodeOf(err))
	})

	t.Run("carries both when present", func(t *testing.T) {
		conv := core.NewConversation().
			AddReasoning(core.ReasoningBlock{ReasoningID: "rs_1", Summary: "thought about it"})

		wire, err := m.Normalize(model.ConversationInput{Conversation: conv})
		require.NoError(t, err)
		require.Len(t, wire, 1)
		assert.Equal(t, "rs_1", wire[0]["reasoning_id"])
		assert.Equal(t, "thought about it", wire[0]["reasoning_summary"])
	})
}

func TestNormalizeBuilderErrorPropagates(t *testing.T) {
	m := New()
	conv := core.NewConversation().AddToolCall("call_1", "calc", "{not json")

	_, err := m.Normalize(model.ConversationInput{Conversation: conv})
	require.Error(t, err)
	assert.Equal(t, core.CodeSerialization, core.CodeOf(err))
}

func TestNormalizeRejectsBadInput(t *testing.T) {
	m := New()

	_, err := m.Normalize(nil)
	require.Error(t, err)
	assert.Equal(t, core.CodeInput, core.CodeOf(err))

	_, err = m.Normalize(model.ConversationInput{})
	require.Error(t, err)
	assert.Equal(t, core.CodeInput, core.CodeOf(err))
}

func TestToSDKMessages(t *testing.T) {
	req := model.Request{
		System: "be terse",
		Messages: []model.WireMessage{
			{"role": "user", "content": "hi"},
			{"role": "assistant", "content": "checking", "tool_calls": []map[string]any{
				{"id": "call_1", "name": "get_weather", "arguments": `{"city":"Paris"}`},
			}},
			{"role": "tool", "tool_call_id": "call_1", "name": "get_weather", "content": "sunny"},
			{"role": "assistant", "content": "it is sunny"},
		},
	}

	msgs, err := toSDKMessages(req)
	require.NoError(t, err)
	require.Len(t, msgs, 5)

	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)

	require.NotNil(t, msgs[2].OfAssistant)
	require.Len(t, msgs[2].OfAssistant.ToolCalls, 1)
	assert.Equal(t, "call_1", msgs[2].OfAssistant.ToolCalls[0].ID)
	assert.Equal(t, "get_weather", msgs[2].OfAssistant.ToolCalls[0].Function.Name)

	assert.NotNil(t, msgs[3].OfTool)
	assert.NotNil(t, msgs[4].OfAssistant)
}

func TestToSDKMessagesRejectsUnknownRole(t *testing.T) {
	req := model.Request{Messages: []model.WireMessage{{"role": "narrator", "content": "x"}}}

	_, err := toSDKMessages(req)
	require.Error(t, err)
	assert.Equal(t, core.CodeInput, core.CodeOf(err))
}
