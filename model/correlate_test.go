package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunarhue/agentic/core"
)

func TestCorrelator_ReassemblesFragments(t *testing.T) {
	c := NewCorrelator()
	c.BeginTurn()
	c.Register("item-1", "call-1", "get_weather")

	ev := c.ArgumentDelta("item-1", `{"city":`)
	delta, ok := ev.(core.ToolCallDelta)
	require.True(t, ok)
	assert.Equal(t, "call-1", delta.CallID)
	assert.Equal(t, "get_weather", delta.Name)
	assert.Equal(t, `{"city":`, delta.Delta)

	c.ArgumentDelta("item-1", `"Paris"}`)

	done, ok := c.ArgumentDone("item-1", "").(core.ToolCallDone)
	require.True(t, ok)
	assert.Equal(t, "call-1", done.CallID)
	assert.Equal(t, map[string]any{"city": "Paris"}, done.Arguments)
}

func TestCorrelator_FinalPayloadWinsOverBuffer(t *testing.T) {
	c := NewCorrelator()
	c.BeginTurn()
	c.Register("item-1", "call-1", "calc")
	c.ArgumentDelta("item-1", `{"x": 1`)

	done, ok := c.ArgumentDone("item-1", `{"x": 2}`).(core.ToolCallDone)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"x": float64(2)}, done.Arguments)
}

func TestCorrelator_ZeroFragmentsResolveToEmptyObject(t *testing.T) {
	c := NewCorrelator()
	c.BeginTurn()
	c.Register("item-1", "call-1", "refresh")

	done, ok := c.ArgumentDone("item-1", "").(core.ToolCallDone)
	require.True(t, ok)
	assert.Equal(t, map[string]any{}, done.Arguments)
}

func TestCorrelator_NonObjectPayloadStaysRaw(t *testing.T) {
	c := NewCorrelator()
	c.BeginTurn()
	c.Register("item-1", "call-1", "calc")
	c.ArgumentDelta("item-1", `[1, 2, 3]`)

	done, ok := c.ArgumentDone("item-1", "").(core.ToolCallDone)
	require.True(t, ok)
	assert.Equal(t, `[1, 2, 3]`, done.Arguments)
}

func TestCorrelator_UnregisteredIdsDegradeToNeutral(t *testing.T) {
	c := NewCorrelator()
	c.BeginTurn()

	_, isOther := c.ArgumentDelta("ghost", "frag").(core.OtherEvent)
	assert.True(t, isOther)
	_, isOther = c.ArgumentDone("ghost", "{}").(core.OtherEvent)
	assert.True(t, isOther)

	// A neutral event never flips the turn to a tool turn.
	assert.Equal(t, TurnClassEmpty, c.FinishTurn())
}

func TestCorrelator_DoneConsumesItem(t *testing.T) {
	c := NewCorrelator()
	c.BeginTurn()
	c.Register("item-1", "call-1", "calc")

	_, isDone := c.ArgumentDone("item-1", "{}").(core.ToolCallDone)
	require.True(t, isDone)

	// Exactly one ToolCallDone per item id per turn.
	_, isOther := c.ArgumentDone("item-1", "{}").(core.OtherEvent)
	assert.True(t, isOther)
	_, isOther = c.ArgumentDelta("item-1", "late").(core.OtherEvent)
	assert.True(t, isOther)
}

func TestCorrelator_IncompleteRegistrationIsNeutral(t *testing.T) {
	c := NewCorrelator()
	c.BeginTurn()
	c.Register("item-1", "", "calc")

	_, isOther := c.ArgumentDelta("item-1", "frag").(core.OtherEvent)
	assert.True(t, isOther)
	_, isOther = c.ArgumentDone("item-1", "{}").(core.OtherEvent)
	assert.True(t, isOther)
}

func TestCorrelator_TracksMultipleItemsIndependently(t *testing.T) {
	c := NewCorrelator()
	c.BeginTurn()
	c.Register("item-a", "call-a", "first")
	c.Register("item-b", "call-b", "second")

	c.ArgumentDelta("item-a", `{"n": 1}`)
	c.ArgumentDelta("item-b", `{"n": 2}`)

	assert.Equal(t, []string{"item-a", "item-b"}, c.Pending())

	doneA, ok := c.ArgumentDone("item-a", "").(core.ToolCallDone)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"n": float64(1)}, doneA.Arguments)

	// Consumed items drop out of the pending set.
	assert.Equal(t, []string{"item-b"}, c.Pending())

	doneB, ok := c.ArgumentDone("item-b", "").(core.ToolCallDone)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"n": float64(2)}, doneB.Arguments)
	assert.Empty(t, c.Pending())
}

func TestCorrelator_TurnClassification(t *testing.T) {
	t.Run("registered call dominates text", func(t *testing.T) {
		c := NewCorrelator()
		c.BeginTurn()
		c.SawText(true)
		c.Register("item-1", "call-1", "calc")
		assert.Equal(t, TurnClassToolCalls, c.FinishTurn())
	})

	t.Run("finalized text alone is terminal", func(t *testing.T) {
		c := NewCorrelator()
		c.BeginTurn()
		c.SawText(false)
		c.SawText(true)
		assert.Equal(t, TurnClassText, c.FinishTurn())
	})

	t.Run("delta-only text is not terminal", func(t *testing.T) {
		c := NewCorrelator()
		c.BeginTurn()
		c.SawText(false)
		assert.Equal(t, TurnClassEmpty, c.FinishTurn())
	})

	t.Run("nothing seen is empty", func(t *testing.T) {
		c := NewCorrelator()
		c.BeginTurn()
		assert.Equal(t, TurnClassEmpty, c.FinishTurn())
	})
}

func TestCorrelator_BeginTurnResets(t *testing.T) {
	c := NewCorrelator()
	c.BeginTurn()
	c.Register("item-1", "call-1", "calc")
	c.ArgumentDelta("item-1", `{"x": 1}`)
	c.SawText(true)

	c.BeginTurn()

	assert.Empty(t, c.Pending())
	assert.Equal(t, TurnClassEmpty, c.FinishTurn())
	_, isOther := c.ArgumentDone("item-1", "").(core.OtherEvent)
	assert.True(t, isOther)

	// The same ephemeral id can be reused fresh after a reset.
	c.Register("item-1", "call-9", "other")
	done, ok := c.ArgumentDone("item-1", `{"y": 3}`).(core.ToolCallDone)
	require.True(t, ok)
	assert.Equal(t, "call-9", done.CallID)
	assert.Equal(t, "other", done.Name)
}

func TestTurnClassString(t *testing.T) {
	assert.Equal(t, "text", TurnClassText.String())
	assert.Equal(t, "tool_calls", TurnClassToolCalls.String())
	assert.Equal(t, "empty", TurnClassEmpty.String())
}
