package model

import "github.com/lunarhue/agentic/core"

// Input is what callers hand to a run: plain text, pre-shaped wire
// messages, or a canonical conversation. The closed set keeps Normalize
// exhaustive.
type Input interface{ isInput() }

// TextInput is a bare prompt, normalized to a single user message.
type TextInput string

func (TextInput) isInput() {}

// MessagesInput passes provider-shaped messages through untouched. The
// caller owns their validity; they are copied, not aliased.
type MessagesInput []WireMessage

func (MessagesInput) isInput() {}

// ConversationInput serializes a canonical conversation with the
// provider's strict rules.
type ConversationInput struct {
	Conversation *core.Conversation
}

func (ConversationInput) isInput() {}
