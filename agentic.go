// Package agentic implements a bounded model/tool execution loop on top of a
// provider-neutral adapter protocol. Applications typically:
//  1. Construct a provider model (model/openai, model/anthropic) or any
//     implementation of model.Model
//  2. Build tools with the tool package and bind everything into an
//     agent.Agent
//  3. Drive the agent with runner.Runner, either blocking (Run) or as a
//     stream of correlated events (RunStream)
//
// The helpers in this package cover the common single-shot case; anything
// beyond that should use runner.Runner directly.
package agentic

import (
	"context"

	"github.com/lunarhue/agentic/agent"
	"github.com/lunarhue/agentic/core"
	"github.com/lunarhue/agentic/model"
	"github.com/lunarhue/agentic/runner"
)

// Version is the current release of the module.
const Version = "0.3.0"

// Run executes a blocking agent run with a default runner.
func Run(ctx context.Context, ag *agent.Agent, input model.Input) (*core.RunResult, error) {
	return runner.New().Run(ctx, ag, input)
}

// RunStream executes a streaming agent run with a default runner. The caller
// owns the returned stream and must close it.
func RunStream(ctx context.Context, ag *agent.Agent, input model.Input) (*runner.Stream, error) {
	return runner.New().RunStream(ctx, ag, input)
}
