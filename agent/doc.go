// Package agent defines what an agent is: a model, rendered system
// instructions and the tools the model may call, plus the loop bound and
// tool-use settings the runner enforces. An Agent is an immutable value
// built once with New and reused across runs; all execution lives in the
// runner package.
//
// Instructions may use Go template placeholders:
//
//	ag, err := agent.New("support", m,
//		agent.WithInstructions("You help {{.team}} with tickets."),
//		agent.WithInstructionVars(map[string]any{"team": "billing"}),
//		agent.WithTools(lookupTool),
//	)
//
// The package intentionally keeps model specifics, tool execution and
// persistence in their respective packages to avoid cyclic deps.
package agent
