// Package runner executes agents: it drives the bounded model/tool loop
// that alternates between model turns and local tool execution until the
// model answers without requesting tools.
//
// Run is the blocking entry point and returns a core.RunResult; RunStream
// surfaces every canonical stream event as it arrives, wrapped in a
// core.RunEvent with cumulative output and usage. Both share one dispatch
// policy: unknown tools, malformed arguments and failures raised by tool
// logic are fed back to the model as error text so it can correct itself,
// while unexpected faults abort the run.
//
// A Runner holds no per-run state and may execute any number of agents
// concurrently. Per-run concerns (tool runtime values, session
// continuation) are passed as RunOptions.
package runner
