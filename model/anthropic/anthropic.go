// Package anthropic adapts the Anthropic Messages API to the model
// contract. Tool results travel as user-side tool_result blocks and thinking
// blocks replay only with their signature, so the serialization tier here is
// stricter than construction.
package anthropic

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/lunarhue/agentic/core"
	"github.com/lunarhue/agentic/logging"
	"github.com/lunarhue/agentic/model"
)

// Options configures the Anthropic model adapter.
type Options struct {
	// Model is the model identifier sent with every request.
	Model anthropic.Model

	// Temperature controls sampling randomness.
	Temperature float64

	// MaxTokens caps generated tokens per turn. Required by the API.
	MaxTokens int64

	// APIKey overrides the ANTHROPIC_API_KEY environment variable.
	APIKey string

	// Logger receives request/response debug lines.
	Logger logging.Logger
}

// WithModel overrides the default model identifier.
func WithModel(name anthropic.Model) func(*Options) {
	return func(o *Options) { o.Model = name }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) func(*Options) {
	return func(o *Options) { o.Temperature = t }
}

// WithMaxTokens overrides the per-turn output token cap.
func WithMaxTokens(n int64) func(*Options) {
	return func(o *Options) { o.MaxTokens = n }
}

// WithAPIKey sets an explicit API key.
func WithAPIKey(key string) func(*Options) {
	return func(o *Options) { o.APIKey = key }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger logging.Logger) func(*Options) {
	return func(o *Options) { o.Logger = logger }
}

// Model wraps the Anthropic Messages API behind the generic model contract.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// New creates an Anthropic model using the official client.
func New(optFns ...func(*Options)) *Model {
	opts := defaultOptions(optFns)

	reqOpts := []option.RequestOption{
		option.WithMaxRetries(model.DefaultMaxRetries),
		option.WithRequestTimeout(model.DefaultTimeout),
	}
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(reqOpts...)
	return &Model{client: &client, opts: opts}
}

// NewFromClient wraps an existing client, keeping its transport settings.
func NewFromClient(client *anthropic.Client, optFns ...func(*Options)) *Model {
	return &Model{client: client, opts: defaultOptions(optFns)}
}

func defaultOptions(optFns []func(*Options)) Options {
	opts := Options{
		Model:       anthropic.ModelClaudeSonnet4_20250514,
		Temperature: 0.7,
		MaxTokens:   4096,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Info returns metadata describing this model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:              string(m.opts.Model),
		Provider:          "anthropic",
		SupportsStreaming: true,
	}
}

// Generate performs a blocking message call and returns the raw
// *anthropic.Message for the response adapter.
func (m *Model) Generate(ctx context.Context, req model.Request) (any, error) {
	params, err := m.buildParams(req)
	if err != nil {
		return nil, err
	}

	m.opts.Logger.Debug("anthropic request", "model", m.opts.Model, "messages", len(params.Messages), "tools", len(params.Tools))

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

// GenerateStream opens a streaming message call. The raw event stream is
// interpreted by the paired StreamAdapter.
func (m *Model) GenerateStream(ctx context.Context, req model.Request) (model.ChunkStream, error) {
	params, err := m.buildParams(req)
	if err != nil {
		return nil, err
	}

	m.opts.Logger.Debug("anthropic stream request", "model", m.opts.Model, "messages", len(params.Messages))

	stream := m.client.Messages.NewStreaming(ctx, params)
	return &sdkChunkStream{stream: stream}, nil
}

// ResponseAdapter returns the blocking response reader.
func (m *Model) ResponseAdapter() model.ResponseAdapter { return responseAdapter{} }

// StreamAdapter returns the streaming event mapper.
func (m *Model) StreamAdapter() model.StreamAdapter { return streamAdapter{} }

func (m *Model) buildParams(req model.Request) (anthropic.MessageNewParams, error) {
	messages, system, err := toSDKMessages(req)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}

	params := anthropic.MessageNewParams{
		Model:       m.opts.Model,
		Messages:    messages,
		MaxTokens:   m.opts.MaxTokens,
		Temperature: anthropic.Float(m.opts.Temperature),
	}
	if len(system) > 0 {
		params.System = system
	}

	for _, t := range req.Tools {
		schema := anthropic.ToolInputSchemaParam{Type: constant.Object("object")}
		input := t.InputSchema()
		if props, ok := input["properties"]; ok {
			schema.Properties = props
		}
		if required := requiredStrings(input); len(required) > 0 {
			schema.Required = required
		}
		tp := anthropic.ToolUnionParamOfTool(schema, t.Name())
		if d := t.Description(); d != "" && tp.OfTool != nil {
			tp.OfTool.Description = anthropic.String(d)
		}
		params.Tools = append(params.Tools, tp)
	}

	choice, err := toolChoice(req)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}
	if choice != nil {
		params.ToolChoice = *choice
	}
	return params, nil
}

func requiredStrings(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		var out []string
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// toolChoice maps the request's tool choice and parallel-call switch onto
// the union param. The API expresses "required" as "any" and hangs the
// parallel-call switch off the choice rather than the request.
func toolChoice(req model.Request) (*anthropic.ToolChoiceUnionParam, error) {
	switch req.ToolChoice {
	case "", "auto":
		if req.ToolChoice == "" && req.ParallelToolCalls == nil {
			return nil, nil
		}
		p := anthropic.ToolChoiceAutoParam{}
		if req.ParallelToolCalls != nil {
			p.DisableParallelToolUse = anthropic.Bool(!*req.ParallelToolCalls)
		}
		return &anthropic.ToolChoiceUnionParam{OfAuto: &p}, nil
	case "required":
		p := anthropic.ToolChoiceAnyParam{}
		if req.ParallelToolCalls != nil {
			p.DisableParallelToolUse = anthropic.Bool(!*req.ParallelToolCalls)
		}
		return &anthropic.ToolChoiceUnionParam{OfAny: &p}, nil
	case "none":
		return &anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}, nil
	default:
		return nil, core.NewInputError("unsupported tool choice %q", req.ToolChoice)
	}
}

type sdkChunkStream struct {
	stream *ssestream.Stream[anthropic.MessageStreamEventUnion]
}

func (s *sdkChunkStream) Next() bool   { return s.stream.Next() }
func (s *sdkChunkStream) Current() any { return s.stream.Current() }
func (s *sdkChunkStream) Close() error { return s.stream.Close() }

func (s *sdkChunkStream) Err() error {
	if err := s.stream.Err(); err != nil {
		return mapError(err)
	}
	return nil
}

// mapError classifies SDK failures into the shared taxonomy. Anything that
// never produced an API status is a connection failure and safe to retry.
func mapError(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case 401, 403:
			return core.NewAuthenticationError("anthropic authentication failed").Wrap(err)
		case 429:
			return core.NewRateLimitError("anthropic rate limit exceeded").Wrap(err)
		case 400, 422:
			return core.NewInvalidRequestError("anthropic rejected the request").Wrap(err)
		default:
			return core.NewStatusError("anthropic request failed").With("status_code", apierr.StatusCode).Wrap(err)
		}
	}
	return core.NewConnectionError("anthropic request failed").Wrap(err)
}
