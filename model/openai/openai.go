// Package openai implements the model.Model contract on the OpenAI Chat
// Completions API, including streaming and function/tool calling. It
// serializes canonical conversations into the SDK's message format and
// adapts responses and stream chunks back into canonical values.
package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"

	"github.com/lunarhue/agentic/core"
	"github.com/lunarhue/agentic/logging"
	"github.com/lunarhue/agentic/model"
)

// Options configure the OpenAI model adapter. Fields mirror a deliberately
// small subset of Chat Completion parameters; extend via functional options
// without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
	BaseURL             string
	Logger              logging.Logger
}

// WithModel overrides the default chat model.
func WithModel(name string) func(*Options) {
	return func(o *Options) { o.Model = name }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) func(*Options) {
	return func(o *Options) { o.Temperature = t }
}

// WithMaxCompletionTokens caps the completion length.
func WithMaxCompletionTokens(n int64) func(*Options) {
	return func(o *Options) { o.MaxCompletionTokens = n }
}

// WithAPIKey sets an explicit API key instead of the environment default.
func WithAPIKey(key string) func(*Options) {
	return func(o *Options) { o.APIKey = key }
}

// WithBaseURL points the client at a compatible alternative endpoint.
func WithBaseURL(url string) func(*Options) {
	return func(o *Options) { o.BaseURL = url }
}

// WithLogger attaches a logger for request/stream diagnostics.
func WithLogger(logger logging.Logger) func(*Options) {
	return func(o *Options) { o.Logger = logger }
}

// Model wraps the OpenAI Chat Completions API behind model.Model.
type Model struct {
	client *openai.Client
	opts   Options
}

// New creates an OpenAI model using the official client. The API key comes
// from the options or the standard environment variables.
func New(optFns ...func(*Options)) *Model {
	opts := defaultOptions(optFns)
	reqOpts := []option.RequestOption{
		option.WithMaxRetries(model.DefaultMaxRetries),
		option.WithRequestTimeout(model.DefaultTimeout),
	}
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(reqOpts...)
	return &Model{client: &client, opts: opts}
}

// NewFromClient creates an OpenAI model from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(*Options)) *Model {
	return &Model{client: client, opts: defaultOptions(optFns)}
}

func defaultOptions(optFns []func(*Options)) Options {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
		Logger:              logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return opts
}

// Info returns metadata describing this model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:              m.opts.Model,
		Provider:          "openai",
		SupportsStreaming: true,
	}
}

// Generate performs one blocking completion. The returned value is the raw
// *openai.ChatCompletion for the paired ResponseAdapter.
func (m *Model) Generate(ctx context.Context, req model.Request) (any, error) {
	params, err := m.buildParams(req)
	if err != nil {
		return nil, err
	}
	m.opts.Logger.Debug("openai generate", "model", m.opts.Model, "messages", len(params.Messages), "tools", len(params.Tools))
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

// GenerateStream starts a streaming completion. Usage reporting on the
// final chunk is always requested.
func (m *Model) GenerateStream(ctx context.Context, req model.Request) (model.ChunkStream, error) {
	params, err := m.buildParams(req)
	if err != nil {
		return nil, err
	}
	params.StreamOptions = openai.ChatCompletionStreamOptionsParam{
		IncludeUsage: openai.Bool(true),
	}
	m.opts.Logger.Debug("openai stream", "model", m.opts.Model, "messages", len(params.Messages), "tools", len(params.Tools))
	stream := m.client.Chat.Completions.NewStreaming(ctx, params)
	return &sdkChunkStream{stream: stream}, nil
}

// ResponseAdapter implements model.Model.
func (m *Model) ResponseAdapter() model.ResponseAdapter { return responseAdapter{} }

// StreamAdapter implements model.Model.
func (m *Model) StreamAdapter() model.StreamAdapter { return streamAdapter{} }

// buildParams assembles SDK parameters from a normalized request.
func (m *Model) buildParams(req model.Request) (openai.ChatCompletionNewParams, error) {
	messages, err := toSDKMessages(req)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}
	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
	if len(req.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
		for i, t := range req.Tools {
			def := openai.FunctionDefinitionParam{
				Name:        t.Name(),
				Description: openai.String(t.Description()),
				Parameters:  openai.FunctionParameters(t.InputSchema()),
			}
			if t.Strict() {
				def.Strict = openai.Bool(true)
			}
			tools[i] = openai.ChatCompletionToolParam{Type: "function", Function: def}
		}
		params.Tools = tools
	}
	switch req.ToolChoice {
	case "", "auto":
		// Provider default.
	case "none", "required":
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String(req.ToolChoice),
		}
	default:
		return openai.ChatCompletionNewParams{}, core.NewInputError("unsupported tool choice %q", req.ToolChoice)
	}
	if req.ParallelToolCalls != nil {
		params.ParallelToolCalls = openai.Bool(*req.ParallelToolCalls)
	}
	return params, nil
}

// sdkChunkStream adapts the SDK's SSE stream to model.ChunkStream.
type sdkChunkStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
}

func (s *sdkChunkStream) Next() bool   { return s.stream.Next() }
func (s *sdkChunkStream) Current() any { return s.stream.Current() }

func (s *sdkChunkStream) Err() error {
	if err := s.stream.Err(); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *sdkChunkStream) Close() error { return s.stream.Close() }

// mapError translates SDK failures into the structured taxonomy. API errors
// map by status; anything else is a retryable connection failure.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 403:
			return core.NewAuthenticationError("openai authentication failed").Wrap(err)
		case 429:
			return core.NewRateLimitError("openai rate limit exceeded").Wrap(err)
		case 400, 422:
			return core.NewInvalidRequestError("openai rejected the request").Wrap(err)
		default:
			return core.NewStatusError("openai API error").
				With("status_code", apiErr.StatusCode).
				Wrap(err)
		}
	}
	return core.NewConnectionError("openai request failed").Wrap(err)
}
