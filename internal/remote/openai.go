package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/rcliao/gatekeeper/internal/model"
)

// SystemPrompt tells the model how to answer and when to teach the gatekeeper.
const SystemPrompt = `You are the external model behind a local gatekeeper that answers short,
social phrases (greetings, thanks, farewells) from a cache. Answer the user's
query helpfully. Reply with a JSON object only:

{"userResponse": "<your answer>", "learningInstruction": null}

If the query is a short social phrase that should be answered locally next
time, set learningInstruction to:

{"command": "LEARN_SIMPLE_PHRASE", "query": "<the user's query>", "response": "<a short canonical reply>"}`

// OpenAIModel uses any OpenAI-compatible chat completion API.
type OpenAIModel struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     *zap.Logger
}

// NewOpenAIModel creates an OpenAI-backed Model. Default model: gpt-4o-mini.
func NewOpenAIModel(opts Options, logger *zap.Logger) *OpenAIModel {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	m := opts.Model
	if m == "" {
		m = "gpt-4o-mini"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIModel{
		client:  openai.NewClientWithConfig(cfg),
		model:   m,
		timeout: timeout,
		log:     logger.With(zap.String("provider", "openai"), zap.String("model", m)),
	}
}

func (o *OpenAIModel) Name() string { return "openai:" + o.model }

func (o *OpenAIModel) Ask(ctx context.Context, query string) (*model.RemoteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	o.log.Debug("forwarding query")
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	res, err := ParseReply(resp.Choices[0].Message.Content)
	if err != nil {
		o.log.Warn("dropping learning instruction", zap.Error(err))
	}
	o.log.Debug("received reply",
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Bool("instruction", res.Instruction != nil))
	return res, nil
}
