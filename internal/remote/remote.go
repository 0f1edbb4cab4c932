// Package remote provides the external model the router forwards complex
// queries to.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/gatekeeper/internal/model"
)

// Model answers queries the gatekeeper cannot handle locally. The result may
// carry a learning instruction for the gatekeeper.
type Model interface {
	Ask(ctx context.Context, query string) (*model.RemoteResult, error)
	Name() string
}

// Options selects and configures a provider.
type Options struct {
	Provider string // "openai", "offline", or "" to pick by APIKey
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// New creates a Model from opts. With no provider set, a configured API key
// selects OpenAI and anything else falls back to the offline model.
func New(opts Options, logger *zap.Logger) (Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	provider := opts.Provider
	if provider == "" {
		provider = "offline"
		if opts.APIKey != "" {
			provider = "openai"
		}
	}

	switch provider {
	case "openai":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key (OPENAI_API_KEY)")
		}
		return NewOpenAIModel(opts, logger), nil
	case "offline":
		logger.Info("external model disabled, using offline replies")
		return OfflineModel{}, nil
	default:
		return nil, fmt.Errorf("unknown remote provider %q", provider)
	}
}

// OfflineModel answers every query with a fixed notice and never teaches.
type OfflineModel struct{}

// OfflineReply is the answer OfflineModel gives.
const OfflineReply = "The external model is not configured, so I can only answer simple queries right now."

func (OfflineModel) Ask(ctx context.Context, query string) (*model.RemoteResult, error) {
	return &model.RemoteResult{UserResponse: OfflineReply}, nil
}

func (OfflineModel) Name() string { return "offline" }

type wireInstruction struct {
	Command  string `json:"command"`
	Query    string `json:"query"`
	Response string `json:"response"`
}

type wireResult struct {
	UserResponse        string           `json:"userResponse"`
	LearningInstruction *wireInstruction `json:"learningInstruction"`
}

// ParseReply decodes a model reply. JSON replies follow the
// {userResponse, learningInstruction} contract; anything else is treated as a
// plain answer with no instruction. Unknown commands are dropped.
func ParseReply(content string) (*model.RemoteResult, error) {
	body := strings.TrimSpace(content)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)

	if !strings.HasPrefix(body, "{") {
		return &model.RemoteResult{UserResponse: strings.TrimSpace(content)}, nil
	}

	var w wireResult
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		return &model.RemoteResult{UserResponse: strings.TrimSpace(content)}, nil
	}

	res := &model.RemoteResult{UserResponse: w.UserResponse}
	if w.LearningInstruction == nil {
		return res, nil
	}

	var kind model.InstructionKind
	if err := kind.UnmarshalText([]byte(w.LearningInstruction.Command)); err != nil {
		return res, err
	}
	if kind == model.InstructionNone {
		return res, nil
	}
	res.Instruction = &model.LearningInstruction{
		Kind:     kind,
		Query:    w.LearningInstruction.Query,
		Response: w.LearningInstruction.Response,
	}
	return res, nil
}
