package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rcliao/gatekeeper/internal/model"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		reply       string
		instruction *model.LearningInstruction
		wantErr     bool
	}{
		{
			name:    "plain text",
			content: "Quantum computers use qubits.",
			reply:   "Quantum computers use qubits.",
		},
		{
			name:    "json without instruction",
			content: `{"userResponse":"Paris.","learningInstruction":null}`,
			reply:   "Paris.",
		},
		{
			name:    "json with instruction",
			content: `{"userResponse":"Cheers!","learningInstruction":{"command":"LEARN_SIMPLE_PHRASE","query":"cheers mate","response":"Cheers!"}}`,
			reply:   "Cheers!",
			instruction: &model.LearningInstruction{
				Kind: model.InstructionLearnSimplePhrase, Query: "cheers mate", Response: "Cheers!",
			},
		},
		{
			name:    "fenced json",
			content: "```json\n{\"userResponse\":\"Hi\"}\n```",
			reply:   "Hi",
		},
		{
			name:    "unknown command",
			content: `{"userResponse":"ok","learningInstruction":{"command":"FORGET_EVERYTHING"}}`,
			reply:   "ok",
			wantErr: true,
		},
		{
			name:    "broken json",
			content: `{"userResponse":`,
			reply:   `{"userResponse":`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseReply(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			require.NotNil(t, res)
			assert.Equal(t, tt.reply, res.UserResponse)
			assert.Equal(t, tt.instruction, res.Instruction)
		})
	}
}

func TestNew(t *testing.T) {
	m, err := New(Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "offline", m.Name())

	m, err = New(Options{APIKey: "sk-test"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai:gpt-4o-mini", m.Name())

	_, err = New(Options{Provider: "openai"}, nil)
	assert.Error(t, err)

	_, err = New(Options{Provider: "carrier-pigeon"}, nil)
	assert.Error(t, err)
}

func TestOfflineModel(t *testing.T) {
	res, err := OfflineModel{}.Ask(context.Background(), "explain gravity")
	require.NoError(t, err)
	assert.Equal(t, OfflineReply, res.UserResponse)
	assert.Nil(t, res.Instruction)
}

func TestOpenAIModelAsk(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Model string `json:"model"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model

		content := `{"userResponse":"Hey there!","learningInstruction":{"command":"LEARN_SIMPLE_PHRASE","query":"hey there","response":"Hey there!"}}`
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	defer srv.Close()

	m := NewOpenAIModel(Options{APIKey: "sk-test", Model: "test-model", BaseURL: srv.URL + "/v1"}, zap.NewNop())
	res, err := m.Ask(context.Background(), "hey there")
	require.NoError(t, err)

	assert.Equal(t, "test-model", gotModel)
	assert.Equal(t, "Hey there!", res.UserResponse)
	require.NotNil(t, res.Instruction)
	assert.Equal(t, model.InstructionLearnSimplePhrase, res.Instruction.Kind)
	assert.Equal(t, "hey there", res.Instruction.Query)
}

func TestOpenAIModelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	m := NewOpenAIModel(Options{APIKey: "sk-test", BaseURL: srv.URL + "/v1"}, zap.NewNop())
	_, err := m.Ask(context.Background(), "anything")
	assert.Error(t, err)
}
