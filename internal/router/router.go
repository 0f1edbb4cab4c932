// Package router sends each query to the local gatekeeper or the external
// model and feeds learning signals from both back into the gatekeeper.
package router

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rcliao/gatekeeper/internal/gatekeeper"
	"github.com/rcliao/gatekeeper/internal/model"
	"github.com/rcliao/gatekeeper/internal/remote"
)

// ErrorReply is shown to the user when routing fails for any reason.
const ErrorReply = "Sorry, something went wrong. Please try again."

// DefaultSession is used when callers do not track sessions.
const DefaultSession = "default"

var (
	// ErrNoTurn is returned by Feedback when the session has no classified query.
	ErrNoTurn = errors.New("no previous query in session")
	// ErrInvalidVerdict is returned for verdicts other than confirm or reject.
	ErrInvalidVerdict = errors.New("invalid verdict")
)

// Gatekeeper is the local classifier the router consults.
type Gatekeeper interface {
	Explain(raw string) gatekeeper.Decision
	SimpleResponse(raw string) string
	Learn(ctx context.Context, raw string, category model.Category, response string, source model.Source) error
}

// Origin says where a reply came from.
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
	OriginError  Origin = "error"
)

// Reply is the outcome of routing one query.
type Reply struct {
	SessionID string          `json:"session_id"`
	Query     string          `json:"query"`
	Reply     string          `json:"reply"`
	Category  model.Category  `json:"category"`
	Rule      gatekeeper.Rule `json:"rule"`
	Origin    Origin          `json:"origin"`
	Taught    bool            `json:"taught,omitempty"`
}

// FeedbackResult describes what a feedback action changed.
type FeedbackResult struct {
	SessionID string         `json:"session_id"`
	Query     string         `json:"query"`
	Verdict   model.Verdict  `json:"verdict"`
	Previous  model.Category `json:"previous"`
	Category  model.Category `json:"category"`
	Learned   bool           `json:"learned"`
}

type turn struct {
	query    string
	category model.Category
}

// Options configures a Router.
type Options struct {
	Logger     *zap.Logger
	Registerer prometheus.Registerer // nil leaves metrics unregistered
}

// Router routes queries for any number of sessions. Safe for concurrent use.
type Router struct {
	gk      Gatekeeper
	remote  remote.Model
	log     *zap.Logger
	metrics *Metrics

	mu    sync.Mutex
	turns map[string]turn
}

// New creates a Router.
func New(gk Gatekeeper, rm remote.Model, opts Options) *Router {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Router{
		gk:      gk,
		remote:  rm,
		log:     opts.Logger,
		metrics: NewMetrics(opts.Registerer),
		turns:   make(map[string]turn),
	}
}

// Route answers raw for the session. It never fails: errors and panics are
// logged and reported to the user as ErrorReply.
func (r *Router) Route(ctx context.Context, sessionID, raw string) (reply Reply) {
	if sessionID == "" {
		sessionID = DefaultSession
	}
	reply = Reply{SessionID: sessionID, Query: raw}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("route panicked", zap.Any("panic", p), zap.String("session", sessionID))
			reply.Reply, reply.Origin, reply.Taught = ErrorReply, OriginError, false
		}
		r.metrics.Routed.WithLabelValues(string(reply.Category), string(reply.Origin)).Inc()
	}()

	d := r.gk.Explain(raw)
	reply.Category, reply.Rule = d.Category, d.Rule
	r.remember(sessionID, turn{query: raw, category: d.Category})

	log := r.log.With(zap.String("session", sessionID), zap.String("input", d.Input))
	log.Debug("classified", zap.String("category", string(d.Category)), zap.String("rule", string(d.Rule)), zap.String("detail", d.Detail))

	if d.Category == model.Simple {
		reply.Reply, reply.Origin = r.gk.SimpleResponse(raw), OriginLocal
		return reply
	}

	start := time.Now()
	res, err := r.remote.Ask(ctx, raw)
	r.metrics.RemoteLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		r.metrics.RemoteErrors.Inc()
		log.Error("external model failed", zap.String("model", r.remote.Name()), zap.Error(err))
		reply.Reply, reply.Origin = ErrorReply, OriginError
		return reply
	}
	reply.Reply, reply.Origin = res.UserResponse, OriginRemote

	if res.Instruction != nil {
		reply.Taught = r.apply(ctx, log, res.Instruction)
	}
	return reply
}

// apply executes a learning instruction from the external model.
func (r *Router) apply(ctx context.Context, log *zap.Logger, in *model.LearningInstruction) bool {
	switch in.Kind {
	case model.InstructionLearnSimplePhrase:
		err := r.gk.Learn(ctx, in.Query, model.Simple, in.Response, model.SourceProactive)
		if err != nil && !errors.Is(err, gatekeeper.ErrPersist) {
			log.Error("apply learning instruction", zap.String("command", in.Kind.String()), zap.Error(err))
			return false
		}
		r.metrics.Learned.WithLabelValues(string(model.SourceProactive)).Inc()
		log.Info("learned from external model", zap.String("phrase", in.Query))
		return true
	default:
		log.Warn("ignoring learning instruction", zap.String("command", in.Kind.String()))
		return false
	}
}

// Feedback applies the user's verdict on the session's last classification.
// Reject teaches the gatekeeper the opposite category; reply is stored as the
// canonical response only when the corrected category is simple.
func (r *Router) Feedback(ctx context.Context, sessionID string, verdict model.Verdict, reply string) (*FeedbackResult, error) {
	if sessionID == "" {
		sessionID = DefaultSession
	}

	r.mu.Lock()
	last, ok := r.turns[sessionID]
	r.mu.Unlock()
	if !ok {
		return nil, ErrNoTurn
	}

	res := &FeedbackResult{
		SessionID: sessionID,
		Query:     last.query,
		Verdict:   verdict,
		Previous:  last.category,
		Category:  last.category,
	}

	switch verdict {
	case model.VerdictConfirm:
		return res, nil
	case model.VerdictReject:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidVerdict, verdict)
	}

	corrected := last.category.Opposite()
	if corrected != model.Simple {
		reply = ""
	}
	if err := r.gk.Learn(ctx, last.query, corrected, reply, model.SourceInteractive); err != nil {
		if !errors.Is(err, gatekeeper.ErrPersist) {
			return nil, fmt.Errorf("learn correction: %w", err)
		}
		r.log.Error("correction not persisted", zap.String("session", sessionID), zap.Error(err))
	}
	r.metrics.Learned.WithLabelValues(string(model.SourceInteractive)).Inc()
	r.remember(sessionID, turn{query: last.query, category: corrected})

	res.Category = corrected
	res.Learned = true
	return res, nil
}

// Observe classifies raw and records it as the session's last turn without
// answering it, so Feedback can correct a query that was never routed.
func (r *Router) Observe(sessionID, raw string) gatekeeper.Decision {
	if sessionID == "" {
		sessionID = DefaultSession
	}
	d := r.gk.Explain(raw)
	r.remember(sessionID, turn{query: raw, category: d.Category})
	return d
}

// EndSession forgets the session's last turn.
func (r *Router) EndSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.turns, sessionID)
}

func (r *Router) remember(sessionID string, t turn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns[sessionID] = t
}
