// Package gatekeeper owns the Brain and implements the classification and
// learning engine that decides whether a query can be answered locally.
package gatekeeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/gatekeeper/internal/model"
	"github.com/rcliao/gatekeeper/internal/store"
)

var (
	// ErrPersist wraps a failed save. The in-memory Brain keeps the change.
	ErrPersist = errors.New("persist brain")
	// ErrInvalidCategory is returned for labels outside model.Categories.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrNotReady is returned by mutations issued before Init completes.
	ErrNotReady = errors.New("gatekeeper not ready")
)

// Options configures a Gatekeeper.
type Options struct {
	Key           string // storage slot; defaults to store.DefaultKey
	KeepVersions  int    // versions retained per slot after each save; 0 keeps all
	RelabelMemory bool   // overwrite a memory record's category on relabel
	Logger        *zap.Logger
	Now           func() time.Time
}

type pruner interface {
	Prune(ctx context.Context, key string, keep int) (int64, error)
}

type resetter interface {
	Reset(ctx context.Context, key string) (int64, error)
}

// Gatekeeper classifies queries against a Brain and learns from feedback.
// It is safe for concurrent use.
type Gatekeeper struct {
	store store.Store
	opts  Options
	log   *zap.Logger

	mu    sync.RWMutex
	brain *model.Brain
	ready bool
}

// New returns a Gatekeeper that is not ready until Init is called.
func New(st store.Store, opts Options) *Gatekeeper {
	if opts.Key == "" {
		opts.Key = store.DefaultKey
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Gatekeeper{
		store: st,
		opts:  opts,
		log:   opts.Logger.With(zap.String("key", opts.Key)),
	}
}

// Open creates a Gatekeeper and initializes it.
func Open(ctx context.Context, st store.Store, opts Options) (*Gatekeeper, error) {
	g := New(st, opts)
	if err := g.Init(ctx); err != nil {
		return nil, err
	}
	return g, nil
}

// Init loads the Brain from the store, or bootstraps it from the seed set when
// the slot is empty or unreadable, then saves it once. A loaded record is
// saved in its current encoding, which upgrades older records in place. A
// failed save is logged, not fatal.
func (g *Gatekeeper) Init(ctx context.Context) error {
	b, err := g.store.Load(ctx, g.opts.Key)
	switch {
	case err == nil:
		g.log.Debug("brain loaded", zap.Int("memory", len(b.Memory)), zap.Int("responses", len(b.SimpleResponses)))
	case errors.Is(err, store.ErrNotFound):
		g.log.Info("no stored brain, bootstrapping from seed")
		b = SeedBrain(g.opts.Now())
	default:
		g.log.Warn("stored brain unreadable, bootstrapping from seed", zap.Error(err))
		b = SeedBrain(g.opts.Now())
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.brain = b
	g.ready = true
	if err := g.persist(ctx); err != nil {
		g.log.Error("save brain at init", zap.Error(err))
	}
	return nil
}

// Ready reports whether Init has completed.
func (g *Gatekeeper) Ready() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.ready
}

// Key returns the storage slot the Gatekeeper persists to.
func (g *Gatekeeper) Key() string { return g.opts.Key }

// Snapshot returns a deep copy of the current Brain, or nil before Init.
func (g *Gatekeeper) Snapshot() *model.Brain {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.brain == nil {
		return nil
	}
	return g.brain.Clone()
}

// Stats summarizes the current Brain.
func (g *Gatekeeper) Stats() model.BrainStats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.brain == nil {
		return model.BrainStats{}
	}
	return g.brain.Stats()
}

// MemoryParams filters History.
type MemoryParams struct {
	Category model.Category // empty means any
	Source   model.Source   // empty means any
	Limit    int            // 0 means all; otherwise the newest Limit records
}

// History returns memory records in insertion order.
func (g *Gatekeeper) History(p MemoryParams) []model.MemoryRecord {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.brain == nil {
		return nil
	}

	var out []model.MemoryRecord
	for _, r := range g.brain.Memory {
		if p.Category != "" && r.Category != p.Category {
			continue
		}
		if p.Source != "" && r.Source != p.Source {
			continue
		}
		out = append(out, r)
	}
	if p.Limit > 0 && len(out) > p.Limit {
		out = out[len(out)-p.Limit:]
	}
	return out
}

// Replace swaps in b as the Brain and persists it.
func (g *Gatekeeper) Replace(ctx context.Context, b *model.Brain) error {
	b = b.Clone()
	b.Repair()

	g.mu.Lock()
	defer g.mu.Unlock()
	g.brain = b
	g.ready = true
	return g.persist(ctx)
}

// Reset discards every stored version and re-seeds the Brain.
func (g *Gatekeeper) Reset(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if r, ok := g.store.(resetter); ok {
		n, err := r.Reset(ctx, g.opts.Key)
		if err != nil {
			return err
		}
		g.log.Info("brain reset", zap.Int64("versions_deleted", n))
	}
	g.brain = SeedBrain(g.opts.Now())
	g.ready = true
	return g.persist(ctx)
}

// persist saves the Brain. Callers hold g.mu.
func (g *Gatekeeper) persist(ctx context.Context) error {
	v, err := g.store.Save(ctx, g.opts.Key, g.brain)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if v != nil {
		g.log.Debug("brain saved", zap.Int("version", v.Version), zap.Int("bytes", v.SizeBytes))
	}

	if p, ok := g.store.(pruner); ok && g.opts.KeepVersions > 0 {
		if n, err := p.Prune(ctx, g.opts.Key, g.opts.KeepVersions); err != nil {
			g.log.Warn("prune brain versions", zap.Error(err))
		} else if n > 0 {
			g.log.Debug("pruned brain versions", zap.Int64("deleted", n))
		}
	}
	return nil
}
