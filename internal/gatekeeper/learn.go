package gatekeeper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/gatekeeper/internal/model"
	"github.com/rcliao/gatekeeper/internal/normalize"
)

// Learn applies a feedback event to the Brain and persists it.
//
// A simple event stores response (when non-empty) under the normalized phrase
// and adds its words and adjacent pairs to the simple vocabularies. A complex
// event only touches the word registry and the memory log. On a save failure
// the in-memory change is kept and an ErrPersist error is returned.
func (g *Gatekeeper) Learn(ctx context.Context, raw string, category model.Category, response string, source model.Source) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	if source == "" {
		source = model.SourceManual
	}
	text := normalize.Normalize(raw)

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.ready || g.brain == nil {
		return ErrNotReady
	}

	apply(g.brain, text, category, response, source, g.opts.Now().UTC(), g.opts.RelabelMemory)
	g.log.Info("learned",
		zap.String("input", text),
		zap.String("category", string(category)),
		zap.String("source", string(source)),
		zap.Bool("with_response", response != ""))

	if err := g.persist(ctx); err != nil {
		g.log.Error("brain not persisted, keeping in-memory state", zap.Error(err))
		return err
	}
	return nil
}

// apply mutates b for one normalized feedback event.
func apply(b *model.Brain, text string, category model.Category, response string, source model.Source, at time.Time, relabel bool) {
	words := normalize.Words(text)

	if category == model.Simple {
		if response != "" {
			b.SimpleResponses[text] = response
		}
		for _, w := range words {
			b.SimpleVocab[w] = struct{}{}
		}
		for _, pair := range normalize.Bigrams(words) {
			b.SimpleNgrams[pair] = struct{}{}
		}
	}

	for _, w := range words {
		if _, ok := b.Vocab[w]; !ok {
			b.Vocab[w] = len(b.Vocab)
		}
	}

	i := b.FindMemory(text)
	switch {
	case i < 0:
		b.Memory = append(b.Memory, model.MemoryRecord{Input: text, Category: category, Source: source, At: at})
	case relabel && b.Memory[i].Category != category:
		b.Memory[i].Category = category
		b.Memory[i].Source = source
		b.Memory[i].At = at
	}
}
