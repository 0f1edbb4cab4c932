package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rcliao/gatekeeper/internal/model"
	"github.com/rcliao/gatekeeper/internal/normalize"
)

// Export renders b as indented JSON in the persisted record format.
func Export(b *model.Brain) ([]byte, error) {
	data, err := Encode(b)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Import parses an exported Brain. Decode already checks its invariants.
func Import(data []byte) (*model.Brain, error) {
	return Decode(data)
}

// Check reports the first structural problem in b: response keys that are
// not normalized, memory records with an unknown category or duplicated
// input, or vocab indices that are not a permutation of 0..n-1.
func Check(b *model.Brain) error {
	for k := range b.SimpleResponses {
		if normalize.Normalize(k) != k {
			return fmt.Errorf("%w: response key %q is not normalized", ErrCorrupt, k)
		}
	}

	seen := make(map[string]bool, len(b.Memory))
	for i, r := range b.Memory {
		if !r.Category.Valid() {
			return fmt.Errorf("%w: memory[%d] has category %q", ErrCorrupt, i, r.Category)
		}
		if seen[r.Input] {
			return fmt.Errorf("%w: memory[%d] duplicates input %q", ErrCorrupt, i, r.Input)
		}
		seen[r.Input] = true
	}

	used := make([]bool, len(b.Vocab))
	for w, idx := range b.Vocab {
		if idx < 0 || idx >= len(used) || used[idx] {
			return fmt.Errorf("%w: vocab index %d for %q out of sequence", ErrCorrupt, idx, w)
		}
		used[idx] = true
	}
	return nil
}
