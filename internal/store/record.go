package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rcliao/gatekeeper/internal/model"
)

// brainRecord is the serialized form of a Brain. Sets are flattened to
// sorted arrays so equal Brains always encode to the same bytes.
type brainRecord struct {
	Vocab           map[string]int       `json:"vocab"`
	SimpleVocab     []string             `json:"simpleVocab"`
	SimpleNgrams    []string             `json:"simpleNgrams"`
	SimpleResponses map[string]string    `json:"simpleResponses"`
	Memory          []model.MemoryRecord `json:"memory"`
	Categories      []model.Category     `json:"categories"`
}

// Encode serializes b to its persisted JSON form.
func Encode(b *model.Brain) ([]byte, error) {
	rec := brainRecord{
		Vocab:           b.Vocab,
		SimpleVocab:     sortedSet(b.SimpleVocab),
		SimpleNgrams:    sortedSet(b.SimpleNgrams),
		SimpleResponses: b.SimpleResponses,
		Memory:          b.Memory,
		Categories:      []model.Category{model.Simple, model.Complex},
	}
	if rec.Vocab == nil {
		rec.Vocab = map[string]int{}
	}
	if rec.SimpleResponses == nil {
		rec.SimpleResponses = map[string]string{}
	}
	if rec.Memory == nil {
		rec.Memory = []model.MemoryRecord{}
	}
	return json.Marshal(rec)
}

// Decode rebuilds a Brain from its persisted JSON form. Missing set fields
// (older records without bigrams, for example) decode as empty. A record that
// is not an object, carries none of vocab, simpleResponses and memory, or
// fails Check is ErrCorrupt.
func Decode(data []byte) (*model.Brain, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return nil, fmt.Errorf("%w: record is not an object", ErrCorrupt)
	}

	var rec brainRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if rec.Vocab == nil && rec.SimpleResponses == nil && rec.Memory == nil {
		return nil, fmt.Errorf("%w: record has no brain fields", ErrCorrupt)
	}

	b := &model.Brain{
		Vocab:           rec.Vocab,
		SimpleVocab:     toSet(rec.SimpleVocab),
		SimpleNgrams:    toSet(rec.SimpleNgrams),
		SimpleResponses: rec.SimpleResponses,
		Memory:          rec.Memory,
	}
	b.Repair()
	if err := Check(b); err != nil {
		return nil, err
	}
	return b, nil
}

func sortedSet(s map[string]struct{}) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func toSet(items []string) map[string]struct{} {
	s := make(map[string]struct{}, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}
