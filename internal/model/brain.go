// Package model defines the core gatekeeper data types.
package model

import "time"

// Category is the label the gatekeeper assigns to a query.
type Category string

const (
	Simple  Category = "simple"
	Complex Category = "complex"
)

// Categories is the fixed label set.
var Categories = map[Category]bool{
	Simple:  true,
	Complex: true,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool { return Categories[c] }

// Opposite returns the other category. Unknown values map to Complex.
func (c Category) Opposite() Category {
	if c == Complex {
		return Simple
	}
	return Complex
}

// Source records which channel produced a learning event.
type Source string

const (
	SourceSeed        Source = "seed"
	SourceProactive   Source = "proactive"
	SourceInteractive Source = "interactive"
	SourceManual      Source = "manual"
)

// ValidSources are the allowed learning sources.
var ValidSources = map[Source]bool{
	SourceSeed:        true,
	SourceProactive:   true,
	SourceInteractive: true,
	SourceManual:      true,
}

// MemoryRecord is one entry of the Brain's history log.
type MemoryRecord struct {
	Input    string    `json:"input"`
	Category Category  `json:"category"`
	Source   Source    `json:"source,omitempty"`
	At       time.Time `json:"at"`
}

// Brain is the gatekeeper's knowledge base.
//
// Vocab maps a word to its insertion index. SimpleVocab and SimpleNgrams are
// sets; the persistence layer flattens them to sorted arrays.
type Brain struct {
	Vocab           map[string]int
	SimpleVocab     map[string]struct{}
	SimpleNgrams    map[string]struct{}
	SimpleResponses map[string]string
	Memory          []MemoryRecord
}

// NewBrain returns an empty Brain with all maps allocated.
func NewBrain() *Brain {
	return &Brain{
		Vocab:           make(map[string]int),
		SimpleVocab:     make(map[string]struct{}),
		SimpleNgrams:    make(map[string]struct{}),
		SimpleResponses: make(map[string]string),
	}
}

// Repair allocates any nil map so a partially decoded Brain is usable.
func (b *Brain) Repair() {
	if b.Vocab == nil {
		b.Vocab = make(map[string]int)
	}
	if b.SimpleVocab == nil {
		b.SimpleVocab = make(map[string]struct{})
	}
	if b.SimpleNgrams == nil {
		b.SimpleNgrams = make(map[string]struct{})
	}
	if b.SimpleResponses == nil {
		b.SimpleResponses = make(map[string]string)
	}
}

// Clone returns a deep copy of b.
func (b *Brain) Clone() *Brain {
	c := NewBrain()
	for k, v := range b.Vocab {
		c.Vocab[k] = v
	}
	for k := range b.SimpleVocab {
		c.SimpleVocab[k] = struct{}{}
	}
	for k := range b.SimpleNgrams {
		c.SimpleNgrams[k] = struct{}{}
	}
	for k, v := range b.SimpleResponses {
		c.SimpleResponses[k] = v
	}
	c.Memory = append([]MemoryRecord(nil), b.Memory...)
	return c
}

// FindMemory returns the index of the record for input, or -1.
func (b *Brain) FindMemory(input string) int {
	for i, r := range b.Memory {
		if r.Input == input {
			return i
		}
	}
	return -1
}

// BrainStats summarizes the size of a Brain.
type BrainStats struct {
	Vocab           int            `json:"vocab"`
	SimpleVocab     int            `json:"simple_vocab"`
	SimpleNgrams    int            `json:"simple_ngrams"`
	SimpleResponses int            `json:"simple_responses"`
	Memory          int            `json:"memory"`
	MemoryBySource  map[Source]int `json:"memory_by_source,omitempty"`
	Simple          int            `json:"memory_simple"`
	Complex         int            `json:"memory_complex"`
}

// Stats computes BrainStats for b.
func (b *Brain) Stats() BrainStats {
	st := BrainStats{
		Vocab:           len(b.Vocab),
		SimpleVocab:     len(b.SimpleVocab),
		SimpleNgrams:    len(b.SimpleNgrams),
		SimpleResponses: len(b.SimpleResponses),
		Memory:          len(b.Memory),
		MemoryBySource:  map[Source]int{},
	}
	for _, r := range b.Memory {
		if r.Source != "" {
			st.MemoryBySource[r.Source]++
		}
		if r.Category == Simple {
			st.Simple++
		} else {
			st.Complex++
		}
	}
	return st
}
