// Package normalize canonicalizes query text for the gatekeeper.
package normalize

import (
	"strings"
)

// Punctuation is the set of sentence marks removed by Normalize.
const Punctuation = ".,!?;:"

var stripper = strings.NewReplacer(
	".", "",
	",", "",
	"!", "",
	"?", "",
	";", "",
	":", "",
)

// Normalize lower-cases text, removes Punctuation and trims surrounding
// whitespace. It is idempotent.
func Normalize(text string) string {
	return strings.TrimSpace(stripper.Replace(strings.ToLower(text)))
}

// Words splits normalized text on whitespace runs. Empty input yields nil.
func Words(normalized string) []string {
	return strings.Fields(normalized)
}

// Bigrams joins each adjacent pair of words with a single space.
func Bigrams(words []string) []string {
	if len(words) < 2 {
		return nil
	}
	out := make([]string, 0, len(words)-1)
	for i := 0; i < len(words)-1; i++ {
		out = append(out, words[i]+" "+words[i+1])
	}
	return out
}
