package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/gatekeeper/internal/model"
)

func TestEncodeIsStable(t *testing.T) {
	first, err := Encode(sampleBrain())
	require.NoError(t, err)

	b, err := Decode(first)
	require.NoError(t, err)
	second, err := Encode(b)
	require.NoError(t, err)

	b, err = Decode(second)
	require.NoError(t, err)
	third, err := Encode(b)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, string(second), string(third))
}

func TestDecodeIgnoresArrayOrder(t *testing.T) {
	a := `{"vocab":{},"simpleVocab":["you","how","are"],"simpleNgrams":["are you","how are"],"simpleResponses":{},"memory":[]}`
	b := `{"vocab":{},"simpleVocab":["are","you","how"],"simpleNgrams":["how are","are you"],"simpleResponses":{},"memory":[]}`

	ba, err := Decode([]byte(a))
	require.NoError(t, err)
	bb, err := Decode([]byte(b))
	require.NoError(t, err)

	assert.Equal(t, ba.SimpleVocab, bb.SimpleVocab)
	assert.Equal(t, ba.SimpleNgrams, bb.SimpleNgrams)
	assert.Contains(t, ba.SimpleNgrams, "how are")

	ea, _ := Encode(ba)
	eb, _ := Encode(bb)
	assert.Equal(t, string(ea), string(eb))
}

func TestDecodeOlderRecordWithoutSets(t *testing.T) {
	old := `{"vocab":{"hola":0},"simpleResponses":{"hola":"¡Hola!"},"memory":[{"input":"hola","category":"simple"}]}`

	b, err := Decode([]byte(old))
	require.NoError(t, err)
	assert.NotNil(t, b.SimpleVocab)
	assert.NotNil(t, b.SimpleNgrams)
	assert.Empty(t, b.SimpleNgrams)
	assert.Equal(t, "¡Hola!", b.SimpleResponses["hola"])
	require.Len(t, b.Memory, 1)
	assert.Equal(t, model.Simple, b.Memory[0].Category)
}

func TestDecodeMinimalRecord(t *testing.T) {
	b, err := Decode([]byte(`{"vocab":{}}`))
	require.NoError(t, err)
	assert.NotNil(t, b.SimpleVocab)
	assert.NotNil(t, b.SimpleResponses)
}

func TestDecodeRejectsIncompatibleRecords(t *testing.T) {
	tests := map[string]string{
		"null":               `null`,
		"array":              `[1, 2]`,
		"string":             `"brain"`,
		"empty object":       `{}`,
		"unrelated object":   `{"name":"not a brain"}`,
		"invalid category":   `{"memory":[{"input":"a","category":"medium"}]}`,
		"duplicate input":    `{"memory":[{"input":"a","category":"simple"},{"input":"a","category":"complex"}]}`,
		"vocab out of range": `{"vocab":{"x":7}}`,
		"unnormalized key":   `{"simpleResponses":{"Hello!":"Hi"}}`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(data))
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestDecodeIncompatibleShape(t *testing.T) {
	_, err := Decode([]byte(`{"vocab":["not","a","map"]}`))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestImportChecksInvariants(t *testing.T) {
	data, err := Export(sampleBrain())
	require.NoError(t, err)

	b, err := Import(data)
	require.NoError(t, err)
	assert.Equal(t, sampleBrain(), b)

	_, err = Import([]byte(`{"memory":[{"input":"a","category":"maybe"}]}`))
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = Import([]byte(`{"memory":[{"input":"a","category":"simple"},{"input":"a","category":"complex"}]}`))
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = Import([]byte(`{"vocab":{"a":0,"b":0}}`))
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = Import([]byte(`{"simpleResponses":{"Hello":"Hi"}}`))
	assert.ErrorIs(t, err, ErrCorrupt)
}
