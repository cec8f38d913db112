package accuracy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_EmptyReference(t *testing.T) {
	tests := []struct {
		name      string
		reference string
	}{
		{name: "empty string", reference: ""},
		{name: "whitespace only", reference: " \t\n "},
		{name: "punctuation only", reference: "?!..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Score("anything at all", tt.reference)
			assert.Zero(t, report.OverallAccuracy)
			assert.Zero(t, report.CharacterAccuracy)
			assert.Zero(t, report.WordAccuracy)
			assert.Zero(t, report.SimilarityScore)
			assert.Zero(t, report.ReferenceLength)
			assert.Empty(t, report.MissingWords)
			assert.Empty(t, report.ExtraWords)
			assert.Equal(t, "Reference text is empty", report.ErrorDetails)
		})
	}
}

func TestScore_Identity(t *testing.T) {
	texts := []string{
		"hello world",
		"a single line of plain text",
		"یہ ایک امتحان ہے",
	}

	for _, s := range texts {
		report := Score(s, s)
		assert.InDelta(t, 100.0, report.SimilarityScore, 1e-9)
		assert.InDelta(t, 100.0, report.CharacterAccuracy, 1e-9)
		assert.InDelta(t, 100.0, report.WordAccuracy, 1e-9)
		assert.InDelta(t, 100.0, report.OverallAccuracy, 1e-9)
		assert.Empty(t, report.MissingWords)
		assert.Empty(t, report.ExtraWords)
		assert.Equal(t, report.ExtractedLength, report.ReferenceLength)
		assert.Equal(t, "No major errors detected", report.ErrorDetails)
	}
}

func TestScore_DisjointTexts(t *testing.T) {
	report := Score("abc", "xyz")

	assert.Zero(t, report.SimilarityScore)
	assert.Zero(t, report.CharacterAccuracy)
	assert.Zero(t, report.WordAccuracy)
	assert.Zero(t, report.OverallAccuracy)
	assert.Equal(t, []string{"xyz"}, report.MissingWords)
	assert.Equal(t, []string{"abc"}, report.ExtraWords)
	assert.Equal(t, "Missing words: xyz; Extra words: abc", report.ErrorDetails)
}

func TestScore_LengthPenalty(t *testing.T) {
	report := Score("hello", "hello world")

	assert.InDelta(t, 50.0, report.WordAccuracy, 1e-9)
	assert.Equal(t, []string{"world"}, report.MissingWords)
	assert.Empty(t, report.ExtraWords)
	assert.Equal(t, 5, report.ExtractedLength)
	assert.Equal(t, 11, report.ReferenceLength)

	// 5 positional matches over max(5, 11) characters.
	assert.InDelta(t, 45.45, report.CharacterAccuracy, 0.001)
	// Matching block "hello": 2*5 / (5+11).
	assert.InDelta(t, 62.5, report.SimilarityScore, 0.001)
	assert.Contains(t, report.ErrorDetails, "Length mismatch: extracted=5, reference=11")
}

func TestScore_CaseAndPunctuationInsensitive(t *testing.T) {
	report := Score("Hello, World!", "hello world")

	assert.InDelta(t, 100.0, report.WordAccuracy, 1e-9)
	assert.InDelta(t, 100.0, report.CharacterAccuracy, 1e-9)
	assert.InDelta(t, 100.0, report.SimilarityScore, 1e-9)
	assert.Empty(t, report.MissingWords)
	assert.Empty(t, report.ExtraWords)
}

func TestScore_ErrorDetailsPreviewLimit(t *testing.T) {
	report := Score("", "one two three four five six seven")

	require.Len(t, report.MissingWords, 7)
	// Details quote at most five words; the report carries the full set.
	assert.Equal(t,
		"Length mismatch: extracted=0, reference=33; Missing words: five, four, one, seven, six",
		report.ErrorDetails)
}

func TestWeightedOverall(t *testing.T) {
	assert.InDelta(t, 71.0, weightedOverall(0.8, 0.7, 0.6), 1e-9)
	assert.InDelta(t, 100.0, weightedOverall(1, 1, 1), 1e-9)
	assert.Zero(t, weightedOverall(0, 0, 0))
}

func TestScore_Deterministic(t *testing.T) {
	extracted := "یہ ایک ٹیسٹ سطر ہے جس میں کچھ الفاظ غائب ہیں"
	reference := "یہ ایک مکمل ٹیسٹ سطر ہے جس میں تمام الفاظ موجود ہیں"

	first := Score(extracted, reference)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, Score(extracted, reference))
	}
}

func TestScore_NeverPanics(t *testing.T) {
	inputs := []struct{ extracted, reference string }{
		{string([]byte{0xff, 0xfe, 0xfd}), "reference"},
		{"extracted", string([]byte{0x80, 0x81})},
		{"", ""},
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() {
			report := Score(in.extracted, in.reference)
			assert.NotEmpty(t, report.ErrorDetails)
		})
	}
}
