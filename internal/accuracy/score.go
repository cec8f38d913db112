package accuracy

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Fixed weights for the overall score. Sequence similarity carries the
// plurality weight; character and word accuracy balance against it.
const (
	similarityWeight = 0.4
	characterWeight  = 0.3
	wordWeight       = 0.3
)

const (
	emptyReferenceDetails = "Reference text is empty"
	noMajorErrorsDetails  = "No major errors detected"

	// Number of missing/extra words quoted in ErrorDetails. The full sets
	// are always returned in the report itself.
	errorWordPreview = 5
)

// Report is the immutable result of scoring extracted text against a
// reference. All percentage metrics are in [0, 100], rounded to two decimal
// places. Lengths count runes of the normalized texts.
type Report struct {
	OverallAccuracy   float64  `json:"overall_accuracy"`
	CharacterAccuracy float64  `json:"character_accuracy"`
	WordAccuracy      float64  `json:"word_accuracy"`
	SimilarityScore   float64  `json:"similarity_score"`
	ExtractedLength   int      `json:"extracted_length"`
	ReferenceLength   int      `json:"reference_length"`
	MissingWords      []string `json:"missing_words"`
	ExtraWords        []string `json:"extra_words"`
	ErrorDetails      string   `json:"error_details"`
}

// Score compares OCR-extracted text against a reference and returns a
// multi-metric accuracy report. It is a pure function of its two inputs and
// never fails: an empty reference and any internal fault both degrade to a
// zeroed report with an explanatory ErrorDetails string.
func Score(extracted, reference string) (report Report) {
	defer func() {
		if cause := recover(); cause != nil {
			report = Report{
				MissingWords: []string{},
				ExtraWords:   []string{},
				ErrorDetails: fmt.Sprintf("Error calculating accuracy: %v", cause),
			}
		}
	}()

	ext := Normalize(extracted)
	ref := Normalize(reference)

	// An empty reference makes every ratio undefined, so report zeros
	// rather than divide by it.
	if ref == "" {
		return Report{
			ExtractedLength: len([]rune(ext)),
			MissingWords:    []string{},
			ExtraWords:      []string{},
			ErrorDetails:    emptyReferenceDetails,
		}
	}

	extRunes := []rune(ext)
	refRunes := []rune(ref)

	similarity := sequenceRatio(extRunes, refRunes)
	character := positionalMatchRatio(extRunes, refRunes)

	extWords := uniqueWords(ext)
	refWords := uniqueWords(ref)
	word := wordOverlapRatio(extWords, refWords)

	missing := sortedDifference(refWords, extWords)
	extra := sortedDifference(extWords, refWords)

	return Report{
		OverallAccuracy:   weightedOverall(similarity, character, word),
		CharacterAccuracy: round2(character * 100),
		WordAccuracy:      round2(word * 100),
		SimilarityScore:   round2(similarity * 100),
		ExtractedLength:   len(extRunes),
		ReferenceLength:   len(refRunes),
		MissingWords:      missing,
		ExtraWords:        extra,
		ErrorDetails:      describeErrors(len(extRunes), len(refRunes), missing, extra),
	}
}

// weightedOverall combines the three ratio metrics into the overall
// percentage score.
func weightedOverall(similarity, character, word float64) float64 {
	return round2((similarity*similarityWeight + character*characterWeight + word*wordWeight) * 100)
}

// sequenceRatio computes the difflib-style matching-blocks similarity of two
// rune sequences, in [0, 1].
func sequenceRatio(a, b []rune) float64 {
	return difflib.NewMatcher(runeStrings(a), runeStrings(b)).Ratio()
}

func runeStrings(rs []rune) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}

// positionalMatchRatio pairs runes at the same index, up to the shorter
// length, and divides matches by the longer length. Dividing by the max
// penalizes length mismatch in either direction.
func positionalMatchRatio(ext, ref []rune) float64 {
	longer := len(ref)
	if len(ext) > longer {
		longer = len(ext)
	}
	if longer == 0 {
		return 0
	}
	shorter := len(ext)
	if len(ref) < shorter {
		shorter = len(ref)
	}
	matches := 0
	for i := 0; i < shorter; i++ {
		if ext[i] == ref[i] {
			matches++
		}
	}
	return float64(matches) / float64(longer)
}

func uniqueWords(s string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		words[w] = struct{}{}
	}
	return words
}

// wordOverlapRatio is the fraction of unique reference words also present in
// the extracted text. Duplicates collapse; this is set membership, not a
// count-weighted metric.
func wordOverlapRatio(ext, ref map[string]struct{}) float64 {
	if len(ref) == 0 {
		return 0
	}
	matched := 0
	for w := range ref {
		if _, ok := ext[w]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(ref))
}

// sortedDifference returns the words in a that are absent from b, sorted so
// identical inputs always produce identical reports.
func sortedDifference(a, b map[string]struct{}) []string {
	diff := make([]string, 0, len(a))
	for w := range a {
		if _, ok := b[w]; !ok {
			diff = append(diff, w)
		}
	}
	sort.Strings(diff)
	return diff
}

func describeErrors(extLen, refLen int, missing, extra []string) string {
	var notes []string
	if extLen != refLen {
		notes = append(notes, fmt.Sprintf("Length mismatch: extracted=%d, reference=%d", extLen, refLen))
	}
	if len(missing) > 0 {
		notes = append(notes, "Missing words: "+strings.Join(preview(missing), ", "))
	}
	if len(extra) > 0 {
		notes = append(notes, "Extra words: "+strings.Join(preview(extra), ", "))
	}
	if len(notes) == 0 {
		return noMajorErrorsDetails
	}
	return strings.Join(notes, "; ")
}

func preview(words []string) []string {
	if len(words) > errorWordPreview {
		return words[:errorWordPreview]
	}
	return words
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
