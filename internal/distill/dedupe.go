package distill

import (
	"strings"
	"unicode"

	"github.com/reviewrag/review-rag/pkg/models"
)

// DefaultSimilarityThreshold matches the ratio above which two
// guidelines are considered duplicates.
const DefaultSimilarityThreshold = 0.85

// Dedupe removes exact and high-similarity duplicate guidelines. Of
// two exact duplicates the first occurrence is kept. Of two
// near-duplicates the first is kept unless the later one carries a
// longer rationale, in which case the earlier one is dropped instead.
func Dedupe(guidelines []models.Guideline, threshold float64) []models.Guideline {
	remove := make(map[int]bool)
	n := len(guidelines)

	for i := 0; i < n; i++ {
		if remove[i] {
			continue
		}
		for j := i + 1; j < n; j++ {
			if remove[j] {
				continue
			}
			gi, gj := guidelines[i].Guideline, guidelines[j].Guideline
			if gi == "" || gj == "" {
				continue
			}
			if gi == gj {
				remove[j] = true
				continue
			}
			if similarityRatio(gi, gj) >= threshold {
				if len(guidelines[j].Rationale) > len(guidelines[i].Rationale) {
					remove[i] = true
					break
				}
				remove[j] = true
			}
		}
	}

	kept := make([]models.Guideline, 0, n-len(remove))
	for i, g := range guidelines {
		if !remove[i] {
			kept = append(kept, g)
		}
	}
	return kept
}

// similarityRatio approximates Python's difflib.SequenceMatcher ratio
// using the word-level Dice coefficient over lowercased token sets:
// twice the shared-token count over the combined token count of both
// texts.
func similarityRatio(a, b string) float64 {
	wa := tokenSet(a)
	wb := tokenSet(b)
	if len(wa) == 0 && len(wb) == 0 {
		return 1
	}

	shared := 0
	for w := range wa {
		if wb[w] {
			shared++
		}
	}

	total := len(wa) + len(wb)
	if total == 0 {
		return 0
	}
	return 2 * float64(shared) / float64(total)
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		set[w] = true
	}
	return set
}
