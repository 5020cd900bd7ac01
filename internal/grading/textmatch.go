package grading

import "unicode"

// wordSet splits text into a lower-cased set of words. Punctuation is
// dropped; anything that is not a letter or digit separates words.
func wordSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	word := make([]rune, 0, 16)
	flush := func() {
		if len(word) > 0 {
			out[string(word)] = struct{}{}
			word = word[:0]
		}
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			word = append(word, unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()
	return out
}

// recall is the fraction of keywords present in the student's word set.
func recall(student, keywords map[string]struct{}) float64 {
	if len(keywords) == 0 {
		return 0
	}
	hit := 0
	for k := range keywords {
		if _, ok := student[k]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(keywords))
}

// overlap is a Jaccard-style fallback over raw word sets, used when
// stop-word removal empties the keyword set (single-word references).
func overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	larger := len(a)
	if len(b) > larger {
		larger = len(b)
	}
	return float64(inter) / float64(larger)
}

// DefaultStopWords are dropped from reference answers before keyword
// matching.
var DefaultStopWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for",
	"from", "had", "has", "have", "in", "into", "is", "it", "its",
	"not", "of", "on", "or", "that", "the", "this", "to", "was",
	"were", "which", "will", "with",
}
