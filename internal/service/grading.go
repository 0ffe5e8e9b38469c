package service

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// translatePassThreshold is the minimum normalized similarity for a free-text
// translation to count as correct.
const translatePassThreshold = 0.75

// normalizeAnswer lowercases, folds German umlauts and ß to their ASCII
// digraphs, strips punctuation, and collapses whitespace, so that "Für dich!"
// and "fuer dich" compare equal.
func normalizeAnswer(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	replacer := strings.NewReplacer(
		"ä", "ae",
		"ö", "oe",
		"ü", "ue",
		"ß", "ss",
	)
	s = replacer.Replace(s)

	var sb strings.Builder
	lastSpace := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				sb.WriteRune(' ')
				lastSpace = true
			}
		}
		// punctuation is dropped
	}
	return strings.TrimRight(sb.String(), " ")
}

// gradeGapFill checks a gap-fill answer: normalized exact match.
func gradeGapFill(answer, correct string) bool {
	return normalizeAnswer(answer) == normalizeAnswer(correct)
}

// gradeTranslate checks a free-text translation with a fuzzy match: the
// normalized Levenshtein similarity must reach translatePassThreshold.
func gradeTranslate(answer, correct string) bool {
	a := normalizeAnswer(answer)
	c := normalizeAnswer(correct)
	if a == "" || c == "" {
		return a == c
	}
	if a == c {
		return true
	}
	return similarity(a, c) >= translatePassThreshold
}

// similarity returns 1 - distance/maxLen in [0, 1].
func similarity(a, b string) float64 {
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

// gradeOrder checks a word-order answer: the token sequence must match the
// correct sentence exactly after normalization.
func gradeOrder(tokens []string, correct string) bool {
	want := strings.Fields(normalizeAnswer(correct))
	if len(tokens) != len(want) {
		return false
	}
	for i, tok := range tokens {
		if normalizeAnswer(tok) != want[i] {
			return false
		}
	}
	return true
}
