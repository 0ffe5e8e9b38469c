package service

import (
	"strings"
	"unicode"
)

// germanStopwords are words never worth a vocabulary entry: articles,
// pronouns, common prepositions and conjunctions, auxiliaries.
var germanStopwords = map[string]bool{
	"der": true, "die": true, "das": true, "den": true, "dem": true, "des": true,
	"ein": true, "eine": true, "einen": true, "einem": true, "einer": true, "eines": true,
	"ich": true, "du": true, "er": true, "sie": true, "es": true, "wir": true, "ihr": true,
	"mich": true, "dich": true, "sich": true, "mir": true, "dir": true, "uns": true, "euch": true,
	"mein": true, "dein": true, "sein": true, "unser": true, "euer": true,
	"und": true, "oder": true, "aber": true, "denn": true, "sondern": true,
	"in": true, "an": true, "auf": true, "aus": true, "bei": true, "mit": true,
	"nach": true, "seit": true, "von": true, "zu": true, "zum": true, "zur": true,
	"für": true, "gegen": true, "ohne": true, "um": true, "durch": true,
	"ist": true, "sind": true, "war": true, "waren": true, "bin": true, "bist": true,
	"hat": true, "habe": true, "haben": true, "hatte": true, "hatten": true,
	"wird": true, "werden": true, "wurde": true, "wurden": true,
	"nicht": true, "kein": true, "keine": true, "auch": true, "noch": true,
	"ja": true, "nein": true, "so": true, "wie": true, "was": true, "wer": true,
	"dass": true, "wenn": true, "weil": true, "als": true, "dann": true,
}

var germanArticles = map[string]bool{"der": true, "die": true, "das": true}

// vocabWord is a candidate vocabulary entry extracted from a sentence.
type vocabWord struct {
	Word     string
	Article  string
	WordType string
}

// extractVocabWords splits a German sentence into vocabulary candidates:
// punctuation stripped, stopwords and duplicates skipped, the preceding
// article captured for nouns. Word type is a cheap heuristic — capitalized
// words are nouns, -en endings verbs.
func extractVocabWords(sentence string) []vocabWord {
	tokens := strings.Fields(sentence)
	seen := make(map[string]bool)

	var out []vocabWord
	prev := ""
	for _, tok := range tokens {
		word := strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		if word == "" {
			prev = ""
			continue
		}

		lower := strings.ToLower(word)
		if germanStopwords[lower] || len([]rune(word)) < 3 {
			prev = lower
			continue
		}
		if seen[lower] {
			prev = lower
			continue
		}
		seen[lower] = true

		vw := vocabWord{Word: word}
		if germanArticles[prev] {
			vw.Article = prev
		}
		vw.WordType = guessWordType(word)
		out = append(out, vw)
		prev = lower
	}
	return out
}

func guessWordType(word string) string {
	runes := []rune(word)
	if unicode.IsUpper(runes[0]) {
		return "noun"
	}
	if strings.HasSuffix(word, "en") || strings.HasSuffix(word, "ern") {
		return "verb"
	}
	return ""
}
