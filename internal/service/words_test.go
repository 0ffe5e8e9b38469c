package service

import "testing"

func TestExtractVocabWordsSkipsStopwordsAndShortWords(t *testing.T) {
	words := extractVocabWords("Ich gehe in die Schule.")
	if len(words) != 2 {
		t.Fatalf("got %d words %v, want 2", len(words), words)
	}
	if words[0].Word != "gehe" {
		t.Errorf("first word = %q, want gehe", words[0].Word)
	}
	if words[1].Word != "Schule" {
		t.Errorf("second word = %q, want Schule", words[1].Word)
	}
}

func TestExtractVocabWordsCapturesArticle(t *testing.T) {
	words := extractVocabWords("Der Hund schläft.")
	if len(words) != 2 {
		t.Fatalf("got %v, want 2 words", words)
	}
	if words[0].Article != "der" {
		t.Errorf("article = %q, want der", words[0].Article)
	}
	if words[0].WordType != "noun" {
		t.Errorf("word type = %q, want noun", words[0].WordType)
	}
}

func TestExtractVocabWordsDeduplicates(t *testing.T) {
	words := extractVocabWords("Hund und Hund und hund")
	if len(words) != 1 {
		t.Errorf("got %v, want a single entry", words)
	}
}

func TestExtractVocabWordsStripsPunctuation(t *testing.T) {
	words := extractVocabWords("»Tschüss!«, sagte Anna.")
	for _, w := range words {
		for _, r := range w.Word {
			if r == '!' || r == '«' || r == '»' || r == ',' || r == '.' {
				t.Errorf("word %q contains punctuation", w.Word)
			}
		}
	}
}

func TestGuessWordType(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"Katze", "noun"},
		{"laufen", "verb"},
		{"schnell", ""},
	}
	for _, tc := range tests {
		if got := guessWordType(tc.word); got != tc.want {
			t.Errorf("guessWordType(%q) = %q, want %q", tc.word, got, tc.want)
		}
	}
}
