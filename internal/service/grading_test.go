package service

import "testing"

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Für dich!", "fuer dich"},
		{"  Straße ", "strasse"},
		{"Wie geht's?", "wie gehts"},
		{"Ich   bin,  müde.", "ich bin muede"},
		{"", ""},
		{"...", ""},
	}
	for _, tc := range tests {
		if got := normalizeAnswer(tc.in); got != tc.want {
			t.Errorf("normalizeAnswer(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGradeGapFill(t *testing.T) {
	tests := []struct {
		answer  string
		correct string
		want    bool
	}{
		{"geht", "geht", true},
		{"Geht", "geht", true},
		{"fuer", "für", true},
		{"gehen", "geht", false},
		{"", "geht", false},
	}
	for _, tc := range tests {
		if got := gradeGapFill(tc.answer, tc.correct); got != tc.want {
			t.Errorf("gradeGapFill(%q, %q) = %v, want %v", tc.answer, tc.correct, got, tc.want)
		}
	}
}

func TestGradeTranslateExactAndFuzzy(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		correct string
		want    bool
	}{
		{"exact", "Ich bin müde", "ich bin müde", true},
		{"umlaut variant", "Ich bin muede.", "Ich bin müde", true},
		{"single typo passes", "Ich bin müde heuet", "Ich bin müde heute", true},
		{"different sentence fails", "Der Hund schläft", "Ich bin müde", false},
		{"empty answer fails", "", "Ich bin müde", false},
		{"short word typo fails", "rot", "tor", false},
	}
	for _, tc := range tests {
		if got := gradeTranslate(tc.answer, tc.correct); got != tc.want {
			t.Errorf("%s: gradeTranslate(%q, %q) = %v, want %v", tc.name, tc.answer, tc.correct, got, tc.want)
		}
	}
}

func TestSimilarityBounds(t *testing.T) {
	if got := similarity("abc", "abc"); got != 1.0 {
		t.Errorf("similarity of equal strings = %f, want 1.0", got)
	}
	if got := similarity("abc", "xyz"); got != 0.0 {
		t.Errorf("similarity of disjoint strings = %f, want 0.0", got)
	}
	if got := similarity("", ""); got != 1.0 {
		t.Errorf("similarity of empty strings = %f, want 1.0", got)
	}
}

func TestGradeOrder(t *testing.T) {
	correct := "Ich gehe heute ins Kino"
	tests := []struct {
		name   string
		tokens []string
		want   bool
	}{
		{"correct order", []string{"Ich", "gehe", "heute", "ins", "Kino"}, true},
		{"case-insensitive", []string{"ich", "gehe", "heute", "ins", "kino"}, true},
		{"wrong order", []string{"Heute", "ich", "gehe", "ins", "Kino"}, false},
		{"missing token", []string{"Ich", "gehe", "heute", "ins"}, false},
		{"empty", nil, false},
	}
	for _, tc := range tests {
		if got := gradeOrder(tc.tokens, correct); got != tc.want {
			t.Errorf("%s: gradeOrder(%v) = %v, want %v", tc.name, tc.tokens, got, tc.want)
		}
	}
}
