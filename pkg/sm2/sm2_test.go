package sm2

import (
	"math"
	"testing"
	"time"
)

const epsilon = 1e-9

func assertFloat(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %.6f, want %.6f", name, got, want)
	}
}

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNewStateIsDue(t *testing.T) {
	s := NewState(testNow)
	if !s.Due(testNow) {
		t.Error("new state should be due immediately")
	}
	assertFloat(t, "ease factor", s.EaseFactor, DefaultEaseFactor)
}

func TestFirstPassIntervalIsOneDay(t *testing.T) {
	s := Review(NewState(testNow), QualityPerfect, testNow)
	if s.IntervalDays != 1 {
		t.Errorf("interval = %d, want 1", s.IntervalDays)
	}
	if s.Repetitions != 1 {
		t.Errorf("repetitions = %d, want 1", s.Repetitions)
	}
	if want := testNow.AddDate(0, 0, 1); !s.NextReview.Equal(want) {
		t.Errorf("next review = %v, want %v", s.NextReview, want)
	}
}

func TestSecondPassIntervalIsSixDays(t *testing.T) {
	s := Review(NewState(testNow), QualityPerfect, testNow)
	s = Review(s, QualityPerfect, testNow)
	if s.IntervalDays != 6 {
		t.Errorf("interval = %d, want 6", s.IntervalDays)
	}
	if s.Repetitions != 2 {
		t.Errorf("repetitions = %d, want 2", s.Repetitions)
	}
}

func TestLaterIntervalsScaleByEaseFactor(t *testing.T) {
	s := State{EaseFactor: 2.5, IntervalDays: 6, Repetitions: 2}
	s = Review(s, QualityPerfect, testNow)
	// EF' = 2.5 + 0.1 = 2.6, interval = round(6 * 2.6) = 16
	assertFloat(t, "ease factor", s.EaseFactor, 2.6)
	if s.IntervalDays != 16 {
		t.Errorf("interval = %d, want 16", s.IntervalDays)
	}
}

func TestEaseFactorUpdateFormula(t *testing.T) {
	tests := []struct {
		quality Quality
		wantEF  float64
	}{
		{QualityPerfect, 2.6},
		{QualityCorrectHesitant, 2.5},
		{QualityCorrectDifficult, 2.36},
		{QualityIncorrectFamiliar, 2.18},
		{QualityIncorrect, 1.96},
		{QualityBlackout, 1.7},
	}
	for _, tc := range tests {
		s := Review(State{EaseFactor: 2.5}, tc.quality, testNow)
		assertFloat(t, "ease factor", s.EaseFactor, tc.wantEF)
	}
}

func TestEaseFactorNeverBelowFloor(t *testing.T) {
	s := State{EaseFactor: MinEaseFactor}
	for i := 0; i < 10; i++ {
		s = Review(s, QualityBlackout, testNow)
	}
	assertFloat(t, "ease factor", s.EaseFactor, MinEaseFactor)
}

func TestFailResetsIntervalAndRepetitions(t *testing.T) {
	s := State{EaseFactor: 2.5, IntervalDays: 42, Repetitions: 7}
	s = Review(s, QualityIncorrect, testNow)
	if s.IntervalDays != 1 {
		t.Errorf("interval = %d, want 1", s.IntervalDays)
	}
	if s.Repetitions != 0 {
		t.Errorf("repetitions = %d, want 0", s.Repetitions)
	}
}

func TestIntervalCappedAtOneYear(t *testing.T) {
	s := State{EaseFactor: 2.5, IntervalDays: 300, Repetitions: 9}
	s = Review(s, QualityPerfect, testNow)
	if s.IntervalDays != MaxIntervalDays {
		t.Errorf("interval = %d, want %d", s.IntervalDays, MaxIntervalDays)
	}
}

func TestQualityClamped(t *testing.T) {
	s := Review(State{EaseFactor: 2.5}, Quality(9), testNow)
	if s.LastQuality != QualityPerfect {
		t.Errorf("quality = %d, want %d", s.LastQuality, QualityPerfect)
	}
	s = Review(State{EaseFactor: 2.5}, Quality(-3), testNow)
	if s.LastQuality != QualityBlackout {
		t.Errorf("quality = %d, want %d", s.LastQuality, QualityBlackout)
	}
}

func TestZeroEaseFactorTreatedAsDefault(t *testing.T) {
	// Rows created before the ease column existed come back as zero.
	s := Review(State{}, QualityPerfect, testNow)
	assertFloat(t, "ease factor", s.EaseFactor, 2.6)
}

func TestMastered(t *testing.T) {
	tests := []struct {
		name string
		s    State
		want bool
	}{
		{"fresh", NewState(testNow), false},
		{"enough reps, short interval", State{Repetitions: 6, LastQuality: QualityPerfect, IntervalDays: 10}, false},
		{"enough reps, weak answer", State{Repetitions: 6, LastQuality: QualityCorrectDifficult, IntervalDays: 40}, false},
		{"mastered", State{Repetitions: 5, LastQuality: QualityCorrectHesitant, IntervalDays: 30}, true},
	}
	for _, tc := range tests {
		if got := tc.s.Mastered(); got != tc.want {
			t.Errorf("%s: Mastered() = %v, want %v", tc.name, got, tc.want)
		}
	}
}
