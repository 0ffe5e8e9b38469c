// Package sm2 implements the SuperMemo-2 spaced-repetition algorithm used to
// schedule vocabulary and grammar-topic reviews.
package sm2

import (
	"math"
	"time"
)

// Quality is the self-reported recall quality of a review, 0..5.
type Quality int

const (
	// QualityBlackout: complete blackout, no recall at all.
	QualityBlackout Quality = 0
	// QualityIncorrect: wrong answer, correct one remembered once seen.
	QualityIncorrect Quality = 1
	// QualityIncorrectFamiliar: wrong answer, but the correct one felt familiar.
	QualityIncorrectFamiliar Quality = 2
	// QualityCorrectDifficult: correct answer recalled with serious effort.
	QualityCorrectDifficult Quality = 3
	// QualityCorrectHesitant: correct answer after some hesitation.
	QualityCorrectHesitant Quality = 4
	// QualityPerfect: correct answer with no hesitation.
	QualityPerfect Quality = 5
)

// PassThreshold is the minimum quality counted as a successful review.
const PassThreshold = QualityCorrectDifficult

const (
	// MinEaseFactor is the floor for the ease factor.
	MinEaseFactor = 1.3
	// DefaultEaseFactor is the ease factor assigned to new items.
	DefaultEaseFactor = 2.5
	// MaxIntervalDays caps the review interval at one year.
	MaxIntervalDays = 365
)

// State is the scheduling state of a single reviewable item.
type State struct {
	EaseFactor   float64
	IntervalDays int
	Repetitions  int
	NextReview   time.Time
	LastQuality  Quality
}

// NewState returns the state for an item that has never been reviewed.
// NextReview is now, so the item is immediately due.
func NewState(now time.Time) State {
	return State{
		EaseFactor: DefaultEaseFactor,
		NextReview: now,
	}
}

// Due reports whether the item should be reviewed at the given time.
func (s State) Due(now time.Time) bool {
	return !s.NextReview.After(now)
}

// Review applies one SM-2 review with the given quality and returns the
// updated state. The ease factor is adjusted on every review; the interval
// grows on a pass and resets to one day on a fail.
func Review(s State, q Quality, now time.Time) State {
	if q < QualityBlackout {
		q = QualityBlackout
	}
	if q > QualityPerfect {
		q = QualityPerfect
	}

	ef := s.EaseFactor
	if ef == 0 {
		ef = DefaultEaseFactor
	}
	ef += 0.1 - float64(5-q)*(0.08+float64(5-q)*0.02)
	if ef < MinEaseFactor {
		ef = MinEaseFactor
	}

	next := State{
		EaseFactor:  ef,
		LastQuality: q,
	}

	if q >= PassThreshold {
		switch s.Repetitions {
		case 0:
			next.IntervalDays = 1
		case 1:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.Round(float64(s.IntervalDays) * ef))
		}
		if next.IntervalDays > MaxIntervalDays {
			next.IntervalDays = MaxIntervalDays
		}
		next.Repetitions = s.Repetitions + 1
	} else {
		next.IntervalDays = 1
		next.Repetitions = 0
	}

	next.NextReview = now.AddDate(0, 0, next.IntervalDays)
	return next
}

// Mastered reports whether an item can be considered learned: at least five
// successful repetitions, a comfortable last answer, and a month-long interval.
func (s State) Mastered() bool {
	return s.Repetitions >= 5 &&
		s.LastQuality >= QualityCorrectHesitant &&
		s.IntervalDays >= 30
}
