// Package srs implements the spaced-repetition review ladder.
//
// An item climbs a fixed ladder of intervals on each passing evaluation
// and falls back to the shortest interval on any failure. The next review
// is always scheduled relative to the evaluation instant, not the
// previously planned due time: evaluating late shifts the whole tail of
// the ladder forward. That drift is the observed production behavior and
// is kept intentionally.
package srs

import "time"

// Status is the review state of an item after an evaluation.
type Status string

const (
	// StatusPending means the last evaluation failed; the item restarts
	// from the bottom of the ladder.
	StatusPending Status = "pending"
	// StatusCompleted means the evaluation passed and another review is
	// scheduled.
	StatusCompleted Status = "completed"
	// StatusMastered means the item graduated; no further review.
	StatusMastered Status = "mastered"
)

// Interval is a review-ladder label.
type Interval string

// The ladder, indexed by step 0..4.
const (
	IntervalHour       Interval = "1h"
	IntervalDay        Interval = "1d"
	IntervalThreeDays  Interval = "3d"
	IntervalWeek       Interval = "7d"
	IntervalThirtyDays Interval = "30d"
)

var ladder = [5]Interval{IntervalHour, IntervalDay, IntervalThreeDays, IntervalWeek, IntervalThirtyDays}

var durations = map[Interval]time.Duration{
	IntervalHour:       time.Hour,
	IntervalDay:        24 * time.Hour,
	IntervalThreeDays:  3 * 24 * time.Hour,
	IntervalWeek:       7 * 24 * time.Hour,
	IntervalThirtyDays: 30 * 24 * time.Hour,
}

const (
	// PassThreshold is the minimum score that counts as a pass.
	PassThreshold = 70.0
	// MasteryRepetitions is the repetition count at which a pass
	// graduates the item.
	MasteryRepetitions = 5
)

// Progression is the state an evaluation transitions an item into.
type Progression struct {
	Status          Status
	Interval        Interval
	RepetitionCount int
	// NextReviewAt is nil once the item is mastered.
	NextReviewAt *time.Time
	// Step is the ladder index (0..4).
	Step int
}

// Process computes the progression for an item with the given prior
// repetition count after an evaluation scoring score at instant now.
// It is a total function: any non-negative count and any score produce a
// valid progression.
func Process(repetitionCount int, score float64, now time.Time) Progression {
	if score < PassThreshold {
		// Any failure restarts the ladder from the shortest interval.
		next := now.Add(durations[IntervalHour])
		return Progression{
			Status:          StatusPending,
			Interval:        IntervalHour,
			RepetitionCount: 1,
			NextReviewAt:    &next,
			Step:            0,
		}
	}

	if repetitionCount >= MasteryRepetitions {
		return Progression{
			Status:          StatusMastered,
			Interval:        IntervalThirtyDays,
			RepetitionCount: repetitionCount + 1,
			NextReviewAt:    nil,
			Step:            len(ladder) - 1,
		}
	}

	step := repetitionCount
	if step > len(ladder)-1 {
		step = len(ladder) - 1
	}
	interval := ladder[step]
	next := now.Add(durations[interval])
	return Progression{
		Status:          StatusCompleted,
		Interval:        interval,
		RepetitionCount: repetitionCount + 1,
		NextReviewAt:    &next,
		Step:            step,
	}
}
