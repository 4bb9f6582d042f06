package store

// Homework is the object representing a spaced-repetition review item.
// Progression fields are merged in fresh on each completion event; the
// document itself is the only persistent identity the progression has.
type Homework struct {
	ID        string
	UserID    string
	CreatedTs int64
	UpdatedTs int64
	// Topic is what the item drills, e.g. "pretérito indefinido".
	Topic string
	// Status is "pending", "completed" or "mastered".
	Status string
	// Interval is the current review-ladder label ("1h".."30d").
	Interval string
	// RepetitionCount counts completed evaluations, resets excluded.
	RepetitionCount int
	// NextReviewTs is nil once the item is mastered.
	NextReviewTs *int64
	// Step is the review-ladder index (0..4).
	Step int
}
