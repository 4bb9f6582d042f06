package schedule

// DefaultToleranceWindowMinutes is the maximum distance, in minutes,
// between a session start and its nearest declared block for the session
// to count as on schedule.
const DefaultToleranceWindowMinutes = 75

// DefaultBlockDurationMinutes is applied when a stored block has a
// missing or invalid duration.
const DefaultBlockDurationMinutes = 15
