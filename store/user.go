package store

// User is the object representing a learner profile.
type User struct {
	ID          string
	CreatedTs   int64
	UpdatedTs   int64
	DisplayName string
	// Level is the assigned CEFR level ("A1".."C1"), empty before placement.
	Level string
	// Timezone is the IANA identifier for all schedule math; empty means
	// the application default.
	Timezone string
	// WeeklySchedule holds the declared weekly blocks as stored, untrusted.
	// Shape validation happens in the schedule service; malformed entries
	// are dropped there, never here.
	WeeklySchedule []map[string]any
	// PlacementTs is set once the diagnostic assigns a level.
	PlacementTs *int64
}

// UpdateUser is the update request for user. Nil fields are left untouched.
type UpdateUser struct {
	ID             string
	UpdatedTs      *int64
	DisplayName    *string
	Level          *string
	Timezone       *string
	WeeklySchedule *[]map[string]any
	PlacementTs    *int64
}

// PushSubscription is a registered web-push endpoint for a user.
type PushSubscription struct {
	ID        string
	UserID    string
	CreatedTs int64
	Endpoint  string
	// P256dh and Auth are the client keys of the push subscription.
	P256dh string
	Auth   string
}
