package store

// SessionType is the kind of practice session.
type SessionType string

const (
	// SessionTypeChat is a free conversational practice session.
	SessionTypeChat SessionType = "chat"
	// SessionTypeLesson is a guided lesson session.
	SessionTypeLesson SessionType = "lesson"
)

// IsValid reports whether t is a known session type.
func (t SessionType) IsValid() bool {
	return t == SessionTypeChat || t == SessionTypeLesson
}

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	// SessionStatusActive means the session is in progress.
	SessionStatusActive SessionStatus = "active"
	// SessionStatusCompleted means the session finished and was evaluated.
	SessionStatusCompleted SessionStatus = "completed"
)

// Turn is one exchange in a session transcript.
type Turn struct {
	Role    string `json:"role"` // "user" or "tutor"
	Content string `json:"content"`
}

// Evaluation is the result the AI evaluator produced for a session.
type Evaluation struct {
	Score       float64  `json:"score"`
	Feedback    string   `json:"feedback"`
	Strengths   []string `json:"strengths,omitempty"`
	Corrections []string `json:"corrections,omitempty"`
}

// Session is the object representing a practice session.
type Session struct {
	ID          string
	UserID      string
	Type        SessionType
	Status      SessionStatus
	StartedTs   int64
	CompletedTs *int64
	Transcript  []Turn
	// HomeworkID links the session to the homework item it reviews, if any.
	HomeworkID string
	Evaluation *Evaluation
}

// UserTurnCount returns the number of learner turns in the transcript.
func (s *Session) UserTurnCount() int {
	count := 0
	for _, turn := range s.Transcript {
		if turn.Role == "user" {
			count++
		}
	}
	return count
}

// UpdateSession is the update request for session. Nil fields are left untouched.
type UpdateSession struct {
	ID          string
	UserID      string
	Status      *SessionStatus
	CompletedTs *int64
	Transcript  *[]Turn
	Evaluation  *Evaluation
}
