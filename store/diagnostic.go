package store

// DiagnosticStatus is the lifecycle state of a diagnostic assessment.
type DiagnosticStatus string

const (
	// DiagnosticStatusActive means the assessment is in progress.
	DiagnosticStatusActive DiagnosticStatus = "active"
	// DiagnosticStatusCompleted means the assessment was scored.
	DiagnosticStatusCompleted DiagnosticStatus = "completed"
)

// DiagnosticResult is the derived outcome of a completed assessment.
type DiagnosticResult struct {
	OverallScore  int      `json:"overallScore"`
	LevelAssigned string   `json:"levelAssigned"`
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
}

// Diagnostic is the object representing a diagnostic assessment.
type Diagnostic struct {
	ID        string
	UserID    string
	Status    DiagnosticStatus
	CreatedTs int64
	// Raw sub-scores in [0,100], recorded by the assessment flow before
	// completion. Range validation is the caller's responsibility.
	GrammarScore       float64
	ListeningScore     float64
	PronunciationScore float64
	CompletedTs        *int64
	Result             *DiagnosticResult
}

// UpdateDiagnostic is the update request for diagnostic. Nil fields are left untouched.
type UpdateDiagnostic struct {
	ID          string
	UserID      string
	Status      *DiagnosticStatus
	CompletedTs *int64
	Result      *DiagnosticResult
}
