package store

import (
	"context"
)

// Driver is an interface for store driver.
// It contains all methods that a store backend should implement.
//
// Lookups return (nil, nil) when the document does not exist; merge
// methods fail when the target is absent only where documented.
type Driver interface {
	Close() error

	// User model related methods.
	GetUser(ctx context.Context, id string) (*User, error)
	UpsertUser(ctx context.Context, upsert *User) (*User, error)
	UpdateUser(ctx context.Context, update *UpdateUser) error
	ListUsersWithSchedule(ctx context.Context) ([]*User, error)

	// Session model related methods.
	CreateSession(ctx context.Context, create *Session) (*Session, error)
	GetSession(ctx context.Context, userID, id string) (*Session, error)
	// UpdateSession fails when the session does not exist.
	UpdateSession(ctx context.Context, update *UpdateSession) error

	// Diagnostic model related methods.
	CreateDiagnostic(ctx context.Context, create *Diagnostic) (*Diagnostic, error)
	GetDiagnostic(ctx context.Context, userID, id string) (*Diagnostic, error)
	// UpdateDiagnostic fails when the diagnostic does not exist.
	UpdateDiagnostic(ctx context.Context, update *UpdateDiagnostic) error

	// Homework model related methods.
	GetHomework(ctx context.Context, userID, id string) (*Homework, error)
	UpsertHomework(ctx context.Context, upsert *Homework) (*Homework, error)

	// ScheduleLog model related methods. Upsert merges by (userID, id).
	UpsertScheduleLog(ctx context.Context, upsert *ScheduleLog) (*ScheduleLog, error)
	GetScheduleLog(ctx context.Context, userID, id string) (*ScheduleLog, error)

	// ScheduleAlert model related methods. Append-only.
	CreateScheduleAlert(ctx context.Context, create *ScheduleAlert) (*ScheduleAlert, error)
	ListScheduleAlerts(ctx context.Context, userID string) ([]*ScheduleAlert, error)

	// NotificationDispatch related methods.
	// CreateDispatchIfAbsent is a conditional create: it returns false
	// without error when a marker with the same id already exists.
	CreateDispatchIfAbsent(ctx context.Context, create *NotificationDispatch) (bool, error)

	// PushSubscription model related methods.
	ListPushSubscriptions(ctx context.Context, userID string) ([]*PushSubscription, error)
	CreatePushSubscription(ctx context.Context, create *PushSubscription) (*PushSubscription, error)
	DeletePushSubscription(ctx context.Context, userID, id string) error
}
