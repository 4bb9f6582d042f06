// Package store provides document access for all habla backend objects.
package store

import (
	"context"
	"time"

	"github.com/hablaai/habla/store/cache"
)

// Store provides document access to all raw objects.
type Store struct {
	driver Driver

	// Cache for user profiles; every session, diagnostic and schedule
	// operation starts with a GetUser for the same small set of ids.
	userCache *cache.Cache
}

// New creates a new instance of Store.
func New(driver Driver) *Store {
	return &Store{
		driver: driver,
		userCache: cache.New(cache.Config{
			DefaultTTL: time.Minute,
			MaxItems:   10000,
		}),
	}
}

// GetDriver returns the underlying driver.
func (s *Store) GetDriver() Driver {
	return s.driver
}

// Close releases the driver and cache resources.
func (s *Store) Close() error {
	s.userCache.Close()
	return s.driver.Close()
}

// GetUser gets a user by id. Returns nil when the user does not exist.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	if cached, ok := s.userCache.Get(id); ok {
		return cached.(*User), nil
	}
	user, err := s.driver.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user != nil {
		s.userCache.Set(id, user)
	}
	return user, nil
}

// UpsertUser creates or replaces a user profile.
func (s *Store) UpsertUser(ctx context.Context, upsert *User) (*User, error) {
	user, err := s.driver.UpsertUser(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.userCache.Delete(upsert.ID)
	return user, nil
}

// UpdateUser merges the non-nil fields into an existing user profile.
func (s *Store) UpdateUser(ctx context.Context, update *UpdateUser) error {
	if err := s.driver.UpdateUser(ctx, update); err != nil {
		return err
	}
	s.userCache.Delete(update.ID)
	return nil
}

// ListUsersWithSchedule lists users that declared at least one weekly block.
func (s *Store) ListUsersWithSchedule(ctx context.Context) ([]*User, error) {
	return s.driver.ListUsersWithSchedule(ctx)
}

// CreateSession creates a new practice session.
func (s *Store) CreateSession(ctx context.Context, create *Session) (*Session, error) {
	return s.driver.CreateSession(ctx, create)
}

// GetSession gets a session by user and id. Returns nil when absent.
func (s *Store) GetSession(ctx context.Context, userID, id string) (*Session, error) {
	return s.driver.GetSession(ctx, userID, id)
}

// UpdateSession merges the non-nil fields into an existing session.
func (s *Store) UpdateSession(ctx context.Context, update *UpdateSession) error {
	return s.driver.UpdateSession(ctx, update)
}

// CreateDiagnostic creates a new diagnostic assessment record.
func (s *Store) CreateDiagnostic(ctx context.Context, create *Diagnostic) (*Diagnostic, error) {
	return s.driver.CreateDiagnostic(ctx, create)
}

// GetDiagnostic gets a diagnostic by user and id. Returns nil when absent.
func (s *Store) GetDiagnostic(ctx context.Context, userID, id string) (*Diagnostic, error) {
	return s.driver.GetDiagnostic(ctx, userID, id)
}

// UpdateDiagnostic merges the non-nil fields into an existing diagnostic.
func (s *Store) UpdateDiagnostic(ctx context.Context, update *UpdateDiagnostic) error {
	return s.driver.UpdateDiagnostic(ctx, update)
}

// GetHomework gets a homework item by user and id. Returns nil when absent.
func (s *Store) GetHomework(ctx context.Context, userID, id string) (*Homework, error) {
	return s.driver.GetHomework(ctx, userID, id)
}

// UpsertHomework creates or merges a homework item.
func (s *Store) UpsertHomework(ctx context.Context, upsert *Homework) (*Homework, error) {
	return s.driver.UpsertHomework(ctx, upsert)
}

// UpsertScheduleLog creates or merges a schedule completion log.
// The log id is derived from the scheduled occurrence, so repeated
// completions of the same occurrence converge on one document.
func (s *Store) UpsertScheduleLog(ctx context.Context, upsert *ScheduleLog) (*ScheduleLog, error) {
	return s.driver.UpsertScheduleLog(ctx, upsert)
}

// GetScheduleLog gets a schedule log by user and id. Returns nil when absent.
func (s *Store) GetScheduleLog(ctx context.Context, userID, id string) (*ScheduleLog, error) {
	return s.driver.GetScheduleLog(ctx, userID, id)
}

// CreateScheduleAlert appends an off-schedule alert. Alerts have no
// lifecycle beyond creation.
func (s *Store) CreateScheduleAlert(ctx context.Context, create *ScheduleAlert) (*ScheduleAlert, error) {
	return s.driver.CreateScheduleAlert(ctx, create)
}

// ListScheduleAlerts lists alerts for a user.
func (s *Store) ListScheduleAlerts(ctx context.Context, userID string) ([]*ScheduleAlert, error) {
	return s.driver.ListScheduleAlerts(ctx, userID)
}

// CreateDispatchIfAbsent records a notification dispatch marker.
// Returns false when a marker with the same id already exists; the
// existing marker is authoritative and the caller must skip redelivery.
func (s *Store) CreateDispatchIfAbsent(ctx context.Context, create *NotificationDispatch) (bool, error) {
	return s.driver.CreateDispatchIfAbsent(ctx, create)
}

// ListPushSubscriptions lists the registered push endpoints for a user.
func (s *Store) ListPushSubscriptions(ctx context.Context, userID string) ([]*PushSubscription, error) {
	return s.driver.ListPushSubscriptions(ctx, userID)
}

// CreatePushSubscription registers a push endpoint for a user.
func (s *Store) CreatePushSubscription(ctx context.Context, create *PushSubscription) (*PushSubscription, error) {
	return s.driver.CreatePushSubscription(ctx, create)
}

// DeletePushSubscription removes a stale push endpoint.
func (s *Store) DeletePushSubscription(ctx context.Context, userID, id string) error {
	return s.driver.DeletePushSubscription(ctx, userID, id)
}
