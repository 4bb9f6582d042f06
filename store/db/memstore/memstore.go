// Package memstore is an in-memory store driver used by tests and dev mode.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lithammer/shortuuid/v4"

	"github.com/hablaai/habla/store"
)

// Driver keeps every document in mutex-guarded maps. Composite keys are
// "{userID}/{docID}" for user-owned collections.
type Driver struct {
	mu sync.RWMutex

	users         map[string]*store.User
	sessions      map[string]*store.Session
	diagnostics   map[string]*store.Diagnostic
	homework      map[string]*store.Homework
	scheduleLogs  map[string]*store.ScheduleLog
	alerts        map[string]*store.ScheduleAlert
	dispatches    map[string]*store.NotificationDispatch
	subscriptions map[string]*store.PushSubscription
}

// NewDriver creates an empty in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		users:         make(map[string]*store.User),
		sessions:      make(map[string]*store.Session),
		diagnostics:   make(map[string]*store.Diagnostic),
		homework:      make(map[string]*store.Homework),
		scheduleLogs:  make(map[string]*store.ScheduleLog),
		alerts:        make(map[string]*store.ScheduleAlert),
		dispatches:    make(map[string]*store.NotificationDispatch),
		subscriptions: make(map[string]*store.PushSubscription),
	}
}

// Close implements store.Driver.
func (*Driver) Close() error {
	return nil
}

func key(userID, id string) string {
	return userID + "/" + id
}

// GetUser implements store.Driver.
func (d *Driver) GetUser(_ context.Context, id string) (*store.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.users[id], nil
}

// UpsertUser implements store.Driver.
func (d *Driver) UpsertUser(_ context.Context, upsert *store.User) (*store.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u := *upsert
	d.users[u.ID] = &u
	return &u, nil
}

// UpdateUser implements store.Driver.
func (d *Driver) UpdateUser(_ context.Context, update *store.UpdateUser) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	user, ok := d.users[update.ID]
	if !ok {
		return fmt.Errorf("user not found: %s", update.ID)
	}
	if update.UpdatedTs != nil {
		user.UpdatedTs = *update.UpdatedTs
	}
	if update.DisplayName != nil {
		user.DisplayName = *update.DisplayName
	}
	if update.Level != nil {
		user.Level = *update.Level
	}
	if update.Timezone != nil {
		user.Timezone = *update.Timezone
	}
	if update.WeeklySchedule != nil {
		user.WeeklySchedule = *update.WeeklySchedule
	}
	if update.PlacementTs != nil {
		user.PlacementTs = update.PlacementTs
	}
	return nil
}

// ListUsersWithSchedule implements store.Driver.
func (d *Driver) ListUsersWithSchedule(_ context.Context) ([]*store.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var list []*store.User
	for _, u := range d.users {
		if len(u.WeeklySchedule) > 0 {
			list = append(list, u)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// CreateSession implements store.Driver.
func (d *Driver) CreateSession(_ context.Context, create *store.Session) (*store.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := *create
	d.sessions[key(s.UserID, s.ID)] = &s
	return &s, nil
}

// GetSession implements store.Driver.
func (d *Driver) GetSession(_ context.Context, userID, id string) (*store.Session, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sessions[key(userID, id)], nil
}

// UpdateSession implements store.Driver.
func (d *Driver) UpdateSession(_ context.Context, update *store.UpdateSession) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	session, ok := d.sessions[key(update.UserID, update.ID)]
	if !ok {
		return fmt.Errorf("session not found: %s", update.ID)
	}
	if update.Status != nil {
		session.Status = *update.Status
	}
	if update.CompletedTs != nil {
		session.CompletedTs = update.CompletedTs
	}
	if update.Transcript != nil {
		session.Transcript = *update.Transcript
	}
	if update.Evaluation != nil {
		session.Evaluation = update.Evaluation
	}
	return nil
}

// CreateDiagnostic implements store.Driver.
func (d *Driver) CreateDiagnostic(_ context.Context, create *store.Diagnostic) (*store.Diagnostic, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	diag := *create
	d.diagnostics[key(diag.UserID, diag.ID)] = &diag
	return &diag, nil
}

// GetDiagnostic implements store.Driver.
func (d *Driver) GetDiagnostic(_ context.Context, userID, id string) (*store.Diagnostic, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.diagnostics[key(userID, id)], nil
}

// UpdateDiagnostic implements store.Driver.
func (d *Driver) UpdateDiagnostic(_ context.Context, update *store.UpdateDiagnostic) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	diag, ok := d.diagnostics[key(update.UserID, update.ID)]
	if !ok {
		return fmt.Errorf("diagnostic not found: %s", update.ID)
	}
	if update.Status != nil {
		diag.Status = *update.Status
	}
	if update.CompletedTs != nil {
		diag.CompletedTs = update.CompletedTs
	}
	if update.Result != nil {
		diag.Result = update.Result
	}
	return nil
}

// GetHomework implements store.Driver.
func (d *Driver) GetHomework(_ context.Context, userID, id string) (*store.Homework, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.homework[key(userID, id)], nil
}

// UpsertHomework implements store.Driver.
func (d *Driver) UpsertHomework(_ context.Context, upsert *store.Homework) (*store.Homework, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	hw := *upsert
	if existing, ok := d.homework[key(hw.UserID, hw.ID)]; ok {
		if hw.CreatedTs == 0 {
			hw.CreatedTs = existing.CreatedTs
		}
		if hw.Topic == "" {
			hw.Topic = existing.Topic
		}
	}
	d.homework[key(hw.UserID, hw.ID)] = &hw
	return &hw, nil
}

// UpsertScheduleLog implements store.Driver.
func (d *Driver) UpsertScheduleLog(_ context.Context, upsert *store.ScheduleLog) (*store.ScheduleLog, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	log := *upsert
	d.scheduleLogs[key(log.UserID, log.ID)] = &log
	return &log, nil
}

// GetScheduleLog implements store.Driver.
func (d *Driver) GetScheduleLog(_ context.Context, userID, id string) (*store.ScheduleLog, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.scheduleLogs[key(userID, id)], nil
}

// CreateScheduleAlert implements store.Driver.
func (d *Driver) CreateScheduleAlert(_ context.Context, create *store.ScheduleAlert) (*store.ScheduleAlert, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	alert := *create
	if alert.ID == "" {
		alert.ID = shortuuid.New()
	}
	d.alerts[key(alert.UserID, alert.ID)] = &alert
	return &alert, nil
}

// ListScheduleAlerts implements store.Driver.
func (d *Driver) ListScheduleAlerts(_ context.Context, userID string) ([]*store.ScheduleAlert, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var list []*store.ScheduleAlert
	for _, a := range d.alerts {
		if a.UserID == userID {
			list = append(list, a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StartedTs < list[j].StartedTs })
	return list, nil
}

// CreateDispatchIfAbsent implements store.Driver. The existence check and
// the write happen under one lock, so duplicate in-process invocations
// cannot both claim the marker.
func (d *Driver) CreateDispatchIfAbsent(_ context.Context, create *store.NotificationDispatch) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	k := key(create.UserID, create.ID)
	if _, exists := d.dispatches[k]; exists {
		return false, nil
	}
	dispatch := *create
	d.dispatches[k] = &dispatch
	return true, nil
}

// ListPushSubscriptions implements store.Driver.
func (d *Driver) ListPushSubscriptions(_ context.Context, userID string) ([]*store.PushSubscription, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var list []*store.PushSubscription
	for _, s := range d.subscriptions {
		if s.UserID == userID {
			list = append(list, s)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// CreatePushSubscription implements store.Driver.
func (d *Driver) CreatePushSubscription(_ context.Context, create *store.PushSubscription) (*store.PushSubscription, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sub := *create
	if sub.ID == "" {
		sub.ID = shortuuid.New()
	}
	d.subscriptions[key(sub.UserID, sub.ID)] = &sub
	return &sub, nil
}

// DeletePushSubscription implements store.Driver.
func (d *Driver) DeletePushSubscription(_ context.Context, userID, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.subscriptions, key(userID, id))
	return nil
}
