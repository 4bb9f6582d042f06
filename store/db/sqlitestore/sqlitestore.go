// Package sqlitestore is a single-file store driver for local deployments.
//
// Documents are stored as JSON rows keyed by their collection path, the
// same paths the production Firestore driver uses, so data model changes
// stay in one place (the store package).
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/hablaai/habla/store"
)

// Driver stores documents in a sqlite database.
type Driver struct {
	db *sql.DB
}

// NewDriver opens (and if needed initializes) the database at dsn.
func NewDriver(dsn string) (*Driver, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite db %s", dsn)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS document (
			path TEXT NOT NULL PRIMARY KEY,
			data TEXT NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to initialize schema")
	}

	return &Driver{db: db}, nil
}

// Close implements store.Driver.
func (d *Driver) Close() error {
	return d.db.Close()
}

func userPath(id string) string {
	return "users/" + id
}

func subPath(userID, collection, id string) string {
	return fmt.Sprintf("users/%s/%s/%s", userID, collection, id)
}

func (d *Driver) getDocument(ctx context.Context, path string, out any) (bool, error) {
	var data string
	err := d.db.QueryRowContext(ctx, "SELECT data FROM document WHERE path = ?", path).Scan(&data)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "failed to get document %s", path)
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return false, errors.Wrapf(err, "failed to decode document %s", path)
	}
	return true, nil
}

func (d *Driver) putDocument(ctx context.Context, path string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrapf(err, "failed to encode document %s", path)
	}
	_, err = d.db.ExecContext(ctx,
		"INSERT INTO document (path, data) VALUES (?, ?) ON CONFLICT (path) DO UPDATE SET data = excluded.data",
		path, string(data))
	return errors.Wrapf(err, "failed to put document %s", path)
}

// createDocumentIfAbsent inserts the document and reports whether the
// insert happened. Uniqueness rides on the primary key, so the check and
// the write are one atomic statement.
func (d *Driver) createDocumentIfAbsent(ctx context.Context, path string, doc any) (bool, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return false, errors.Wrapf(err, "failed to encode document %s", path)
	}
	result, err := d.db.ExecContext(ctx,
		"INSERT INTO document (path, data) VALUES (?, ?) ON CONFLICT (path) DO NOTHING",
		path, string(data))
	if err != nil {
		return false, errors.Wrapf(err, "failed to create document %s", path)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (d *Driver) listDocuments(ctx context.Context, prefix string, each func(data string) error) error {
	// Match direct children only: the path continues past the prefix
	// with exactly one more segment.
	rows, err := d.db.QueryContext(ctx,
		"SELECT data FROM document WHERE path LIKE ? AND path NOT LIKE ? ORDER BY path",
		prefix+"%", prefix+"%/%")
	if err != nil {
		return errors.Wrapf(err, "failed to list documents under %s", prefix)
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return err
		}
		if err := each(data); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (d *Driver) deleteDocument(ctx context.Context, path string) error {
	_, err := d.db.ExecContext(ctx, "DELETE FROM document WHERE path = ?", path)
	return errors.Wrapf(err, "failed to delete document %s", path)
}

// GetUser implements store.Driver.
func (d *Driver) GetUser(ctx context.Context, id string) (*store.User, error) {
	var user store.User
	found, err := d.getDocument(ctx, userPath(id), &user)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// UpsertUser implements store.Driver.
func (d *Driver) UpsertUser(ctx context.Context, upsert *store.User) (*store.User, error) {
	if err := d.putDocument(ctx, userPath(upsert.ID), upsert); err != nil {
		return nil, err
	}
	return upsert, nil
}

// UpdateUser implements store.Driver.
func (d *Driver) UpdateUser(ctx context.Context, update *store.UpdateUser) error {
	user, err := d.GetUser(ctx, update.ID)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.Errorf("user not found: %s", update.ID)
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
	return d.putDocument(ctx, userPath(update.ID), user)
}

// ListUsersWithSchedule implements store.Driver.
func (d *Driver) ListUsersWithSchedule(ctx context.Context) ([]*store.User, error) {
	var list []*store.User
	err := d.listDocuments(ctx, "users/", func(data string) error {
		var user store.User
		if err := json.Unmarshal([]byte(data), &user); err != nil {
			return err
		}
		if len(user.WeeklySchedule) > 0 {
			list = append(list, &user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// CreateSession implements store.Driver.
func (d *Driver) CreateSession(ctx context.Context, create *store.Session) (*store.Session, error) {
	if err := d.putDocument(ctx, subPath(create.UserID, "sessions", create.ID), create); err != nil {
		return nil, err
	}
	return create, nil
}

// GetSession implements store.Driver.
func (d *Driver) GetSession(ctx context.Context, userID, id string) (*store.Session, error) {
	var session store.Session
	found, err := d.getDocument(ctx, subPath(userID, "sessions", id), &session)
	if err != nil || !found {
		return nil, err
	}
	return &session, nil
}

// UpdateSession implements store.Driver.
func (d *Driver) UpdateSession(ctx context.Context, update *store.UpdateSession) error {
	session, err := d.GetSession(ctx, update.UserID, update.ID)
	if err != nil {
		return err
	}
	if session == nil {
		return errors.Errorf("session not found: %s", update.ID)
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
	return d.putDocument(ctx, subPath(update.UserID, "sessions", update.ID), session)
}

// CreateDiagnostic implements store.Driver.
func (d *Driver) CreateDiagnostic(ctx context.Context, create *store.Diagnostic) (*store.Diagnostic, error) {
	if err := d.putDocument(ctx, subPath(create.UserID, "diagnostics", create.ID), create); err != nil {
		return nil, err
	}
	return create, nil
}

// GetDiagnostic implements store.Driver.
func (d *Driver) GetDiagnostic(ctx context.Context, userID, id string) (*store.Diagnostic, error) {
	var diag store.Diagnostic
	found, err := d.getDocument(ctx, subPath(userID, "diagnostics", id), &diag)
	if err != nil || !found {
		return nil, err
	}
	return &diag, nil
}

// UpdateDiagnostic implements store.Driver.
func (d *Driver) UpdateDiagnostic(ctx context.Context, update *store.UpdateDiagnostic) error {
	diag, err := d.GetDiagnostic(ctx, update.UserID, update.ID)
	if err != nil {
		return err
	}
	if diag == nil {
		return errors.Errorf("diagnostic not found: %s", update.ID)
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
	return d.putDocument(ctx, subPath(update.UserID, "diagnostics", update.ID), diag)
}

// GetHomework implements store.Driver.
func (d *Driver) GetHomework(ctx context.Context, userID, id string) (*store.Homework, error) {
	var hw store.Homework
	found, err := d.getDocument(ctx, subPath(userID, "homework", id), &hw)
	if err != nil || !found {
		return nil, err
	}
	return &hw, nil
}

// UpsertHomework implements store.Driver.
func (d *Driver) UpsertHomework(ctx context.Context, upsert *store.Homework) (*store.Homework, error) {
	existing, err := d.GetHomework(ctx, upsert.UserID, upsert.ID)
	if err != nil {
		return nil, err
	}
	hw := *upsert
	if existing != nil {
		if hw.CreatedTs == 0 {
			hw.CreatedTs = existing.CreatedTs
		}
		if hw.Topic == "" {
			hw.Topic = existing.Topic
		}
	}
	if err := d.putDocument(ctx, subPath(hw.UserID, "homework", hw.ID), &hw); err != nil {
		return nil, err
	}
	return &hw, nil
}

// UpsertScheduleLog implements store.Driver.
func (d *Driver) UpsertScheduleLog(ctx context.Context, upsert *store.ScheduleLog) (*store.ScheduleLog, error) {
	if err := d.putDocument(ctx, subPath(upsert.UserID, "scheduleLogs", upsert.ID), upsert); err != nil {
		return nil, err
	}
	return upsert, nil
}

// GetScheduleLog implements store.Driver.
func (d *Driver) GetScheduleLog(ctx context.Context, userID, id string) (*store.ScheduleLog, error) {
	var log store.ScheduleLog
	found, err := d.getDocument(ctx, subPath(userID, "scheduleLogs", id), &log)
	if err != nil || !found {
		return nil, err
	}
	return &log, nil
}

// CreateScheduleAlert implements store.Driver.
func (d *Driver) CreateScheduleAlert(ctx context.Context, create *store.ScheduleAlert) (*store.ScheduleAlert, error) {
	alert := *create
	if alert.ID == "" {
		alert.ID = shortuuid.New()
	}
	if err := d.putDocument(ctx, subPath(alert.UserID, "scheduleAlerts", alert.ID), &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

// ListScheduleAlerts implements store.Driver.
func (d *Driver) ListScheduleAlerts(ctx context.Context, userID string) ([]*store.ScheduleAlert, error) {
	var list []*store.ScheduleAlert
	err := d.listDocuments(ctx, fmt.Sprintf("users/%s/scheduleAlerts/", userID), func(data string) error {
		var alert store.ScheduleAlert
		if err := json.Unmarshal([]byte(data), &alert); err != nil {
			return err
		}
		list = append(list, &alert)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// CreateDispatchIfAbsent implements store.Driver.
func (d *Driver) CreateDispatchIfAbsent(ctx context.Context, create *store.NotificationDispatch) (bool, error) {
	return d.createDocumentIfAbsent(ctx, subPath(create.UserID, "notificationDispatches", create.ID), create)
}

// ListPushSubscriptions implements store.Driver.
func (d *Driver) ListPushSubscriptions(ctx context.Context, userID string) ([]*store.PushSubscription, error) {
	var list []*store.PushSubscription
	err := d.listDocuments(ctx, fmt.Sprintf("users/%s/pushSubscriptions/", userID), func(data string) error {
		var sub store.PushSubscription
		if err := json.Unmarshal([]byte(data), &sub); err != nil {
			return err
		}
		list = append(list, &sub)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// CreatePushSubscription implements store.Driver.
func (d *Driver) CreatePushSubscription(ctx context.Context, create *store.PushSubscription) (*store.PushSubscription, error) {
	sub := *create
	if sub.ID == "" {
		sub.ID = shortuuid.New()
	}
	if err := d.putDocument(ctx, subPath(sub.UserID, "pushSubscriptions", sub.ID), &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// DeletePushSubscription implements store.Driver.
func (d *Driver) DeletePushSubscription(ctx context.Context, userID, id string) error {
	return d.deleteDocument(ctx, subPath(userID, "pushSubscriptions", id))
}
