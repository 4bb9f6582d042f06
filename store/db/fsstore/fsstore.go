// Package fsstore is the production store driver backed by Cloud Firestore,
// the platform the tutoring app runs on.
//
// Document ids and collection names are wire compatible with the deployed
// app: scheduleLogs are keyed "{YYYY-MM-DD}_{HH:MM}" and dispatch markers
// "{YYYY-MM-DD}_{HH:MM}_{pre|now}".
package fsstore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hablaai/habla/store"
)

// Driver stores documents in Cloud Firestore.
type Driver struct {
	client *firestore.Client
}

// NewDriver connects to the Firestore database of the given project.
func NewDriver(ctx context.Context, projectID string) (*Driver, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create firestore client")
	}
	return &Driver{client: client}, nil
}

// Close implements store.Driver.
func (d *Driver) Close() error {
	return d.client.Close()
}

func (d *Driver) userDoc(id string) *firestore.DocumentRef {
	return d.client.Collection("users").Doc(id)
}

func (d *Driver) subDoc(userID, collection, id string) *firestore.DocumentRef {
	return d.userDoc(userID).Collection(collection).Doc(id)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// GetUser implements store.Driver.
func (d *Driver) GetUser(ctx context.Context, id string) (*store.User, error) {
	snap, err := d.userDoc(id).Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get user %s", id)
	}
	var user store.User
	if err := snap.DataTo(&user); err != nil {
		return nil, errors.Wrapf(err, "failed to decode user %s", id)
	}
	user.ID = id
	return &user, nil
}

// UpsertUser implements store.Driver.
func (d *Driver) UpsertUser(ctx context.Context, upsert *store.User) (*store.User, error) {
	if _, err := d.userDoc(upsert.ID).Set(ctx, upsert); err != nil {
		return nil, errors.Wrapf(err, "failed to upsert user %s", upsert.ID)
	}
	return upsert, nil
}

// UpdateUser implements store.Driver. The update fails when the user is absent.
func (d *Driver) UpdateUser(ctx context.Context, update *store.UpdateUser) error {
	var updates []firestore.Update
	if update.UpdatedTs != nil {
		updates = append(updates, firestore.Update{Path: "UpdatedTs", Value: *update.UpdatedTs})
	}
	if update.DisplayName != nil {
		updates = append(updates, firestore.Update{Path: "DisplayName", Value: *update.DisplayName})
	}
	if update.Level != nil {
		updates = append(updates, firestore.Update{Path: "Level", Value: *update.Level})
	}
	if update.Timezone != nil {
		updates = append(updates, firestore.Update{Path: "Timezone", Value: *update.Timezone})
	}
	if update.WeeklySchedule != nil {
		updates = append(updates, firestore.Update{Path: "WeeklySchedule", Value: *update.WeeklySchedule})
	}
	if update.PlacementTs != nil {
		updates = append(updates, firestore.Update{Path: "PlacementTs", Value: *update.PlacementTs})
	}
	if len(updates) == 0 {
		return nil
	}
	_, err := d.userDoc(update.ID).Update(ctx, updates)
	return errors.Wrapf(err, "failed to update user %s", update.ID)
}

// ListUsersWithSchedule implements store.Driver.
func (d *Driver) ListUsersWithSchedule(ctx context.Context) ([]*store.User, error) {
	iter := d.client.Collection("users").Documents(ctx)
	defer iter.Stop()

	var list []*store.User
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to iterate users")
		}
		var user store.User
		if err := snap.DataTo(&user); err != nil {
			return nil, errors.Wrapf(err, "failed to decode user %s", snap.Ref.ID)
		}
		user.ID = snap.Ref.ID
		if len(user.WeeklySchedule) > 0 {
			list = append(list, &user)
		}
	}
	return list, nil
}

// CreateSession implements store.Driver.
func (d *Driver) CreateSession(ctx context.Context, create *store.Session) (*store.Session, error) {
	if _, err := d.subDoc(create.UserID, "sessions", create.ID).Set(ctx, create); err != nil {
		return nil, errors.Wrapf(err, "failed to create session %s", create.ID)
	}
	return create, nil
}

// GetSession implements store.Driver.
func (d *Driver) GetSession(ctx context.Context, userID, id string) (*store.Session, error) {
	snap, err := d.subDoc(userID, "sessions", id).Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get session %s", id)
	}
	var session store.Session
	if err := snap.DataTo(&session); err != nil {
		return nil, errors.Wrapf(err, "failed to decode session %s", id)
	}
	session.ID = id
	return &session, nil
}

// UpdateSession implements store.Driver.
func (d *Driver) UpdateSession(ctx context.Context, update *store.UpdateSession) error {
	var updates []firestore.Update
	if update.Status != nil {
		updates = append(updates, firestore.Update{Path: "Status", Value: *update.Status})
	}
	if update.CompletedTs != nil {
		updates = append(updates, firestore.Update{Path: "CompletedTs", Value: *update.CompletedTs})
	}
	if update.Transcript != nil {
		updates = append(updates, firestore.Update{Path: "Transcript", Value: *update.Transcript})
	}
	if update.Evaluation != nil {
		updates = append(updates, firestore.Update{Path: "Evaluation", Value: update.Evaluation})
	}
	if len(updates) == 0 {
		return nil
	}
	_, err := d.subDoc(update.UserID, "sessions", update.ID).Update(ctx, updates)
	return errors.Wrapf(err, "failed to update session %s", update.ID)
}

// CreateDiagnostic implements store.Driver.
func (d *Driver) CreateDiagnostic(ctx context.Context, create *store.Diagnostic) (*store.Diagnostic, error) {
	if _, err := d.subDoc(create.UserID, "diagnostics", create.ID).Set(ctx, create); err != nil {
		return nil, errors.Wrapf(err, "failed to create diagnostic %s", create.ID)
	}
	return create, nil
}

// GetDiagnostic implements store.Driver.
func (d *Driver) GetDiagnostic(ctx context.Context, userID, id string) (*store.Diagnostic, error) {
	snap, err := d.subDoc(userID, "diagnostics", id).Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get diagnostic %s", id)
	}
	var diag store.Diagnostic
	if err := snap.DataTo(&diag); err != nil {
		return nil, errors.Wrapf(err, "failed to decode diagnostic %s", id)
	}
	diag.ID = id
	return &diag, nil
}

// UpdateDiagnostic implements store.Driver.
func (d *Driver) UpdateDiagnostic(ctx context.Context, update *store.UpdateDiagnostic) error {
	var updates []firestore.Update
	if update.Status != nil {
		updates = append(updates, firestore.Update{Path: "Status", Value: *update.Status})
	}
	if update.CompletedTs != nil {
		updates = append(updates, firestore.Update{Path: "CompletedTs", Value: *update.CompletedTs})
	}
	if update.Result != nil {
		updates = append(updates, firestore.Update{Path: "Result", Value: update.Result})
	}
	if len(updates) == 0 {
		return nil
	}
	_, err := d.subDoc(update.UserID, "diagnostics", update.ID).Update(ctx, updates)
	return errors.Wrapf(err, "failed to update diagnostic %s", update.ID)
}

// GetHomework implements store.Driver.
func (d *Driver) GetHomework(ctx context.Context, userID, id string) (*store.Homework, error) {
	snap, err := d.subDoc(userID, "homework", id).Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get homework %s", id)
	}
	var hw store.Homework
	if err := snap.DataTo(&hw); err != nil {
		return nil, errors.Wrapf(err, "failed to decode homework %s", id)
	}
	hw.ID = id
	return &hw, nil
}

// UpsertHomework implements store.Driver.
func (d *Driver) UpsertHomework(ctx context.Context, upsert *store.Homework) (*store.Homework, error) {
	if _, err := d.subDoc(upsert.UserID, "homework", upsert.ID).Set(ctx, upsert, firestore.MergeAll); err != nil {
		return nil, errors.Wrapf(err, "failed to upsert homework %s", upsert.ID)
	}
	return upsert, nil
}

// UpsertScheduleLog implements store.Driver. Merge-set keeps repeated
// completions of the same occurrence idempotent.
func (d *Driver) UpsertScheduleLog(ctx context.Context, upsert *store.ScheduleLog) (*store.ScheduleLog, error) {
	if _, err := d.subDoc(upsert.UserID, "scheduleLogs", upsert.ID).Set(ctx, upsert, firestore.MergeAll); err != nil {
		return nil, errors.Wrapf(err, "failed to upsert schedule log %s", upsert.ID)
	}
	return upsert, nil
}

// GetScheduleLog implements store.Driver.
func (d *Driver) GetScheduleLog(ctx context.Context, userID, id string) (*store.ScheduleLog, error) {
	snap, err := d.subDoc(userID, "scheduleLogs", id).Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get schedule log %s", id)
	}
	var log store.ScheduleLog
	if err := snap.DataTo(&log); err != nil {
		return nil, errors.Wrapf(err, "failed to decode schedule log %s", id)
	}
	log.ID = id
	return &log, nil
}

// CreateScheduleAlert implements store.Driver.
func (d *Driver) CreateScheduleAlert(ctx context.Context, create *store.ScheduleAlert) (*store.ScheduleAlert, error) {
	alert := *create
	collection := d.userDoc(alert.UserID).Collection("scheduleAlerts")
	doc := collection.NewDoc()
	if alert.ID != "" {
		doc = collection.Doc(alert.ID)
	}
	alert.ID = doc.ID
	if _, err := doc.Set(ctx, &alert); err != nil {
		return nil, errors.Wrap(err, "failed to create schedule alert")
	}
	return &alert, nil
}

// ListScheduleAlerts implements store.Driver.
func (d *Driver) ListScheduleAlerts(ctx context.Context, userID string) ([]*store.ScheduleAlert, error) {
	iter := d.userDoc(userID).Collection("scheduleAlerts").Documents(ctx)
	defer iter.Stop()

	var list []*store.ScheduleAlert
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to iterate schedule alerts")
		}
		var alert store.ScheduleAlert
		if err := snap.DataTo(&alert); err != nil {
			return nil, errors.Wrapf(err, "failed to decode schedule alert %s", snap.Ref.ID)
		}
		alert.ID = snap.Ref.ID
		list = append(list, &alert)
	}
	return list, nil
}

// CreateDispatchIfAbsent implements store.Driver. Firestore Create fails
// with AlreadyExists when the marker is present, which makes the
// check-then-create atomic on the backend.
func (d *Driver) CreateDispatchIfAbsent(ctx context.Context, create *store.NotificationDispatch) (bool, error) {
	_, err := d.subDoc(create.UserID, "notificationDispatches", create.ID).Create(ctx, create)
	if status.Code(err) == codes.AlreadyExists {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "failed to create dispatch marker %s", create.ID)
	}
	return true, nil
}

// ListPushSubscriptions implements store.Driver.
func (d *Driver) ListPushSubscriptions(ctx context.Context, userID string) ([]*store.PushSubscription, error) {
	iter := d.userDoc(userID).Collection("pushSubscriptions").Documents(ctx)
	defer iter.Stop()

	var list []*store.PushSubscription
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to iterate push subscriptions")
		}
		var sub store.PushSubscription
		if err := snap.DataTo(&sub); err != nil {
			return nil, errors.Wrapf(err, "failed to decode push subscription %s", snap.Ref.ID)
		}
		sub.ID = snap.Ref.ID
		list = append(list, &sub)
	}
	return list, nil
}

// CreatePushSubscription implements store.Driver.
func (d *Driver) CreatePushSubscription(ctx context.Context, create *store.PushSubscription) (*store.PushSubscription, error) {
	sub := *create
	collection := d.userDoc(sub.UserID).Collection("pushSubscriptions")
	doc := collection.NewDoc()
	if sub.ID != "" {
		doc = collection.Doc(sub.ID)
	}
	sub.ID = doc.ID
	if _, err := doc.Set(ctx, &sub); err != nil {
		return nil, errors.Wrap(err, "failed to create push subscription")
	}
	return &sub, nil
}

// DeletePushSubscription implements store.Driver.
func (d *Driver) DeletePushSubscription(ctx context.Context, userID, id string) error {
	_, err := d.subDoc(userID, "pushSubscriptions", id).Delete(ctx)
	return errors.Wrapf(err, "failed to delete push subscription %s", id)
}
