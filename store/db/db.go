package db

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hablaai/habla/internal/profile"
	"github.com/hablaai/habla/store"
	"github.com/hablaai/habla/store/db/fsstore"
	"github.com/hablaai/habla/store/db/memstore"
	"github.com/hablaai/habla/store/db/sqlitestore"
)

// NewDriver creates the storage driver selected by the profile.
//
// firestore is the production driver. sqlite serves local single-node
// deployments, memory serves demos and tests.
func NewDriver(ctx context.Context, p *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch p.Driver {
	case "memory":
		driver = memstore.NewDriver()
	case "sqlite":
		driver, err = sqlitestore.NewDriver(p.DSN)
	case "firestore":
		driver, err = fsstore.NewDriver(ctx, p.FirestoreProject)
	default:
		return nil, errors.Errorf("unknown storage driver: %s", p.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create storage driver")
	}
	return driver, nil
}
