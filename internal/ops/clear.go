package ops

import (
	"context"

	"github.com/hpungsan/tratativa/internal/db"
)

// Clear wipes the session record and returns the empty snapshot.
// Templates are not touched.
func Clear(ctx context.Context, env Env) (*SnapshotOutput, error) {
	if err := db.DeleteRecord(ctx, env.DB, FormDataKey); err != nil {
		return nil, err
	}
	return snapshotOf(ctx, env, emptyFormData())
}
