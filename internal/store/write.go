package store

import (
	"context"

	"github.com/arkdex/arkdex/internal/record"
)

// Upsert inserts an artifact record, replacing any prior row with the same
// id. Replacement (rather than rejection) makes the indexing step safe to
// retry after a successful remote write.
//
// The store does not validate the tag bag; that is the coordinator's job.
// A record with empty tag fields is still stored as opaque data.
func (s *Store) Upsert(ctx context.Context, rec record.ArtifactRecord) error {
	extraJSON, err := marshalExtra(rec.Tags.Extra)
	if err != nil {
		return record.NewFailure(record.CodeStorageFailure, "upsert artifact", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO artifacts
		(id, timestamp, app, content_type, dataset_name, split, version, owner, tag_created_at, extra, receipt, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			timestamp      = excluded.timestamp,
			app            = excluded.app,
			content_type   = excluded.content_type,
			dataset_name   = excluded.dataset_name,
			split          = excluded.split,
			version        = excluded.version,
			owner          = excluded.owner,
			tag_created_at = excluded.tag_created_at,
			extra          = excluded.extra,
			receipt        = excluded.receipt,
			created_at     = excluded.created_at
	`,
		rec.ID,
		rec.Timestamp,
		rec.Tags.App,
		rec.Tags.ContentType,
		rec.Tags.DatasetName,
		rec.Tags.Split,
		rec.Tags.Version,
		rec.Tags.Owner,
		rec.Tags.CreatedAt,
		extraJSON,
		nullableString(rec.Receipt),
		rec.CreatedAt,
	)
	if err != nil {
		return record.NewFailure(record.CodeStorageFailure, "upsert artifact", err)
	}

	return nil
}

// nullableString maps "" to NULL for optional columns.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
