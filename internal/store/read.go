package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arkdex/arkdex/internal/queryspec"
	"github.com/arkdex/arkdex/internal/querysql"
	"github.com/arkdex/arkdex/internal/record"
)

// Query runs a structured filter/sort/cursor request against the index and
// returns at most one page of records.
//
// Zero matches is a normal outcome: the page is empty and the error nil.
// Malformed options (bad sort field, unparsable cursor or time bound)
// surface as QUERY_FAILURE; storage-engine errors as STORAGE_FAILURE.
func (s *Store) Query(ctx context.Context, opts queryspec.Options) (record.Page, error) {
	resolved, err := queryspec.Resolve(opts)
	if err != nil {
		return record.Page{}, record.NewFailure(record.CodeQueryFailure, "invalid query options", err)
	}

	stmt, params, err := querysql.Compile(resolved)
	if err != nil {
		return record.Page{}, record.NewFailure(record.CodeQueryFailure, "compile query", err)
	}

	rows, err := s.db.QueryContext(ctx, stmt, params...)
	if err != nil {
		return record.Page{}, record.NewFailure(record.CodeStorageFailure, "query artifacts", err)
	}
	defer rows.Close()

	var fetched []record.ArtifactRecord
	for rows.Next() {
		rec, err := scanArtifact(rows)
		if err != nil {
			return record.Page{}, record.NewFailure(record.CodeStorageFailure, "scan artifact", err)
		}
		fetched = append(fetched, rec)
	}
	if err := rows.Err(); err != nil {
		return record.Page{}, record.NewFailure(record.CodeStorageFailure, "iterate artifacts", err)
	}

	page, cursor := querysql.ResolvePage(fetched, resolved)

	// Return empty slice instead of nil
	if page == nil {
		page = []record.ArtifactRecord{}
	}

	return record.Page{Records: page, NextCursor: cursor}, nil
}

// GetByID retrieves a single artifact record by its ledger transaction
// identity. Returns nil (not an error) when the record is absent.
func (s *Store) GetByID(ctx context.Context, id string) (*record.ArtifactRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+querysql.Columns+`
		FROM artifacts
		WHERE id = ?
	`, id)

	rec, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, record.NewFailure(record.CodeStorageFailure, "get artifact", err)
	}
	return &rec, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

// scanArtifact reads one artifact row in querysql.Columns order.
func scanArtifact(sc scanner) (record.ArtifactRecord, error) {
	var rec record.ArtifactRecord
	var extraJSON string
	var receipt sql.NullString

	err := sc.Scan(
		&rec.ID,
		&rec.Timestamp,
		&rec.Tags.App,
		&rec.Tags.ContentType,
		&rec.Tags.DatasetName,
		&rec.Tags.Split,
		&rec.Tags.Version,
		&rec.Tags.Owner,
		&rec.Tags.CreatedAt,
		&extraJSON,
		&receipt,
		&rec.CreatedAt,
	)
	if err != nil {
		return record.ArtifactRecord{}, err
	}

	rec.Tags.Extra, err = unmarshalExtra(extraJSON)
	if err != nil {
		return record.ArtifactRecord{}, fmt.Errorf("artifact %s: %w", rec.ID, err)
	}
	if receipt.Valid {
		rec.Receipt = receipt.String
	}

	return rec, nil
}
