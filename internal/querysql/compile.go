// Package querysql compiles a resolved query into parameterized SQL for the
// SQLite-backed record store, and resolves the returned rows into a page
// with its continuation cursor.
package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arkdex/arkdex/internal/queryspec"
	"github.com/arkdex/arkdex/internal/record"
)

// Columns is the select list for artifact rows, in scan order.
const Columns = "id, timestamp, app, content_type, dataset_name, split, version, owner, tag_created_at, extra, receipt, created_at"

// sortColumns maps queryspec sort fields to table columns.
var sortColumns = map[string]string{
	queryspec.SortByTimestamp: "timestamp",
	queryspec.SortByCreatedAt: "created_at",
}

// Compile converts a resolved query to parameterized SQL.
//
// All values are parameterized, never interpolated. The statement requests
// limit+1 rows so the executor can detect whether a further page exists;
// ResolvePage drops the probe row and emits the cursor.
func Compile(r queryspec.Resolved) (string, []any, error) {
	var conds []string
	var params []any

	equality := []struct {
		column string
		value  string
	}{
		{"dataset_name", r.DatasetName},
		{"split", r.Split},
		{"version", r.Version},
		{"content_type", r.ContentType},
		{"app", r.App},
		{"owner", r.Owner},
	}
	for _, eq := range equality {
		if eq.value == "" {
			continue
		}
		conds = append(conds, eq.column+" = ?")
		params = append(params, eq.value)
	}

	if r.HasStart {
		conds = append(conds, "timestamp >= ?")
		params = append(params, r.StartMillis)
	}
	if r.HasEnd {
		conds = append(conds, "timestamp <= ?")
		params = append(params, r.EndMillis)
	}

	if r.Cursor != "" {
		cursor, err := strconv.ParseInt(r.Cursor, 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid cursor %q: %w", r.Cursor, err)
		}
		// The cursor is the timestamp of the previous page's last row;
		// the next page starts strictly past it in the sort direction.
		if r.SortOrder == queryspec.OrderDesc {
			conds = append(conds, "timestamp < ?")
		} else {
			conds = append(conds, "timestamp > ?")
		}
		params = append(params, cursor)
	}

	sortCol, ok := sortColumns[r.SortBy]
	if !ok {
		return "", nil, fmt.Errorf("unsupported sort field %q", r.SortBy)
	}
	direction := "DESC"
	if r.SortOrder == queryspec.OrderAsc {
		direction = "ASC"
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(Columns)
	b.WriteString(" FROM artifacts")
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(sortCol)
	b.WriteString(" ")
	b.WriteString(direction)
	if !r.Unbounded() {
		b.WriteString(" LIMIT ?")
		params = append(params, r.Limit+1)
	}

	return b.String(), params, nil
}

// ResolvePage trims rows fetched with the limit+1 probe down to the page
// size and computes the continuation cursor.
//
// If more than limit rows came back, the extra row is dropped and the
// cursor is the timestamp of the last returned row; otherwise the result
// set is exhausted and the cursor is empty.
func ResolvePage(rows []record.ArtifactRecord, r queryspec.Resolved) ([]record.ArtifactRecord, string) {
	if r.Unbounded() || len(rows) <= r.Limit {
		return rows, ""
	}
	page := rows[:r.Limit]
	cursor := strconv.FormatInt(page[len(page)-1].Timestamp, 10)
	return page, cursor
}
