package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"pvfacade/internal/models"
)

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite { return &ReadingSQLite{db: db} }

const insertReadingSQL = `
	INSERT OR IGNORE INTO readings (facade_id, channel_key, semantic_type, value, unit, ts)
	VALUES (?, ?, ?, ?, ?, ?)
`

// sqliteTimestamp is the TIMESTAMP format SQLite sorts lexicographically.
const sqliteTimestamp = "2006-01-02 15:04:05"

// AppendBatch persists one snapshot's readings inside a single transaction.
// Rows already present for (facade, sensor, ts) are ignored, so re-recording
// an unchanged snapshot is harmless.
func (r *ReadingSQLite) AppendBatch(ctx context.Context, facadeID string, readings []models.SensorReading) error {
	if len(readings) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertReadingSQL)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, reading := range readings {
		_, err := stmt.ExecContext(ctx,
			facadeID,
			reading.ChannelKey,
			string(reading.Channel.Type),
			reading.Value,
			reading.Channel.Unit,
			reading.Timestamp.UTC().Format(sqliteTimestamp),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListRange returns readings filtered by [from, to] (inclusive) and/or
// semantic type, ordered by timestamp ASC.
func (r *ReadingSQLite) ListRange(ctx context.Context, facadeID string, from, to time.Time, semanticType string) ([]models.StoredReading, error) {
	conds := []string{"facade_id = ?"}
	args := []any{facadeID}

	if !from.IsZero() {
		conds = append(conds, "ts >= ?")
		args = append(args, from.UTC().Format(sqliteTimestamp))
	}
	if !to.IsZero() {
		conds = append(conds, "ts <= ?")
		args = append(args, to.UTC().Format(sqliteTimestamp))
	}
	if semanticType = strings.TrimSpace(semanticType); semanticType != "" {
		conds = append(conds, "semantic_type = ?")
		args = append(args, semanticType)
	}

	q := `SELECT facade_id, channel_key, semantic_type, value, unit, ts FROM readings WHERE ` +
		strings.Join(conds, " AND ") + " ORDER BY ts ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.StoredReading, 0, 64)
	for rows.Next() {
		var sr models.StoredReading
		var typ string
		if err := rows.Scan(&sr.FacadeID, &sr.ChannelKey, &typ, &sr.Value, &sr.Unit, &sr.Timestamp); err != nil {
			return nil, err
		}
		sr.Type = models.SemanticType(typ)
		sr.Timestamp = sr.Timestamp.UTC()
		out = append(out, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
