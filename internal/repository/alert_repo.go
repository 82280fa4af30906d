package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"pvfacade/internal/models"
)

type AlertSQLite struct {
	db *sql.DB
}

func NewAlertSQLite(db *sql.DB) *AlertSQLite { return &AlertSQLite{db: db} }

// Append inserts a new alert event. If ID or OccurredAt are empty, they're set.
func (r *AlertSQLite) Append(ctx context.Context, e models.AlertEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alert_events (id, occurred_at, facade_id, channel_key, value, threshold, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.OccurredAt.Format(sqliteTimestamp),
		e.FacadeID,
		e.ChannelKey,
		e.Value,
		e.Threshold,
		e.Message,
	)
	return err
}

// List returns alert events filtered by [from, to] (inclusive), newest first,
// capped at limit when limit > 0.
func (r *AlertSQLite) List(ctx context.Context, limit int, from, to time.Time) ([]models.AlertEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC().Format(sqliteTimestamp))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC().Format(sqliteTimestamp))
	}

	q := `SELECT id, occurred_at, facade_id, channel_key, value, threshold, message FROM alert_events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at DESC"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.AlertEvent, 0, 32)
	for rows.Next() {
		var ev models.AlertEvent
		if err := rows.Scan(&ev.ID, &ev.OccurredAt, &ev.FacadeID, &ev.ChannelKey, &ev.Value, &ev.Threshold, &ev.Message); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
