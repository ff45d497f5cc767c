package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/session"
)

// snapshotRepo implements SnapshotRepo with the ent SQL builder.
type snapshotRepo struct {
	s *Store
}

func (r *snapshotRepo) Save(ctx context.Context, snap session.Snapshot) error {
	if snap.SessionID == "" {
		return errors.New("save snapshot: empty session id")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	now := time.Now().UTC()
	query, args := r.s.builder().Insert(tableSnapshots).
		Columns("id", "status", "end_reason", "theta", "standard_error", "questions_answered", "data", "created_at", "updated_at").
		Values(snap.SessionID, string(snap.Status), string(snap.EndReason), snap.Theta, snap.StandardError, snap.QuestionsAnswered, string(data), now, now).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("status")
				u.SetExcluded("end_reason")
				u.SetExcluded("theta")
				u.SetExcluded("standard_error")
				u.SetExcluded("questions_answered")
				u.SetExcluded("data")
				u.SetExcluded("updated_at")
			}),
		).
		Query()
	if _, err := r.s.drv.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepo) Get(ctx context.Context, id string) (*session.Snapshot, error) {
	b := r.s.builder()
	query, args := b.Select("data").
		From(b.Table(tableSnapshots)).
		Where(entsql.EQ("id", id)).
		Query()

	var raw string
	err := r.s.db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}

	var snap session.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", id, err)
	}
	return &snap, nil
}

func (r *snapshotRepo) List(ctx context.Context, status session.Status, limit int) ([]SnapshotInfo, error) {
	b := r.s.builder()
	sel := b.Select("id", "status", "end_reason", "theta", "standard_error", "questions_answered", "created_at", "updated_at").
		From(b.Table(tableSnapshots)).
		OrderBy(entsql.Desc("updated_at"), "id")
	if status != "" {
		sel.Where(entsql.EQ("status", string(status)))
	}
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.s.drv.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var (
			info   SnapshotInfo
			st     string
			reason sql.NullString
		)
		if err := rows.Scan(&info.SessionID, &st, &reason, &info.Theta, &info.StandardError,
			&info.QuestionsAnswered, &info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		info.Status = session.Status(st)
		info.EndReason = session.EndReason(reason.String)
		out = append(out, info)
	}
	return out, rows.Err()
}

func (r *snapshotRepo) Delete(ctx context.Context, id string) error {
	query, args := r.s.builder().Delete(tableSnapshots).
		Where(entsql.EQ("id", id)).
		Query()
	if _, err := r.s.drv.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepo) Prune(ctx context.Context, before time.Time) (int, error) {
	query, args := r.s.builder().Delete(tableSnapshots).
		Where(entsql.And(
			entsql.EQ("status", string(session.StatusEnded)),
			entsql.LT("updated_at", before.UTC()),
		)).
		Query()
	res, err := r.s.drv.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return int(n), nil
}
