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

// resultRepo implements ResultRepo with the ent SQL builder.
type resultRepo struct {
	s *Store
}

var resultColumns = []string{
	"id", "ability_score", "scaled_score", "augmentation_level", "confidence_percentage",
	"standard_error", "questions_answered", "end_reason", "summary", "completed_at",
}

func (r *resultRepo) SaveResult(ctx context.Context, rec ResultRecord) error {
	if rec.SessionID == "" {
		return errors.New("save result: empty session id")
	}
	summary, err := json.Marshal(rec.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	completed := rec.CompletedAt
	if completed.IsZero() {
		completed = time.Now()
	}

	res := rec.Result
	query, args := r.s.builder().Insert(tableResults).
		Columns(resultColumns...).
		Values(rec.SessionID, res.AbilityScore, res.ScaledScore, res.AugmentationLevel, res.ConfidencePercentage,
			res.StandardError, res.QuestionsAnswered, string(rec.EndReason), string(summary), completed.UTC()).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				for _, c := range resultColumns[1:] {
					u.SetExcluded(c)
				}
			}),
		).
		Query()
	if _, err := r.s.drv.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func (r *resultRepo) GetResult(ctx context.Context, sessionID string) (*ResultRecord, error) {
	b := r.s.builder()
	query, args := b.Select(resultColumns...).
		From(b.Table(tableResults)).
		Where(entsql.EQ("id", sessionID)).
		Query()

	rec, err := scanResult(r.s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query result: %w", err)
	}
	return rec, nil
}

func (r *resultRepo) ListResults(ctx context.Context, limit int) ([]ResultRecord, error) {
	b := r.s.builder()
	sel := b.Select(resultColumns...).
		From(b.Table(tableResults)).
		OrderBy(entsql.Desc("completed_at"), "id")
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.s.drv.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []ResultRecord
	for rows.Next() {
		rec, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (*ResultRecord, error) {
	var (
		rec     ResultRecord
		reason  sql.NullString
		summary sql.NullString
	)
	res := &rec.Result
	if err := row.Scan(&rec.SessionID, &res.AbilityScore, &res.ScaledScore, &res.AugmentationLevel,
		&res.ConfidencePercentage, &res.StandardError, &res.QuestionsAnswered, &reason, &summary,
		&rec.CompletedAt); err != nil {
		return nil, err
	}
	rec.EndReason = session.EndReason(reason.String)
	if summary.Valid && summary.String != "" {
		if err := json.Unmarshal([]byte(summary.String), &rec.Summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
	}
	return &rec, nil
}
