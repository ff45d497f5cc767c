package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo. Every append draws a sequence number from
// the shared counter before inserting.
type eventRepo struct {
	s   *Store
	seq *sequenceCounter
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	selected := data.Selected
	if selected == nil {
		selected = []string{}
	}
	raw, err := json.Marshal(selected)
	if err != nil {
		return fmt.Errorf("marshal selected options: %w", err)
	}

	query, args := r.s.builder().Insert(tableAnswers).
		Columns("sequence", "timestamp", "session_id", "question_id", "category", "correct",
			"selected_options", "theta_before", "theta_after", "standard_error", "points_earned", "time_ms").
		Values(seq, time.Now().UTC(), data.SessionID, data.QuestionID, data.Category, data.Correct,
			string(raw), data.ThetaBefore, data.ThetaAfter, data.StandardError, data.PointsEarned,
			data.TimeSpent.Milliseconds()).
		Query()
	if _, err := r.s.drv.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendEngagementEvent(ctx context.Context, data EngagementEventData) error {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	var payload any
	if data.Payload != nil {
		raw, err := json.Marshal(data.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		payload = string(raw)
	}

	query, args := r.s.builder().Insert(tableEngagement).
		Columns("sequence", "timestamp", "session_id", "event_type", "payload").
		Values(seq, time.Now().UTC(), data.SessionID, data.EventType, payload).
		Query()
	if _, err := r.s.drv.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append engagement event: %w", err)
	}
	return nil
}

func (r *eventRepo) AnswerEvents(ctx context.Context, sessionID string, opts QueryOpts) ([]AnswerEvent, error) {
	b := r.s.builder()
	sel := b.Select("id", "sequence", "timestamp", "session_id", "question_id", "category", "correct",
		"selected_options", "theta_before", "theta_after", "standard_error", "points_earned", "time_ms").
		From(b.Table(tableAnswers))
	applyQueryOpts(sel, sessionID, opts)
	query, args := sel.Query()

	rows, err := r.s.drv.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	defer rows.Close()

	var out []AnswerEvent
	for rows.Next() {
		var (
			e        AnswerEvent
			selected sql.NullString
			ms       int64
		)
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.SessionID, &e.QuestionID, &e.Category,
			&e.Correct, &selected, &e.ThetaBefore, &e.ThetaAfter, &e.StandardError, &e.PointsEarned, &ms); err != nil {
			return nil, fmt.Errorf("scan answer event: %w", err)
		}
		if selected.Valid && selected.String != "" {
			if err := json.Unmarshal([]byte(selected.String), &e.Selected); err != nil {
				return nil, fmt.Errorf("unmarshal selected options: %w", err)
			}
		}
		e.TimeSpent = time.Duration(ms) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) EngagementEvents(ctx context.Context, sessionID string, opts QueryOpts) ([]EngagementEvent, error) {
	b := r.s.builder()
	sel := b.Select("id", "sequence", "timestamp", "session_id", "event_type", "payload").
		From(b.Table(tableEngagement))
	applyQueryOpts(sel, sessionID, opts)
	query, args := sel.Query()

	rows, err := r.s.drv.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query engagement events: %w", err)
	}
	defer rows.Close()

	var out []EngagementEvent
	for rows.Next() {
		var (
			e       EngagementEvent
			payload sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.SessionID, &e.EventType, &payload); err != nil {
			return nil, fmt.Errorf("scan engagement event: %w", err)
		}
		if payload.Valid && payload.String != "" {
			if err := json.Unmarshal([]byte(payload.String), &e.Payload); err != nil {
				return nil, fmt.Errorf("unmarshal payload: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// applyQueryOpts adds the session filter, QueryOpts bounds and sequence
// ordering to an event query.
func applyQueryOpts(sel *entsql.Selector, sessionID string, opts QueryOpts) {
	var preds []*entsql.Predicate
	if sessionID != "" {
		preds = append(preds, entsql.EQ("session_id", sessionID))
	}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UTC()))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy("sequence")
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
}
