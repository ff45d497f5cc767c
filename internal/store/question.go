package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/bank"
)

// questionRepo implements QuestionRepo with the ent SQL builder.
type questionRepo struct {
	s *Store
}

func (r *questionRepo) ImportQuestions(ctx context.Context, qs []bank.Question) (int, error) {
	tx, err := r.s.drv.Tx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}

	now := time.Now().UTC()
	for _, q := range qs {
		data, err := json.Marshal(q)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("marshal question %s: %w", q.ID, err)
		}
		query, args := r.s.builder().Insert(tableQuestions).
			Columns("id", "category", "difficulty_label", "question_type", "irt_difficulty",
				"discrimination", "guessing", "data", "updated_at").
			Values(q.ID, q.Category, string(q.Difficulty), string(q.Type), q.IRTDifficulty,
				q.Discrimination, q.Guessing, string(data), now).
			OnConflict(
				entsql.ConflictColumns("id"),
				entsql.ResolveWithNewValues(),
			).
			Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("import question %s: %w", q.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(qs), nil
}

func (r *questionRepo) ListQuestions(ctx context.Context, category string) ([]bank.Question, error) {
	b := r.s.builder()
	sel := b.Select("data").
		From(b.Table(tableQuestions)).
		OrderBy("id")
	if category != "" {
		sel.Where(entsql.EQ("category", category))
	}
	query, args := sel.Query()

	rows, err := r.s.drv.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []bank.Question
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var q bank.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *questionRepo) CountByCategory(ctx context.Context) (map[string]int, error) {
	b := r.s.builder()
	query, args := b.Select("category", entsql.Count("*")).
		From(b.Table(tableQuestions)).
		GroupBy("category").
		Query()

	rows, err := r.s.drv.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			cat string
			n   int
		)
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[cat] = n
	}
	return out, rows.Err()
}

// Bank returns a bank.Bank that reads candidates from the questions table.
func (s *Store) Bank() bank.Bank {
	return &storeBank{repo: &questionRepo{s: s}}
}

// storeBank serves candidates from the database. Questions in the hinted
// category come first; the rest follow in id order.
type storeBank struct {
	repo *questionRepo
}

func (b *storeBank) FetchCandidates(ctx context.Context, exclude map[string]bool, categoryHint string) ([]bank.Question, error) {
	all, err := b.repo.ListQuestions(ctx, "")
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, q := range all {
		if !exclude[q.ID] {
			out = append(out, q)
		}
	}
	if categoryHint != "" {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Category == categoryHint && out[j].Category != categoryHint
		})
	}
	return out, nil
}
