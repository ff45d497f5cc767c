package store

import (
	"context"
	"fmt"

	"entgo.io/ent"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/aiborg-ai/aiborg-learn-sphere-sub002/ent/schema"
)

const (
	tableSnapshots  = "assessment_snapshots"
	tableResults    = "assessment_results"
	tableAnswers    = "answer_events"
	tableEngagement = "engagement_events"
	tableQuestions  = "questions"
)

// entities maps table names to their ent schema definitions. The tables
// are derived from the definitions at startup, so the schema package stays
// the single source of truth for columns and indexes.
var entities = []struct {
	table  string
	schema ent.Interface
}{
	{tableSnapshots, entschema.AssessmentSnapshot{}},
	{tableResults, entschema.AssessmentResult{}},
	{tableAnswers, entschema.AnswerEvent{}},
	{tableEngagement, entschema.EngagementEvent{}},
	{tableQuestions, entschema.Question{}},
}

// migrate creates or updates all tables.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	tables, err := Tables()
	if err != nil {
		return err
	}
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	return m.Create(ctx, tables...)
}

// Tables returns the migration tables for every entity.
func Tables() ([]*schema.Table, error) {
	out := make([]*schema.Table, 0, len(entities))
	for _, e := range entities {
		t, err := tableFor(e.table, e.schema)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// tableFor converts an ent schema (fields, mixin fields and indexes) into a
// migration table. Schemas without an "id" field get an auto-increment
// integer key.
func tableFor(name string, s ent.Interface) (*schema.Table, error) {
	var (
		fields  []ent.Field
		indexes []ent.Index
	)
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, s.Fields()...)
	indexes = append(indexes, s.Indexes()...)

	t := &schema.Table{Name: name}
	byName := make(map[string]*schema.Column, len(fields)+1)

	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, d.Name, d.Err)
		}
		if _, dup := byName[d.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate field %q", name, d.Name)
		}
		col := &schema.Column{
			Name:     d.Name,
			Type:     d.Info.Type,
			Unique:   d.Unique,
			Nullable: d.Optional || d.Nillable,
			Size:     int64(d.Size),
		}
		byName[d.Name] = col
		t.Columns = append(t.Columns, col)
	}

	pk, ok := byName["id"]
	if !ok {
		pk = &schema.Column{Name: "id", Type: field.TypeInt, Increment: true}
		byName["id"] = pk
		t.Columns = append([]*schema.Column{pk}, t.Columns...)
	}
	pk.Unique = false
	pk.Nullable = false
	t.PrimaryKey = []*schema.Column{pk}

	for _, idx := range indexes {
		d := idx.Descriptor()
		ix := &schema.Index{Name: indexName(name, d.Fields), Unique: d.Unique}
		for _, fname := range d.Fields {
			col, ok := byName[fname]
			if !ok {
				return nil, fmt.Errorf("%s: index on unknown field %q", name, fname)
			}
			ix.Columns = append(ix.Columns, col)
		}
		t.Indexes = append(t.Indexes, ix)
	}
	return t, nil
}

func indexName(table string, fields []string) string {
	n := table
	for _, f := range fields {
		n += "_" + f
	}
	return n
}
