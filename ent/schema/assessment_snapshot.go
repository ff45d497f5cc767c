package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AssessmentSnapshot holds the latest resumable state of one session.
// It is overwritten on every transition.
type AssessmentSnapshot struct {
	ent.Schema
}

func (AssessmentSnapshot) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			NotEmpty().
			Immutable().
			Comment("Session id"),
		field.String("status"),
		field.String("end_reason").
			Optional(),
		field.Float("theta"),
		field.Float("standard_error"),
		field.Int("questions_answered"),
		field.JSON("data", map[string]any{}).
			Comment("Full session snapshot as JSON"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now),
	}
}

func (AssessmentSnapshot) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status"),
		index.Fields("updated_at"),
	}
}
