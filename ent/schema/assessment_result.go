package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AssessmentResult is the final score of a session, written once.
type AssessmentResult struct {
	ent.Schema
}

func (AssessmentResult) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			NotEmpty().
			Immutable().
			Comment("Session id"),
		field.Float("ability_score"),
		field.Float("scaled_score"),
		field.String("augmentation_level"),
		field.Float("confidence_percentage"),
		field.Float("standard_error"),
		field.Int("questions_answered"),
		field.String("end_reason").
			Optional(),
		field.JSON("summary", map[string]any{}).
			Optional().
			Comment("Performance summary and recommendation"),
		field.Time("completed_at").
			Default(time.Now),
	}
}

func (AssessmentResult) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("augmentation_level"),
		index.Fields("completed_at"),
	}
}
