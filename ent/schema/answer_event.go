package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AnswerEvent records one scored response within an assessment.
type AnswerEvent struct {
	ent.Schema
}

func (AnswerEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{SessionEventMixin{}}
}

func (AnswerEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("question_id").
			NotEmpty(),
		field.String("category").
			Comment("Question category, for coverage reports"),
		field.Bool("correct").
			Comment("Whether the selected set matched the correct set"),
		field.JSON("selected_options", []string{}).
			Comment("Option ids the respondent selected"),
		field.Float("theta_before"),
		field.Float("theta_after"),
		field.Float("standard_error").
			Comment("Standard error after the update"),
		field.Int("points_earned").
			Default(0),
		field.Int64("time_ms").
			Default(0).
			Comment("Milliseconds to answer"),
	}
}

func (AnswerEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("question_id"),
	}
}
