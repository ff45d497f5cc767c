package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// EngagementEvent records assessment lifecycle events
// (assessment_started, question_answered, assessment_completed).
type EngagementEvent struct {
	ent.Schema
}

func (EngagementEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{SessionEventMixin{}}
}

func (EngagementEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("event_type").
			NotEmpty(),
		field.JSON("payload", map[string]any{}).
			Optional().
			Comment("Event-specific metadata"),
	}
}

func (EngagementEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("event_type"),
	}
}
