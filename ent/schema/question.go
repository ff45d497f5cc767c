package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Question is a calibrated bank item. The IRT parameters are also stored
// as columns so banks can be inspected without decoding data.
type Question struct {
	ent.Schema
}

func (Question) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			NotEmpty().
			Immutable(),
		field.String("category").
			NotEmpty(),
		field.String("difficulty_label").
			Optional(),
		field.String("question_type"),
		field.Float("irt_difficulty"),
		field.Float("discrimination"),
		field.Float("guessing"),
		field.JSON("data", map[string]any{}).
			Comment("Full question including options"),
		field.Time("updated_at").
			Default(time.Now),
	}
}

func (Question) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("category"),
	}
}
