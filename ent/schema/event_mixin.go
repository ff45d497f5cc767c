package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"entgo.io/ent/schema/mixin"
)

// SessionEventMixin holds the columns every assessment event carries: the
// owning session and its place in the global event order.
type SessionEventMixin struct {
	mixin.Schema
}

func (SessionEventMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("sequence").
			Unique().
			Immutable().
			Comment("Global event order, shared by all event tables"),
		field.Time("timestamp").
			Default(time.Now).
			Immutable().
			Comment("UTC"),
		field.String("session_id").
			NotEmpty().
			Immutable(),
	}
}

// Indexes cover the two read paths: one session's events in order, and
// time-bounded scans across sessions.
func (SessionEventMixin) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id", "sequence"),
		index.Fields("timestamp"),
	}
}
