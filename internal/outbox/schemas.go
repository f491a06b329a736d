package outbox

import platformevents "github.com/divyanshukashyap0/Pulsely-AI/pkg/platform/events"

// SchemaCatalogEntry maps an event type to its topic and JSON schema.
type SchemaCatalogEntry struct {
	Topic  string
	Schema string
}

// Subject is the Schema Registry subject for the entry's record values.
func (e SchemaCatalogEntry) Subject() string {
	return platformevents.ValueSubject(e.Topic)
}

var schemaCatalog = map[string]SchemaCatalogEntry{
	platformevents.TypeReadinessComputed: {Topic: platformevents.TopicReadinessComputed, Schema: readinessComputedSchema},
	platformevents.TypePlanGenerated:     {Topic: platformevents.TopicPlanGenerated, Schema: planGeneratedSchema},
}

const readinessComputedSchema = `{
  "type": "object",
  "title": "ReadinessComputed",
  "properties": {
    "score_id": {"type": "string"},
    "user_id": {"type": "string"},
    "date": {"type": "string", "format": "date"},
    "score": {"type": "integer", "minimum": 0, "maximum": 100},
    "sleep_score": {"type": "number"},
    "fatigue_score": {"type": "number"},
    "strain_score": {"type": "number"},
    "previous_day_volume": {"type": "number"},
    "computed_at": {"type": "string", "format": "date-time"}
  },
  "required": ["score_id", "user_id", "date", "score", "sleep_score", "fatigue_score", "strain_score", "previous_day_volume", "computed_at"],
  "additionalProperties": false
}`

const planGeneratedSchema = `{
  "type": "object",
  "title": "PlanGenerated",
  "properties": {
    "plan_id": {"type": "string"},
    "user_id": {"type": "string"},
    "name": {"type": "string"},
    "goal": {"type": "string"},
    "days_per_week": {"type": "integer", "minimum": 1},
    "exercises": {"type": "integer", "minimum": 0},
    "generated": {"type": "boolean"},
    "created_at": {"type": "string", "format": "date-time"}
  },
  "required": ["plan_id", "user_id", "name", "goal", "days_per_week", "exercises", "generated", "created_at"],
  "additionalProperties": false
}`
