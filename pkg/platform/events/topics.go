package events

// Event types carried in the event_type header.
const (
	TypeReadinessComputed = "readiness.computed"
	TypePlanGenerated     = "plan.generated"
	TypeWorkoutCompleted  = "workout.completed"
)

// Topics.
const (
	TopicReadinessComputed = "readiness.computed.v1"
	TopicPlanGenerated     = "plan.generated.v1"
	TopicWorkoutCompleted  = "workout.completed.v1"
)

// Header keys set on every published record.
const (
	HeaderEventType     = "event_type"
	HeaderUserID        = "user_id"
	HeaderSchemaSubject = "schema_subject"
)

// ValueSubject returns the Schema Registry subject for a topic's record values.
func ValueSubject(topic string) string {
	return topic + "-value"
}
