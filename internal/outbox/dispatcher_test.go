package outbox

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	platformevents "github.com/divyanshukashyap0/Pulsely-AI/pkg/platform/events"
)

func TestDeliverFramesPayloadAndSetsHeaders(t *testing.T) {
	producer := &stubProducer{}
	registry := &stubRegistry{id: 42}
	d := NewDispatcher(nil, producer, registry, time.Second, 10)

	payload := json.RawMessage(`{"score_id":"s-1"}`)
	err := d.deliver(context.Background(), []Message{{
		EventID:       1,
		UserID:        "user-1",
		EventType:     platformevents.TypeReadinessComputed,
		Topic:         platformevents.TopicReadinessComputed,
		SchemaSubject: platformevents.ValueSubject(platformevents.TopicReadinessComputed),
		PartitionKey:  "user-1",
		Payload:       payload,
	}})
	require.NoError(t, err)

	require.Len(t, producer.writes, 1)
	require.Equal(t, platformevents.TopicReadinessComputed, producer.writes[0].topic)
	record := producer.writes[0].messages[0]
	require.Equal(t, []byte("user-1"), record.Key)
	require.Equal(t, byte(0), record.Value[0])
	require.Equal(t, uint32(42), binary.BigEndian.Uint32(record.Value[1:5]))
	require.JSONEq(t, string(payload), string(record.Value[5:]))

	headers := map[string]string{}
	for _, h := range record.Headers {
		headers[h.Key] = string(h.Value)
	}
	require.Equal(t, map[string]string{
		platformevents.HeaderEventType:     platformevents.TypeReadinessComputed,
		platformevents.HeaderUserID:        "user-1",
		platformevents.HeaderSchemaSubject: "readiness.computed.v1-value",
	}, headers)
}

func TestDeliverGroupsByTopicAndCachesSchemas(t *testing.T) {
	producer := &stubProducer{}
	registry := &stubRegistry{id: 7}
	d := NewDispatcher(nil, producer, registry, time.Second, 10)

	msgs := []Message{
		planMessage(1), planMessage(2),
		{EventID: 3, UserID: "u", EventType: platformevents.TypeReadinessComputed, Topic: platformevents.TopicReadinessComputed, SchemaSubject: "r-value", Payload: json.RawMessage(`{}`)},
	}
	require.NoError(t, d.deliver(context.Background(), msgs))
	require.NoError(t, d.deliver(context.Background(), msgs[:1]))

	require.Len(t, producer.writes, 3)
	require.Equal(t, platformevents.TopicPlanGenerated, producer.writes[0].topic)
	require.Len(t, producer.writes[0].messages, 2)
	require.Equal(t, platformevents.TopicReadinessComputed, producer.writes[1].topic)
	require.Len(t, registry.calls, 2, "one registry lookup per subject")
}

func TestDeliverFailsOnUnknownEventOrRegistryError(t *testing.T) {
	producer := &stubProducer{}
	d := NewDispatcher(nil, producer, &stubRegistry{}, time.Second, 10)
	err := d.deliver(context.Background(), []Message{{EventType: "workout.unknown", Topic: "t"}})
	require.ErrorContains(t, err, "no schema metadata for event_type=workout.unknown")
	require.Empty(t, producer.writes)

	boom := errors.New("registry down")
	d = NewDispatcher(nil, producer, &stubRegistry{err: boom}, time.Second, 10)
	require.ErrorIs(t, d.deliver(context.Background(), []Message{planMessage(1)}), boom)
}

func TestBackoffDelay(t *testing.T) {
	m := NewDLQManager(nil, 0, 0, nil)
	require.Equal(t, 5, m.maxRetries)
	require.Equal(t, time.Minute, m.backoffDelay(1))
	require.Equal(t, 4*time.Minute, m.backoffDelay(3))
	require.Equal(t, time.Hour, m.backoffDelay(7))
	require.Equal(t, time.Hour, m.backoffDelay(64))
}

func TestSchemaCatalogCoversPublishedEvents(t *testing.T) {
	for _, eventType := range []string{platformevents.TypeReadinessComputed, platformevents.TypePlanGenerated} {
		entry, ok := schemaCatalog[eventType]
		require.Truef(t, ok, "missing schema for %s", eventType)
		require.True(t, json.Valid([]byte(entry.Schema)))
		require.Equal(t, platformevents.ValueSubject(entry.Topic), entry.Subject())
	}
}

func TestSchemaIDsSkipRegistryLookups(t *testing.T) {
	producer := &stubProducer{}
	registry := &stubRegistry{id: 99}
	planSubject := platformevents.ValueSubject(platformevents.TopicPlanGenerated)
	d := NewDispatcher(nil, producer, registry, time.Second, 10,
		WithSchemaIDs(map[string]int{planSubject: 21, "unrelated-value": 5}))

	require.NoError(t, d.deliver(context.Background(), []Message{planMessage(1)}))
	require.Empty(t, registry.calls)
	require.Len(t, producer.writes, 1)
	require.Equal(t, uint32(21), binary.BigEndian.Uint32(producer.writes[0].messages[0].Value[1:5]))
}

func planMessage(id int64) Message {
	return Message{
		EventID:       id,
		UserID:        "user-1",
		EventType:     platformevents.TypePlanGenerated,
		Topic:         platformevents.TopicPlanGenerated,
		SchemaSubject: platformevents.ValueSubject(platformevents.TopicPlanGenerated),
		PartitionKey:  "user-1",
		Payload:       json.RawMessage(`{"plan_id":"p"}`),
	}
}

type stubProducer struct {
	mu     sync.Mutex
	err    error
	delay  time.Duration
	writes []writtenBatch
}

type writtenBatch struct {
	topic    string
	messages []kafka.Message
}

func (s *stubProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	copied := make([]kafka.Message, len(msgs))
	copy(copied, msgs)

	s.writes = append(s.writes, writtenBatch{
		topic:    topic,
		messages: copied,
	})
	return nil
}

type stubRegistry struct {
	mu    sync.Mutex
	id    int
	err   error
	calls []schemaCall
}

type schemaCall struct {
	subject string
	schema  string
}

func (s *stubRegistry) EnsureSchema(ctx context.Context, subject string, schema string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, schemaCall{subject: subject, schema: schema})
	if s.err != nil {
		return 0, s.err
	}
	if s.id == 0 {
		s.id = 1
	}
	return s.id, nil
}
