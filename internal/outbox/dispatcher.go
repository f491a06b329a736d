// Package outbox persists and delivers domain events to Kafka.
package outbox

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	platformevents "github.com/divyanshukashyap0/Pulsely-AI/pkg/platform/events"
)

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

type schemaRegistrar interface {
	EnsureSchema(context.Context, string, string) (int, error)
}

// Option configures optional behaviour for the Dispatcher.
type Option func(*Dispatcher)

// WithLogger overrides the logger used to report delivery failures.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithSchemaIDs seeds the schema ID cache with IDs already resolved for
// catalog subjects, typically the result of SchemaRegistryClient.RegisterCatalog.
func WithSchemaIDs(ids map[string]int) Option {
	return func(d *Dispatcher) {
		for _, entry := range schemaCatalog {
			if id, ok := ids[entry.Subject()]; ok {
				d.schemaIDCache.Store(schemaCacheKey(entry.Subject(), entry.Schema), id)
			}
		}
	}
}

// Dispatcher drains the outbox table and delivers events to Kafka using Schema Registry metadata.
type Dispatcher struct {
	pool             *pgxpool.Pool
	producer         messageWriter
	registry         schemaRegistrar
	dlq              *DLQWriter
	pollInterval     time.Duration
	batchSize        int
	schemaIDCache    sync.Map
	logger           logrus.FieldLogger
	shutdownComplete chan struct{}
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(pool *pgxpool.Pool, producer messageWriter, registry schemaRegistrar, pollInterval time.Duration, batchSize int, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		pool:             pool,
		producer:         producer,
		registry:         registry,
		dlq:              NewDLQWriter(pool),
		pollInterval:     pollInterval,
		batchSize:        batchSize,
		logger:           logrus.StandardLogger(),
		shutdownComplete: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the polling loop. It should be called in a goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer func() {
		ticker.Stop()
		close(d.shutdownComplete)
	}()

	for {
		if err := d.processBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.WithError(err).Error("outbox dispatcher error")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Wait waits until dispatcher stops.
func (d *Dispatcher) Wait() {
	<-d.shutdownComplete
}

func (d *Dispatcher) processBatch(ctx context.Context) error {
	start := time.Now()

	messages, err := d.fetchAndClaim(ctx)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	if err := d.deliver(ctx, messages); err != nil {
		d.logger.WithError(err).WithField("events", len(messages)).Warn("outbox delivery failed, routing batch to dlq")
		failedCounter.Add(float64(len(messages)))
		if dlqErr := d.moveToDLQ(ctx, messages, err.Error()); dlqErr != nil {
			return dlqErr
		}
		return d.markPublished(ctx, messages)
	}

	deliveredCounter.Add(float64(len(messages)))
	return d.markPublished(ctx, messages)
}

func (d *Dispatcher) fetchAndClaim(ctx context.Context) (messages []Message, err error) {
	tx, err := d.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const query = `SELECT event_id, user_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload
        FROM outbox
        WHERE published_at IS NULL
        ORDER BY event_id
        LIMIT $1
        FOR UPDATE SKIP LOCKED`

	rows, err := tx.Query(ctx, query, d.batchSize)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0)
	for rows.Next() {
		var msg Message
		if err = rows.Scan(&msg.EventID, &msg.UserID, &msg.AggregateType, &msg.AggregateID, &msg.EventType, &msg.Topic, &msg.SchemaSubject, &msg.PartitionKey, &msg.Payload); err != nil {
			rows.Close()
			return nil, err
		}
		messages = append(messages, msg)
		ids = append(ids, msg.EventID)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		tx.Rollback(ctx)
		return nil, nil
	}

	if _, err = tx.Exec(ctx, `UPDATE outbox SET claimed_at = NOW() WHERE event_id = ANY($1)`, ids); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return messages, nil
}

func (d *Dispatcher) deliver(ctx context.Context, messages []Message) error {
	batches := make(map[string][]kafka.Message)
	topics := make([]string, 0)

	for _, msg := range messages {
		meta, ok := schemaCatalog[msg.EventType]
		if !ok {
			return fmt.Errorf("no schema metadata for event_type=%s", msg.EventType)
		}

		schemaID, err := d.schemaID(ctx, msg.SchemaSubject, meta.Schema)
		if err != nil {
			return err
		}

		record := kafka.Message{
			Key:   []byte(msg.PartitionKey),
			Value: encodeWireFormat(schemaID, msg.Payload),
			Time:  time.Now().UTC(),
			Headers: []kafka.Header{
				{Key: platformevents.HeaderEventType, Value: []byte(msg.EventType)},
				{Key: platformevents.HeaderUserID, Value: []byte(msg.UserID)},
				{Key: platformevents.HeaderSchemaSubject, Value: []byte(msg.SchemaSubject)},
			},
		}

		if _, exists := batches[msg.Topic]; !exists {
			topics = append(topics, msg.Topic)
		}
		batches[msg.Topic] = append(batches[msg.Topic], record)
	}

	for _, topic := range topics {
		if err := d.producer.WriteMessages(ctx, topic, batches[topic]...); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) schemaID(ctx context.Context, subject, schema string) (int, error) {
	cacheKey := schemaCacheKey(subject, schema)
	if cached, found := d.schemaIDCache.Load(cacheKey); found {
		return cached.(int), nil
	}
	id, err := d.registry.EnsureSchema(ctx, subject, schema)
	if err != nil {
		return 0, err
	}
	d.schemaIDCache.Store(cacheKey, id)
	return id, nil
}

func schemaCacheKey(subject, schema string) string {
	return subject + "::" + schema
}

func (d *Dispatcher) markPublished(ctx context.Context, messages []Message) error {
	ids := make([]int64, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.EventID)
	}
	_, err := d.pool.Exec(ctx, `UPDATE outbox SET published_at = NOW() WHERE event_id = ANY($1)`, ids)
	return err
}

func (d *Dispatcher) moveToDLQ(ctx context.Context, messages []Message, reason string) error {
	for _, msg := range messages {
		entryReason := fmt.Sprintf("%s (topic=%s)", reason, msg.Topic)
		if err := d.dlq.Write(ctx, msg, entryReason); err != nil {
			return err
		}
		dlqCounter.WithLabelValues(msg.Topic).Inc()
	}
	return nil
}

// Message represents a row fetched from outbox.
type Message struct {
	EventID       int64
	UserID        string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	SchemaSubject string
	PartitionKey  string
	Payload       json.RawMessage
}

// encodeWireFormat applies Confluent framing for Schema Registry aware payloads.
func encodeWireFormat(schemaID int, payload []byte) []byte {
	frame := make([]byte, 5+len(payload))
	frame[0] = 0
	binary.BigEndian.PutUint32(frame[1:5], uint32(schemaID))
	copy(frame[5:], payload)
	return frame
}
