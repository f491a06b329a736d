// Package consumer provides Kafka consumer utilities for downstream event processing.
package consumer

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	platformevents "github.com/divyanshukashyap0/Pulsely-AI/pkg/platform/events"
)

// Reader exposes the minimal kafka.Reader interface needed by the processor.
type Reader interface {
	FetchMessage(context.Context) (kafka.Message, error)
	CommitMessages(context.Context, ...kafka.Message) error
	Close() error
}

// Handler receives decoded messages from Kafka.
type Handler interface {
	Handle(context.Context, Message) error
}

// Message is the decoded representation of a Confluent-framed Kafka record.
type Message struct {
	Topic         string
	Partition     int
	Offset        int64
	Timestamp     time.Time
	EventType     string
	UserID        string
	SchemaSubject string
	SchemaID      int
	Payload       json.RawMessage
}

// Option configures optional behaviour for the Processor.
type Option func(*Processor)

// WithLogger overrides the logger used to report errors.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Processor pulls messages from Kafka, decodes them, and dispatches to a Handler.
type Processor struct {
	reader  Reader
	handler Handler
	logger  logrus.FieldLogger
}

// NewProcessor constructs a Processor with the provided reader and handler.
func NewProcessor(reader Reader, handler Handler, opts ...Option) *Processor {
	p := &Processor{
		reader:  reader,
		handler: handler,
		logger:  logrus.StandardLogger().WithField("component", "consumer"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run starts a blocking loop that processes Kafka messages until the context is cancelled.
func (p *Processor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := p.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			p.logger.WithError(err).Warn("fetch error")
			continue
		}

		event, decodeErr := decodeMessage(msg)
		if decodeErr != nil {
			p.logger.WithError(decodeErr).WithFields(logrus.Fields{
				"topic":     msg.Topic,
				"partition": msg.Partition,
				"offset":    msg.Offset,
			}).Warn("decode error")
			recordDecodeError(msg.Topic)
			// Commit malformed messages to avoid poison-pill loops.
			if commitErr := p.reader.CommitMessages(ctx, msg); commitErr != nil {
				p.logger.WithError(commitErr).Error("commit error after decode failure")
			}
			continue
		}

		if handleErr := p.handler.Handle(ctx, event); handleErr != nil {
			p.logger.WithError(handleErr).WithFields(logrus.Fields{
				"event_type": event.EventType,
				"user_id":    event.UserID,
				"offset":     event.Offset,
			}).Error("handler error")
			recordHandlerError(event)
			continue
		}

		if commitErr := p.reader.CommitMessages(ctx, msg); commitErr != nil {
			p.logger.WithError(commitErr).Error("commit error")
		} else {
			recordProcessed(event)
		}
	}
}

func decodeMessage(msg kafka.Message) (Message, error) {
	if len(msg.Value) < 5 {
		return Message{}, fmt.Errorf("invalid payload length: %d", len(msg.Value))
	}

	if msg.Value[0] != 0 {
		return Message{}, fmt.Errorf("unknown magic byte: %d", msg.Value[0])
	}

	eventType, ok := headerValue(msg, platformevents.HeaderEventType)
	if !ok {
		return Message{}, errors.New("missing event_type header")
	}
	userID, _ := headerValue(msg, platformevents.HeaderUserID)
	schemaSubject, _ := headerValue(msg, platformevents.HeaderSchemaSubject)

	schemaID := int(binary.BigEndian.Uint32(msg.Value[1:5]))
	payload := json.RawMessage(append([]byte(nil), msg.Value[5:]...))

	return Message{
		Topic:         msg.Topic,
		Partition:     msg.Partition,
		Offset:        msg.Offset,
		Timestamp:     msg.Time,
		EventType:     string(eventType),
		UserID:        string(userID),
		SchemaSubject: string(schemaSubject),
		SchemaID:      schemaID,
		Payload:       payload,
	}, nil
}

func headerValue(msg kafka.Message, key string) ([]byte, bool) {
	for _, header := range msg.Headers {
		if header.Key == key {
			return header.Value, true
		}
	}
	return nil, false
}
