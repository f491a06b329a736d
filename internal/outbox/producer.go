package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// ProducerConfig tunes the per-topic writers.
type ProducerConfig struct {
	Brokers      []string
	BatchSize    int
	BatchTimeout time.Duration
	WriteTimeout time.Duration
}

func (c ProducerConfig) withDefaults() ProducerConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	// kafka-go waits a full second for partial batches by default, which
	// stalls every synchronous outbox flush.
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = 10 * time.Millisecond
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	return c
}

// KafkaProducer publishes outbox batches, lazily creating one writer per topic.
// Records are hashed on their key, so every event for a user lands on the
// same partition in outbox order.
type KafkaProducer struct {
	cfg     ProducerConfig
	logger  logrus.FieldLogger
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer.
func NewKafkaProducer(cfg ProducerConfig, logger logrus.FieldLogger) *KafkaProducer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &KafkaProducer{
		cfg:     cfg.withDefaults(),
		logger:  logger,
		writers: make(map[string]*kafka.Writer),
	}
}

// WriteMessages publishes msgs to topic and blocks until every broker replica acknowledges them.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	writer := p.writerForTopic(topic)
	if err := writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.WithError(err).WithFields(logrus.Fields{
			"topic":  topic,
			"events": len(msgs),
		}).Warn("kafka publish failed")
		return err
	}
	p.logger.WithFields(logrus.Fields{
		"topic":  topic,
		"events": len(msgs),
	}).Debug("published events")
	return nil
}

func (p *KafkaProducer) writerForTopic(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, ok := p.writers[topic]; ok {
		return writer
	}

	topicLogger := p.logger.WithField("topic", topic)
	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    p.cfg.BatchSize,
		BatchTimeout: p.cfg.BatchTimeout,
		WriteTimeout: p.cfg.WriteTimeout,
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		ErrorLogger:  kafka.LoggerFunc(topicLogger.Errorf),
	}
	p.writers[topic] = writer
	topicLogger.WithFields(logrus.Fields{
		"batch_size":    p.cfg.BatchSize,
		"batch_timeout": p.cfg.BatchTimeout.String(),
	}).Info("kafka writer created")
	return writer
}

// Close flushes and releases every topic writer.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil {
			p.logger.WithError(err).WithField("topic", topic).Warn("closing kafka writer failed")
			if firstErr == nil {
				firstErr = err
			}
		}
		delete(p.writers, topic)
	}
	return firstErr
}
