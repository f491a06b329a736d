//go:build integration

package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/testsupport"
	platformevents "github.com/divyanshukashyap0/Pulsely-AI/pkg/platform/events"
)

func TestDispatcherPublishesMessages(t *testing.T) {
	ctx := context.Background()
	pool := testsupport.StartPostgres(t, ctx)

	userID := uuid.NewString()
	require.NotZero(t, seedOutbox(t, ctx, pool, userID, platformevents.TypeReadinessComputed, platformevents.TopicReadinessComputed))

	producer := &stubProducer{}
	registry := &stubRegistry{id: 42}
	dispatcher := NewDispatcher(pool, producer, registry, 10*time.Millisecond, 5)

	beforeDelivered := testutil.ToFloat64(deliveredCounter)
	beforeHistogram := histogramSampleCount(t)

	require.NoError(t, dispatcher.processBatch(ctx))

	require.Len(t, producer.writes, 1)
	require.Equal(t, platformevents.TopicReadinessComputed, producer.writes[0].topic)
	require.Len(t, producer.writes[0].messages, 1)

	require.InDelta(t, beforeDelivered+1, testutil.ToFloat64(deliveredCounter), 0.0001)
	require.Greater(t, histogramSampleCount(t), beforeHistogram)

	var published int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox WHERE published_at IS NOT NULL`).Scan(&published))
	require.Equal(t, 1, published)

	// A drained outbox is a no-op.
	require.NoError(t, dispatcher.processBatch(ctx))
	require.Len(t, producer.writes, 1)
}

func TestDispatcherBatchDurationCoversDelivery(t *testing.T) {
	ctx := context.Background()
	pool := testsupport.StartPostgres(t, ctx)

	userID := uuid.NewString()
	require.NotZero(t, seedOutbox(t, ctx, pool, userID, platformevents.TypePlanGenerated, platformevents.TopicPlanGenerated))

	producer := &stubProducer{delay: 200 * time.Millisecond}
	dispatcher := NewDispatcher(pool, producer, &stubRegistry{id: 9}, 10*time.Millisecond, 5)

	beforeCount := histogramSampleCount(t)
	beforeSum := histogramSampleSum(t)

	require.NoError(t, dispatcher.processBatch(ctx))

	require.Equal(t, beforeCount+1, histogramSampleCount(t))
	require.GreaterOrEqual(t, histogramSampleSum(t)-beforeSum, producer.delay.Seconds())
}

func TestDispatcherRoutesMessagesToDLQOnFailure(t *testing.T) {
	ctx := context.Background()
	pool := testsupport.StartPostgres(t, ctx)

	userID := uuid.NewString()
	require.NotZero(t, seedOutbox(t, ctx, pool, userID, platformevents.TypePlanGenerated, platformevents.TopicPlanGenerated))

	producer := &stubProducer{err: errors.New("kafka write failed")}
	dispatcher := NewDispatcher(pool, producer, &stubRegistry{id: 7}, 10*time.Millisecond, 5)

	beforeFailed := testutil.ToFloat64(failedCounter)
	beforeDLQ := testutil.ToFloat64(dlqCounter.WithLabelValues(platformevents.TopicPlanGenerated))

	require.NoError(t, dispatcher.processBatch(ctx))

	require.InDelta(t, beforeFailed+1, testutil.ToFloat64(failedCounter), 0.0001)
	require.InDelta(t, beforeDLQ+1, testutil.ToFloat64(dlqCounter.WithLabelValues(platformevents.TopicPlanGenerated)), 0.0001)

	var dlqCount int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox_dlq WHERE user_id = $1`, userID).Scan(&dlqCount))
	require.Equal(t, 1, dlqCount)

	var published int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox WHERE published_at IS NOT NULL`).Scan(&published))
	require.Equal(t, 1, published)
}

func TestDLQReplayRequeuesThenQuarantines(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()
	pool := testsupport.StartPostgres(t, ctx)

	userID := uuid.NewString()
	seedOutbox(t, ctx, pool, userID, platformevents.TypeReadinessComputed, platformevents.TopicReadinessComputed)

	registry := &stubRegistry{id: 100}
	failing := NewDispatcher(pool, &stubProducer{err: errors.New("upstream kafka unavailable")}, registry, 5*time.Millisecond, 10)
	require.NoError(t, failing.processBatch(ctx))

	manager := NewDLQManager(pool, 1, time.Second, nil)
	beforeRequeued := testutil.ToFloat64(dlqRequeuedCounter.WithLabelValues(platformevents.TopicReadinessComputed, platformevents.TypeReadinessComputed))
	replayed, err := manager.RunOnce(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, replayed)
	require.InDelta(t, beforeRequeued+1, testutil.ToFloat64(dlqRequeuedCounter.WithLabelValues(platformevents.TopicReadinessComputed, platformevents.TypeReadinessComputed)), 0.0001)
	require.Zero(t, testutil.ToFloat64(dlqBacklogGauge))

	producer := &stubProducer{}
	healthy := NewDispatcher(pool, producer, registry, 5*time.Millisecond, 10)
	require.NoError(t, healthy.processBatch(ctx))
	require.Len(t, producer.writes, 1)

	// An entry already at the retry limit is quarantined instead of replayed.
	_, err = pool.Exec(ctx, `INSERT INTO outbox_dlq (user_id, event_id, event_type, topic, payload, reason, aggregate_type, aggregate_id, schema_subject, partition_key, retry_count, next_retry_at)
        VALUES ($1, 0, $2, $3, '{}', 'failed', 'readiness_score', 'a', 's', $1, 1, NOW())`,
		userID, platformevents.TypeReadinessComputed, platformevents.TopicReadinessComputed)
	require.NoError(t, err)

	handled, err := manager.RunOnce(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, handled)

	var reason string
	require.NoError(t, pool.QueryRow(ctx, `SELECT quarantine_reason FROM outbox_dlq WHERE quarantined_at IS NOT NULL`).Scan(&reason))
	require.Equal(t, quarantineReason, reason)
}

func histogramSampleCount(t *testing.T) uint64 {
	t.Helper()

	metric := &dto.Metric{}
	require.NoError(t, batchDuration.Write(metric))
	hist := metric.GetHistogram()
	require.NotNil(t, hist)
	return hist.GetSampleCount()
}

func histogramSampleSum(t *testing.T) float64 {
	t.Helper()

	metric := &dto.Metric{}
	require.NoError(t, batchDuration.Write(metric))
	return metric.GetHistogram().GetSampleSum()
}

func seedOutbox(t *testing.T, ctx context.Context, pool *pgxpool.Pool, userID, eventType, topic string) int64 {
	t.Helper()

	aggregateID := uuid.NewString()
	payload, err := json.Marshal(map[string]any{"user_id": userID, "aggregate_id": aggregateID})
	require.NoError(t, err)

	var eventID int64
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO outbox (user_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
         RETURNING event_id`,
		userID, "test", aggregateID, eventType, topic, platformevents.ValueSubject(topic), userID, payload,
	).Scan(&eventID))
	return eventID
}
