package consumer

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	platformevents "github.com/divyanshukashyap0/Pulsely-AI/pkg/platform/events"
)

func framed(schemaID uint32, payload []byte) []byte {
	value := make([]byte, 5+len(payload))
	value[0] = 0
	binary.BigEndian.PutUint32(value[1:5], schemaID)
	copy(value[5:], payload)
	return value
}

func workoutRecord(offset int64, payload []byte, userID string) kafka.Message {
	return kafka.Message{
		Topic:     platformevents.TopicWorkoutCompleted,
		Partition: 0,
		Offset:    offset,
		Time:      time.Now().UTC(),
		Value:     framed(42, payload),
		Headers: []kafka.Header{
			{Key: platformevents.HeaderEventType, Value: []byte(platformevents.TypeWorkoutCompleted)},
			{Key: platformevents.HeaderUserID, Value: []byte(userID)},
			{Key: platformevents.HeaderSchemaSubject, Value: []byte(platformevents.ValueSubject(platformevents.TopicWorkoutCompleted))},
		},
	}
}

func TestProcessorCommitsOnSuccess(t *testing.T) {
	payload := []byte(`{"workout_id":"abc"}`)
	reader := &stubReader{messages: []kafka.Message{workoutRecord(10, payload, "user-1")}}
	handler := &stubHandler{}
	logger, _ := logtest.NewNullLogger()

	err := NewProcessor(reader, handler, WithLogger(logger)).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 1, reader.commitCalls)
	require.Equal(t, platformevents.TypeWorkoutCompleted, handler.last.EventType)
	require.Equal(t, "user-1", handler.last.UserID)
	require.Equal(t, 42, handler.last.SchemaID)
	require.Equal(t, int64(10), handler.last.Offset)
	require.JSONEq(t, string(payload), string(handler.last.Payload))
}

func TestProcessorSkipsCommitOnHandlerError(t *testing.T) {
	reader := &stubReader{messages: []kafka.Message{workoutRecord(20, []byte(`{}`), "user-2")}}
	handler := &stubHandler{err: errors.New("boom")}
	logger, hook := logtest.NewNullLogger()

	err := NewProcessor(reader, handler, WithLogger(logger)).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 0, reader.commitCalls)
	require.NotNil(t, hook.LastEntry())
	require.Equal(t, "handler error", hook.LastEntry().Message)
	require.Equal(t, "user-2", hook.LastEntry().Data["user_id"])
}

func TestProcessorCommitsMalformedRecords(t *testing.T) {
	noHeader := workoutRecord(1, []byte(`{}`), "u")
	noHeader.Headers = nil
	badMagic := workoutRecord(2, []byte(`{}`), "u")
	badMagic.Value[0] = 9
	short := workoutRecord(3, nil, "u")
	short.Value = []byte{0, 1}

	reader := &stubReader{messages: []kafka.Message{noHeader, badMagic, short}}
	handler := &stubHandler{}
	logger, hook := logtest.NewNullLogger()

	err := NewProcessor(reader, handler, WithLogger(logger)).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, handler.calls)
	require.Equal(t, 3, reader.commitCalls)
	require.Len(t, hook.AllEntries(), 3)
}

func TestProcessorStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := &stubReader{messages: []kafka.Message{workoutRecord(1, []byte(`{}`), "u")}}
	handler := &stubHandler{}
	err := NewProcessor(reader, handler).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, handler.calls)
}

type stubReader struct {
	messages    []kafka.Message
	index       int
	commitCalls int
}

// FetchMessage replays messages, then reports cancellation.
func (r *stubReader) FetchMessage(context.Context) (kafka.Message, error) {
	if r.index >= len(r.messages) {
		return kafka.Message{}, context.Canceled
	}
	msg := r.messages[r.index]
	r.index++
	return msg, nil
}

func (r *stubReader) CommitMessages(_ context.Context, _ ...kafka.Message) error {
	r.commitCalls++
	return nil
}

func (r *stubReader) Close() error { return nil }

type stubHandler struct {
	calls int
	err   error
	last  Message
}

func (h *stubHandler) Handle(_ context.Context, msg Message) error {
	h.calls++
	h.last = msg
	return h.err
}
