//go:build integration

package testsupport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkacontainer "github.com/testcontainers/testcontainers-go/modules/kafka"
)

// StartKafka runs a single-broker Kafka container with topic auto-creation and
// returns its bootstrap address.
func StartKafka(t *testing.T, ctx context.Context) string {
	t.Helper()

	kc, err := kafkacontainer.Run(ctx, "confluentinc/confluent-local:7.5.0",
		kafkacontainer.WithClusterID("pulsely-test"),
		testcontainers.WithEnv(map[string]string{"KAFKA_AUTO_CREATE_TOPICS_ENABLE": "true"}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kc.Terminate(context.Background()) })

	brokers, err := kc.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}
