//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/resource-finder-geocode/internal/adapter/kafka"
	"github.com/couchcryptid/resource-finder-geocode/internal/domain"
	"github.com/couchcryptid/resource-finder-geocode/internal/observability"
	"github.com/couchcryptid/resource-finder-geocode/internal/tools"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testAuditTopic = "test-geocode-tool-invocations"

type stubGeocoder struct{}

func (stubGeocoder) Forward(_ context.Context, address, _ string) domain.GeocodeResult {
	return domain.Matched(domain.ForwardRequest(address), domain.Match{
		NormalizedAddress: "Austin, TX, USA",
		Latitude:          30.267153,
		Longitude:         -97.7430608,
	})
}

func (stubGeocoder) Reverse(_ context.Context, lat, lon float64, _ string) domain.GeocodeResult {
	return domain.Failed(domain.ReverseRequest(lat, lon), domain.ErrReverseGeocodeStatus, "ZERO_RESULTS")
}

// auditMessage holds a deserialized record read from the audit topic.
type auditMessage struct {
	Invocation domain.ToolInvocation
	Key        string
	Headers    map[string]string
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("geocode-audit-test"))
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func readAudit(ctx context.Context, t *testing.T, consumer *kafkago.Reader) auditMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from audit topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var inv domain.ToolInvocation
	require.NoError(t, json.Unmarshal(msg.Value, &inv), "unmarshal audit message")

	return auditMessage{Invocation: inv, Key: string(msg.Key), Headers: headers}
}

// TestAuditRoundTrip invokes both tools through a Recorder backed by the
// Kafka AuditWriter and reads the records back from the topic.
func TestAuditRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testAuditTopic)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	writer := kafka.NewAuditWriter([]string{broker}, testAuditTopic, logger)
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	recorder := tools.NewRecorder(metrics, writer, logger)
	geoTools := tools.GetGeocodingTools(stubGeocoder{}, tools.WithMode(tools.ModeDeclarative), tools.WithObserver(recorder))

	fwd, err := geoTools[0].Invoke(ctx, map[string]any{"address": "Austin, TX", "api_key": "do-not-log"})
	require.NoError(t, err)
	require.True(t, fwd.OK)
	rev, err := geoTools[1].Invoke(ctx, map[string]any{"lat": 0.0, "lon": 0.0})
	require.NoError(t, err)
	require.False(t, rev.OK)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testAuditTopic,
		Partition:   0,
		StartOffset: kafkago.FirstOffset,
		MaxWait:     500 * time.Millisecond,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	first := readAudit(ctx, t, consumer)
	assert.Equal(t, first.Invocation.ID, first.Key)
	assert.Equal(t, tools.GeocodeToolName, first.Headers["tool"])
	assert.NotEmpty(t, first.Headers["invoked_at"])
	assert.True(t, first.Invocation.OK)
	assert.Equal(t, "declarative", first.Invocation.Convention)
	assert.Equal(t, "REDACTED", first.Invocation.Params["api_key"])

	second := readAudit(ctx, t, consumer)
	assert.Equal(t, tools.ReverseGeocodeToolName, second.Invocation.Tool)
	assert.False(t, second.Invocation.OK)
	assert.Equal(t, domain.ErrReverseGeocodeStatus, second.Invocation.ErrorKind)
	assert.NotEqual(t, first.Key, second.Key)
}
