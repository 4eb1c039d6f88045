package bus

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/yuzvak/retail-coordination-service/internal/domain/errors"
	"github.com/yuzvak/retail-coordination-service/internal/domain/events"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/logger"
)

func newRedisBus(t *testing.T) *RedisBus {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisBus(client, logger.NewLogger())
}

func TestRedisBus_PublishSubscribe(t *testing.T) {
	b := newRedisBus(t)
	defer b.Close()

	topic := events.StoreTopic("downtown")
	sink := &envelopeSink{}
	unsubscribe := b.Subscribe(topic, sink.handle)
	defer unsubscribe()

	// Give the subscription goroutine time to attach before publishing.
	time.Sleep(50 * time.Millisecond)

	env := mustEnvelope(t, topic, events.KindSaleRegistered)
	require.NoError(t, b.Publish(context.Background(), env))

	require.Eventually(t, func() bool {
		return sink.count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	sink.mu.Lock()
	received := sink.seen[0]
	sink.mu.Unlock()
	assert.Equal(t, env.ID, received.ID)
	assert.Equal(t, env.Kind, received.Kind)
	assert.Equal(t, topic, received.Topic)
}

func TestRedisBus_UnsubscribeStopsDelivery(t *testing.T) {
	b := newRedisBus(t)
	defer b.Close()

	topic := events.StoreTopic("downtown")
	sink := &envelopeSink{}
	unsubscribe := b.Subscribe(topic, sink.handle)
	time.Sleep(50 * time.Millisecond)

	unsubscribe()

	require.NoError(t, b.Publish(context.Background(), mustEnvelope(t, topic, events.KindSaleStarted)))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, sink.count())
}

func TestRedisBus_PublishAfterClose(t *testing.T) {
	b := newRedisBus(t)
	require.NoError(t, b.Close())

	err := b.Publish(context.Background(), mustEnvelope(t, events.StoreTopic("downtown"), events.KindSaleStarted))
	require.ErrorIs(t, err, domainErrors.ErrBusClosed)
}
