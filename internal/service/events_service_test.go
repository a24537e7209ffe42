package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRelay struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingRelay) Publish(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingRelay) snapshot() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

func TestEventsFlowFromPublisherToRelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	relay := &recordingRelay{}
	consumer := NewConsumerService(pubSub, "test-events", relay, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService(pubSub, "test-events", logger.NewNopLogger())
	publisher.Publish(ctx, "CHAT_CREATED", map[string]interface{}{"chat_id": "c1"})

	require.Eventually(t, func() bool { return len(relay.snapshot()) == 1 }, time.Second, 10*time.Millisecond)
	got := relay.snapshot()[0]
	assert.Equal(t, "CHAT_CREATED", got.EventType())
	assert.Equal(t, "c1", got.Payload()["chat_id"])
}

func TestConsumer_WithoutRelayStillAcks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, watermill.NopLogger{})
	defer pubSub.Close()

	consumer := NewConsumerService(pubSub, "test-events", nil, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService(pubSub, "test-events", logger.NewNopLogger())
	done := make(chan struct{})
	go func() {
		publisher.Publish(ctx, "HISTORY_CLEARED", nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish was not acknowledged")
	}
}
