package service

import (
	"context"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventRelay forwards events off-process. *nats.Publisher satisfies it.
type EventRelay interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	relay      EventRelay
	logger     logger.ILogger
}

// NewConsumerService drains the in-process event topic. relay may be nil, in which case
// events are only logged.
func NewConsumerService(subscriber message.Subscriber, topicName string, relay EventRelay, logger logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		relay:      relay,
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	event, err := events.Unmarshal(msg.Payload)
	if err != nil {
		cs.logger.Error("EVENTS", "Failed to decode event", map[string]interface{}{"message_id": msg.UUID, "error": err.Error()})
		// Undecodable payloads would be redelivered forever.
		msg.Ack()
		return
	}

	cs.logger.Info("EVENTS", event.EventType(), event.Payload())

	if cs.relay != nil {
		if err := cs.relay.Publish(ctx, event); err != nil {
			cs.logger.Warn("EVENTS", "Failed to relay event", map[string]interface{}{"type": event.EventType(), "error": err.Error()})
		}
	}
	msg.Ack()
}
