package service

import (
	"context"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// IPublisherService emits domain events. Publishing is best-effort: failures are logged.
type IPublisherService interface {
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}

type publisherService struct {
	publisher message.Publisher
	topicName string
	logger    logger.ILogger
}

func NewPublisherService(publisher message.Publisher, topicName string, logger logger.ILogger) IPublisherService {
	return &publisherService{
		publisher: publisher,
		topicName: topicName,
		logger:    logger,
	}
}

func (ps *publisherService) Publish(ctx context.Context, eventType string, data map[string]interface{}) {
	payload, err := events.Marshal(events.New(eventType, data))
	if err != nil {
		ps.logger.Error("EVENTS", "Failed to encode event", map[string]interface{}{"type": eventType, "error": err.Error()})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(context.WithoutCancel(ctx))
	if err := ps.publisher.Publish(ps.topicName, msg); err != nil {
		ps.logger.Error("EVENTS", "Failed to publish event", map[string]interface{}{"type": eventType, "error": err.Error()})
	}
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, eventType string, data map[string]interface{}) {}
