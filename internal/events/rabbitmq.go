package events

import (
	"context"
	"encoding/json"
	"fmt"
)

// messagePublisher is the subset of the RabbitMQ client used for events
type messagePublisher interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// RabbitPublisher publishes job events as JSON messages to RabbitMQ
type RabbitPublisher struct {
	client messagePublisher
}

// NewRabbitPublisher creates a new RabbitMQ event publisher
func NewRabbitPublisher(client messagePublisher) *RabbitPublisher {
	return &RabbitPublisher{client: client}
}

// Publish implements Publisher
func (p *RabbitPublisher) Publish(ctx context.Context, event JobEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal job event: %w", err)
	}

	if err := p.client.PublishWithRetry(ctx, body, ContentTypeJSON); err != nil {
		return fmt.Errorf("failed to publish job event: %w", err)
	}

	return nil
}
