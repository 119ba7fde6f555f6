// Package history records job lifecycle events published by the web service.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cuongbtq/video-downloader/internal/events"
	"github.com/cuongbtq/video-downloader/internal/history/model"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DeliverySource provides the broker deliveries to consume
type DeliverySource interface {
	Consume(consumerTag string) (<-chan amqp.Delivery, error)
}

// EventStore persists history records
type EventStore interface {
	InsertEvent(ctx context.Context, event *model.EventRecord) error
}

// Config holds consumer configuration
type Config struct {
	Logger      *slog.Logger
	Source      DeliverySource
	Store       EventStore
	Concurrency int
	ConsumerTag string
}

// eventMessage is a decoded event together with its delivery
type eventMessage struct {
	Event    events.JobEvent
	Delivery amqp.Delivery
}

// Consumer reads job events from RabbitMQ and stores them
type Consumer struct {
	logger      *slog.Logger
	source      DeliverySource
	store       EventStore
	concurrency int
	consumerTag string
	eventsChan  chan *eventMessage
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
}

// NewConsumer creates a new consumer instance
func NewConsumer(cfg *Config) *Consumer {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	consumerTag := cfg.ConsumerTag
	if consumerTag == "" {
		consumerTag = "history-" + uuid.NewString()
	}

	return &Consumer{
		logger:      cfg.Logger,
		source:      cfg.Source,
		store:       cfg.Store,
		concurrency: concurrency,
		consumerTag: consumerTag,
		eventsChan:  make(chan *eventMessage, concurrency),
		stopChan:    make(chan struct{}),
	}
}

// Start subscribes to the queue and starts the worker pool. It returns once
// consumption has begun.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("Starting history consumer",
		slog.Int("concurrency", c.concurrency),
		slog.String("consumer_tag", c.consumerTag),
	)

	deliveries, err := c.source.Consume(c.consumerTag)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.spawnWorkerPool(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.startMessageDispatcher(ctx, deliveries)
	}()

	return nil
}

// Stop signals all goroutines and waits for in-flight events or ctx expiry
func (c *Consumer) Stop(ctx context.Context) error {
	c.logger.Info("Stopping history consumer...")
	c.stopOnce.Do(func() { close(c.stopChan) })

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("History consumer stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("history consumer stop: %w", ctx.Err())
	}
}

// startMessageDispatcher decodes deliveries and hands them to the worker pool
func (c *Consumer) startMessageDispatcher(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Message dispatcher stopped - context canceled")
			return

		case <-c.stopChan:
			c.logger.Info("Message dispatcher stopped - stopChan closed")
			return

		case delivery, ok := <-deliveries:
			if !ok {
				c.logger.Warn("RabbitMQ delivery channel closed")
				return
			}

			var event events.JobEvent
			if err := json.Unmarshal(delivery.Body, &event); err != nil {
				c.logger.Error("Failed to parse event JSON",
					slog.String("error", err.Error()),
					slog.String("body", string(delivery.Body)),
				)
				// Malformed messages are never requeued
				c.nack(delivery, false)
				continue
			}

			if _, err := uuid.Parse(event.JobID); err != nil {
				c.logger.Error("Invalid job_id format - not a UUID",
					slog.String("job_id", event.JobID),
					slog.String("error", err.Error()),
				)
				c.nack(delivery, false)
				continue
			}

			select {
			case c.eventsChan <- &eventMessage{Event: event, Delivery: delivery}:
			case <-ctx.Done():
				c.nack(delivery, true)
				return
			case <-c.stopChan:
				c.nack(delivery, true)
				return
			}
		}
	}
}

func (c *Consumer) nack(delivery amqp.Delivery, requeue bool) {
	if err := delivery.Nack(false, requeue); err != nil {
		c.logger.Error("Failed to NACK message",
			slog.Uint64("delivery_tag", delivery.DeliveryTag),
			slog.Bool("requeue", requeue),
			slog.String("error", err.Error()),
		)
	}
}
