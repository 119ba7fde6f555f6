package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (c *Consumer) spawnWorkerPool(ctx context.Context) {
	for i := 0; i < c.concurrency; i++ {
		c.wg.Add(1)
		go c.workerLoop(ctx, i)
	}

	c.logger.Info("Worker pool spawned successfully",
		slog.Int("worker_count", c.concurrency),
	)
}

// workerLoop stores events until the consumer stops
func (c *Consumer) workerLoop(ctx context.Context, workerNum int) {
	defer c.wg.Done()

	workerName := fmt.Sprintf("%s-%d", c.consumerTag, workerNum)

	for {
		select {
		case <-c.stopChan:
			return

		case <-ctx.Done():
			return

		case msg := <-c.eventsChan:
			err := c.processEvent(ctx, msg)
			if err == nil {
				if ackErr := msg.Delivery.Ack(false); ackErr != nil {
					c.logger.Error("Failed to ACK message",
						slog.String("worker_name", workerName),
						slog.String("job_id", msg.Event.JobID),
						slog.String("error", ackErr.Error()),
					)
				}
				continue
			}

			requeue := shouldRequeueEvent(err)
			c.logger.Error("Event processing failed",
				slog.String("worker_name", workerName),
				slog.String("job_id", msg.Event.JobID),
				slog.Bool("requeue", requeue),
				slog.String("error", err.Error()),
			)
			c.nack(msg.Delivery, requeue)
		}
	}
}

// shouldRequeueEvent requeues transient failures only
func shouldRequeueEvent(err error) bool {
	if errors.Is(err, ErrInvalidEvent) {
		return false
	}

	var retryableErr *RetryableError
	return errors.As(err, &retryableErr)
}
