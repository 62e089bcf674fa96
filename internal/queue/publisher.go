package queue

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const (
	TaskAnalyze = "analyze"
	TaskSweep   = "sweep"
)

// Publisher appends analysis tasks to the redis stream the worker
// consumes.
type Publisher struct {
	client *redis.Client
	stream string
}

func NewPublisher(client *redis.Client, stream string) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
	}
}

func (p *Publisher) EnqueueAnalysis(ctx context.Context, grievanceID string) error {
	return p.enqueue(ctx, map[string]interface{}{
		"type":        TaskAnalyze,
		"grievanceId": grievanceID,
	})
}

func (p *Publisher) EnqueueSweep(ctx context.Context) error {
	return p.enqueue(ctx, map[string]interface{}{
		"type": TaskSweep,
	})
}

func (p *Publisher) enqueue(ctx context.Context, values map[string]interface{}) error {
	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}).Result()
	return err
}
