package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/wilsondesouza/AlertSystem/internal/localtime"

	"github.com/go-redis/redis/v8"
)

// RedisStreamSink appends alert events to a Redis stream as
// {data: <json>, timestamp: <unix seconds>}.
type RedisStreamSink struct {
	client *redis.Client
	stream string
}

// NewRedisStreamSink creates the stream sink
func NewRedisStreamSink(client *redis.Client, stream string) *RedisStreamSink {
	return &RedisStreamSink{
		client: client,
		stream: stream,
	}
}

// Name implements Sink
func (s *RedisStreamSink) Name() string {
	return "redis_stream"
}

// PublishEvent implements Sink
func (s *RedisStreamSink) PublishEvent(ctx context.Context, event AlertEvent) error {
	jsonBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	_, err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"data":      string(jsonBytes),
			"timestamp": strconv.FormatInt(localtime.Now().Unix(), 10),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to add to stream %s: %w", s.stream, err)
	}
	return nil
}
