// Package messaging 提供消息队列实现
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// ArticleLifecycleMessage 文章生命周期事件
type ArticleLifecycleMessage struct {
	ArticleID    string  `json:"article_id"`
	SessionID    string  `json:"session_id"`
	Event        string  `json:"event"` // started / completed / failed / error
	Status       string  `json:"status,omitempty"`
	OverallScore float64 `json:"overall_score,omitempty"`
	Iterations   int     `json:"iterations,omitempty"`
	Detail       string  `json:"detail,omitempty"`
}

// PublishLifecycle 发布文章生命周期事件（fire-and-forget，调用方不依赖结果）
func (p *Producer) PublishLifecycle(ctx context.Context, event *ArticleLifecycleMessage) (string, error) {
	msg, err := NewMessage(event.ArticleID, event.Event, event.SessionID, event)
	if err != nil {
		return "", err
	}

	return p.Publish(ctx, StreamArticleLifecycle, msg)
}
