// Package stream 把发布/wipe 事件写入 Redis Streams，供下游消费
// （缓存预热、Discord 转发等）。写失败只记日志，不影响主流程。
package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Event 外发事件
type Event struct {
	Kind       string `json:"kind"` // 'config.published' / 'wipe.registered'
	ConfigID   string `json:"config_id,omitempty"`
	ConfigType string `json:"config_type,omitempty"`
	Version    int    `json:"version,omitempty"`
	ServerID   string `json:"server_id,omitempty"`
	WipeNumber int    `json:"wipe_number,omitempty"`
	ActorID    string `json:"actor_id,omitempty"`
	At         int64  `json:"at"`
}

// Publisher Redis Streams 事件发布器
type Publisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewPublisher 创建事件发布器；client 为 nil 时发布为 no-op
func NewPublisher(client *redis.Client, stream string, logger *zap.Logger) *Publisher {
	return &Publisher{client: client, stream: stream, logger: logger}
}

// Publish 发布事件（XADD），失败只告警
func (p *Publisher) Publish(ctx context.Context, ev Event) {
	if p == nil || p.client == nil {
		return
	}
	if ev.At == 0 {
		ev.At = time.Now().Unix()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		p.logger.Warn("failed to marshal event", zap.String("kind", ev.Kind), zap.Error(err))
		return
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": ev.At,
		},
	}).Err()
	if err != nil {
		p.logger.Warn("failed to publish event", zap.String("kind", ev.Kind), zap.Error(err))
	}
}
