package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	rediscommon "mdt-readiness-aggregator/internal/redis"
)

// Regenerator 触发一次完整的仪表板重建。*service.Service 实现该接口。
type Regenerator interface {
	Regenerate(ctx context.Context) error
}

// EventConsumer 事件消费者
// 监听上游系统发布的 MDT 数据变更事件，触发仪表板重新聚合
type EventConsumer struct {
	redisClient  *redis.Client
	regenerator  Regenerator
	logger       *zap.Logger
	stream       string
	groupName    string
	consumerName string
	batchSize    int64
}

// MDTEvent MDT 数据变更事件
type MDTEvent struct {
	EventType string                 `json:"event_type"`
	PatientID string                 `json:"patient_id,omitempty"`
	Domain    string                 `json:"domain,omitempty"`
	Timestamp int64                  `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewEventConsumer 创建事件消费者
func NewEventConsumer(
	redisClient *redis.Client,
	regenerator Regenerator,
	logger *zap.Logger,
	stream string,
	groupName string,
	consumerName string,
	batchSize int64,
) *EventConsumer {
	return &EventConsumer{
		redisClient:  redisClient,
		regenerator:  regenerator,
		logger:       logger,
		stream:       stream,
		groupName:    groupName,
		consumerName: consumerName,
		batchSize:    batchSize,
	}
}

// Start 启动事件消费者
func (c *EventConsumer) Start(ctx context.Context) error {
	// 创建消费者组
	if err := rediscommon.CreateConsumerGroup(ctx, c.redisClient, c.stream, c.groupName); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("Event consumer started",
		zap.String("stream", c.stream),
		zap.String("consumer_group", c.groupName),
		zap.String("consumer_name", c.consumerName),
	)

	// 消费事件（带指数退避）
	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := c.consumeEvents(ctx); err != nil {
				c.logger.Error("Failed to consume events",
					zap.Error(err),
					zap.Duration("backoff", backoffDuration),
				)

				// 指数退避
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(backoffDuration):
					backoffDuration *= 2
					if backoffDuration > maxBackoff {
						backoffDuration = maxBackoff
					}
				}
			} else {
				// 成功时重置退避时间
				backoffDuration = time.Second
			}
		}
	}
}

// consumeEvents 消费一批事件
func (c *EventConsumer) consumeEvents(ctx context.Context) error {
	messages, err := rediscommon.ReadFromStream(
		ctx,
		c.redisClient,
		c.stream,
		c.groupName,
		c.consumerName,
		c.batchSize,
	)
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, msg := range messages {
		event, err := c.parseEvent(msg)
		if err != nil {
			// 格式错误的事件重投也无意义，确认后跳过
			c.logger.Warn("Skipping malformed event",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			c.ackMessage(ctx, msg.ID)
			continue
		}

		if err := c.processEvent(ctx, event); err != nil {
			c.logger.Error("Failed to process event",
				zap.String("message_id", msg.ID),
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
			// 不确认，留在 pending 列表中
			continue
		}

		if err := c.ackMessage(ctx, msg.ID); err != nil {
			c.logger.Warn("Failed to ack message",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// processEvent 处理单个事件
// roster_updated 与 domain_updated 目前都触发完整重建；
// 按患者增量刷新暂不支持
func (c *EventConsumer) processEvent(ctx context.Context, event *MDTEvent) error {
	switch event.EventType {
	case "roster_updated":
		c.logger.Info("Roster updated, rebuilding dashboard")
		return c.regenerator.Regenerate(ctx)

	case "domain_updated":
		c.logger.Info("Domain data updated, rebuilding dashboard",
			zap.String("patient_id", event.PatientID),
			zap.String("domain", event.Domain),
		)
		return c.regenerator.Regenerate(ctx)

	default:
		c.logger.Warn("Unknown event type",
			zap.String("event_type", event.EventType),
		)
		return nil
	}
}

// parseEvent 解析事件消息
func (c *EventConsumer) parseEvent(msg rediscommon.StreamMessage) (*MDTEvent, error) {
	// 尝试从 data 字段解析 JSON
	if dataStr, ok := msg.Values["data"].(string); ok {
		var event MDTEvent
		if err := json.Unmarshal([]byte(dataStr), &event); err == nil && event.EventType != "" {
			return &event, nil
		}
	}

	// 如果 data 字段不存在，直接从 Values 解析
	event := &MDTEvent{}

	if eventType, ok := msg.Values["event_type"].(string); ok {
		event.EventType = eventType
	}
	if patientID, ok := msg.Values["patient_id"].(string); ok {
		event.PatientID = patientID
	}
	if domain, ok := msg.Values["domain"].(string); ok {
		event.Domain = domain
	}

	if event.EventType == "" {
		return nil, fmt.Errorf("invalid event: missing event_type")
	}

	return event, nil
}

// ackMessage 确认消息
func (c *EventConsumer) ackMessage(ctx context.Context, messageID string) error {
	return c.redisClient.XAck(ctx, c.stream, c.groupName, messageID).Err()
}
