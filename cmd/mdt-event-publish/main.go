package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"mdt-readiness-aggregator/internal/config"
	"mdt-readiness-aggregator/internal/consumer"
	"mdt-readiness-aggregator/internal/logger"
	rediscommon "mdt-readiness-aggregator/internal/redis"
)

// 运维工具：向事件流手工发布一条 MDT 数据变更事件
// 上游系统不可用时可用它触发事件模式下的仪表板重建
func main() {
	eventType := flag.String("type", "roster_updated", "event type: roster_updated or domain_updated")
	patientID := flag.String("patient", "", "patient_id for domain_updated events")
	domain := flag.String("domain", "", "changed domain for domain_updated events")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "mdt-event-publish")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *eventType != "roster_updated" && *eventType != "domain_updated" {
		log.Fatal("Unsupported event type", zap.String("event_type", *eventType))
	}
	if *eventType == "domain_updated" && *patientID == "" {
		log.Fatal("domain_updated events require -patient")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := rediscommon.NewRedisClient(cfg)
	defer rediscommon.Close(client)

	if err := rediscommon.Ping(ctx, client); err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}

	event := consumer.MDTEvent{
		EventType: *eventType,
		PatientID: *patientID,
		Domain:    *domain,
		Timestamp: time.Now().Unix(),
	}

	id, err := rediscommon.PublishJSONToStream(ctx, client, cfg.Runner.EventStream, event)
	if err != nil {
		log.Fatal("Failed to publish event", zap.Error(err))
	}

	log.Info("Event published",
		zap.String("stream", cfg.Runner.EventStream),
		zap.String("event_type", *eventType),
		zap.String("message_id", id),
	)
}
