package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mdt-readiness-aggregator/internal/aggregator"
	"mdt-readiness-aggregator/internal/config"
	"mdt-readiness-aggregator/internal/consumer"
	"mdt-readiness-aggregator/internal/enrichment"
	"mdt-readiness-aggregator/internal/models"
	rediscommon "mdt-readiness-aggregator/internal/redis"
	"mdt-readiness-aggregator/internal/repository"
	"mdt-readiness-aggregator/internal/roster"
	"mdt-readiness-aggregator/internal/sources"
)

// Service MDT 就绪度聚合服务
type Service struct {
	config        *config.Config
	logger        *zap.Logger
	profile       models.ChecklistProfile
	db            *sql.DB
	redisClient   *redis.Client
	rosterLoader  *roster.Loader
	registry      *sources.Registry
	aggregator    *aggregator.Aggregator
	collector     *aggregator.Collector
	cacheManager  *aggregator.CacheManager
	eventConsumer *consumer.EventConsumer
}

// NewService 创建就绪度聚合服务
func NewService(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	// 解析激活的检查清单 profile
	profile, err := cfg.ResolveProfile()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve checklist profile: %w", err)
	}

	// 初始化病理数据库（上游数据源）
	db, err := repository.OpenPathologyDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to pathology database: %w", err)
	}

	pathologyRepo := repository.NewPathologyRepository(db, logger)

	// 初始化 Redis（缓存或事件驱动模式需要）
	var redisClient *redis.Client
	if cfg.Cache.Enabled || cfg.Runner.Mode == "events" {
		redisClient = rediscommon.NewRedisClient(cfg)
		if err := rediscommon.Ping(context.Background(), redisClient); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
	}

	// 基因组注释器（可选，查询临床试验和文献）
	var annotator sources.TrialAnnotator
	if cfg.Enrichment.Enabled {
		annotator = enrichment.NewAnnotator(cfg, logger)
	}

	// 注册各领域的数据源解析器
	registry := sources.NewRegistry(logger)
	registry.Register(sources.NewClinicalSource(cfg.Paths.ClinicalNotes, logger))
	registry.Register(sources.NewPathologySource(pathologyRepo, logger))
	registry.Register(sources.NewRadiologyReportSource(cfg.Paths.RadiologyScans, logger))
	registry.Register(sources.NewRadiologyImagesSource(cfg.Paths.RadiologyScans, logger))
	registry.Register(sources.NewGenomicsSource(cfg.Paths.GenomicsData, annotator, logger))
	registry.Register(sources.NewContraindicationsSource(cfg.Paths.ClinicalNotes, logger))

	agg := aggregator.New(profile, logger)

	// 创建缓存管理器（如果启用快照缓存）
	var cacheManager *aggregator.CacheManager
	if cfg.Cache.Enabled && redisClient != nil {
		kv := aggregator.NewRedisKVStore(redisClient)
		cacheManager = aggregator.NewCacheManager(cfg, kv, logger)
	}

	svc := &Service{
		config:       cfg,
		logger:       logger,
		profile:      profile,
		db:           db,
		redisClient:  redisClient,
		rosterLoader: roster.NewLoader(cfg.Paths.Roster, logger),
		registry:     registry,
		aggregator:   agg,
		collector:    aggregator.NewCollector(cfg, profile, registry, agg, logger),
		cacheManager: cacheManager,
	}

	// 创建事件消费者（如果使用事件驱动模式）
	if cfg.Runner.Mode == "events" {
		svc.eventConsumer = consumer.NewEventConsumer(
			redisClient,
			svc,
			logger,
			cfg.Runner.EventStream,
			cfg.Runner.ConsumerGroup,
			cfg.Runner.ConsumerName,
			10,
		)
	}

	return svc, nil
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting MDT readiness aggregator",
		zap.String("run_mode", s.config.Runner.Mode),
		zap.String("checklist_profile", s.profile.Name),
		zap.Bool("cache_enabled", s.config.Cache.Enabled),
	)

	// 根据运行模式启动不同的处理逻辑
	switch s.config.Runner.Mode {
	case "once":
		return s.RunOnce(ctx)
	case "polling":
		return s.startPollingMode(ctx)
	case "events":
		return s.startEventDrivenMode(ctx)
	default:
		return fmt.Errorf("unsupported run mode: %s", s.config.Runner.Mode)
	}
}

// RunOnce 执行一次完整的聚合：名册 -> 收集 -> 聚合 -> 输出
// 名册读取失败视为本次运行失败；单个患者的失败不会中止仪表板
func (s *Service) RunOnce(ctx context.Context) error {
	start := time.Now()
	runID := uuid.New().String()

	meetingRoster, err := s.rosterLoader.Load()
	if err != nil {
		return fmt.Errorf("failed to load roster: %w", err)
	}

	readiness := s.collector.GatherRoster(ctx, *meetingRoster)
	dashboard := s.aggregator.BuildDashboard(*meetingRoster, readiness)

	if err := WriteDashboard(s.config.Paths.Output, &dashboard); err != nil {
		return fmt.Errorf("failed to write dashboard: %w", err)
	}

	// 更新快照缓存（失败仅记录，不影响本次运行）
	if s.cacheManager != nil {
		if err := s.cacheManager.UpdateDashboardCache(ctx, &dashboard); err != nil {
			s.logger.Warn("Failed to update dashboard cache", zap.Error(err))
		}
		for _, r := range readiness {
			r := r
			if err := s.cacheManager.UpdatePatientCache(ctx, &r); err != nil {
				s.logger.Warn("Failed to update patient cache",
					zap.String("patient_id", r.PatientID),
					zap.Error(err),
				)
			}
		}
	}

	s.logger.Info("Dashboard generated",
		zap.String("run_id", runID),
		zap.String("output_path", s.config.Paths.Output),
		zap.Int("total_patients", dashboard.Summary.TotalPatients),
		zap.Int("ready", dashboard.Summary.Ready),
		zap.Int("in_progress", dashboard.Summary.InProgress),
		zap.Int("blocked", dashboard.Summary.Blocked),
		zap.Int("errors", dashboard.Summary.Errors),
		zap.Float64("readiness_percentage", dashboard.Summary.ReadinessPercentage),
		zap.Duration("elapsed", time.Since(start)),
	)

	return nil
}

// Regenerate 由数据变更事件触发的完整重建
func (s *Service) Regenerate(ctx context.Context) error {
	return s.RunOnce(ctx)
}

// startPollingMode 启动轮询模式
func (s *Service) startPollingMode(ctx context.Context) error {
	interval := time.Duration(s.config.Runner.Polling.Interval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Starting polling mode",
		zap.Duration("interval", interval),
	)

	// 首次执行一次全量聚合
	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("Failed to generate dashboard on startup", zap.Error(err))
	}

	// 定时轮询
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("Failed to generate dashboard", zap.Error(err))
			}
		}
	}
}

// startEventDrivenMode 启动事件驱动模式
func (s *Service) startEventDrivenMode(ctx context.Context) error {
	s.logger.Info("Starting event-driven mode")

	// 首次执行一次全量聚合
	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("Failed to generate dashboard on startup", zap.Error(err))
	}

	// 启动事件消费者（阻塞）
	if s.eventConsumer != nil {
		return s.eventConsumer.Start(ctx)
	}

	return fmt.Errorf("event consumer not initialized")
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("Stopping MDT readiness aggregator")

	// 关闭 Redis
	if s.redisClient != nil {
		if err := rediscommon.Close(s.redisClient); err != nil {
			s.logger.Error("Error closing redis connection", zap.Error(err))
		}
	}

	// 关闭病理数据库
	if s.db != nil {
		if err := repository.Close(s.db); err != nil {
			s.logger.Error("Error closing database connection", zap.Error(err))
		}
	}

	s.logger.Info("MDT readiness aggregator stopped")
	return nil
}
