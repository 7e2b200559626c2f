package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mdt-readiness-aggregator/internal/config"
	"mdt-readiness-aggregator/internal/models"
)

const (
	dashboardCacheKey       = "mdt-readiness:dashboard:latest"
	patientCacheKeyTemplate = "mdt-readiness:patient:%s:readiness"
)

// CacheManager Redis 缓存管理器（用于就绪快照）
// 下游服务（如会议看板 UI）读取这些快照，避免重复聚合
type CacheManager struct {
	config *config.Config
	kv     KVStore
	logger *zap.Logger
}

// NewCacheManager 创建缓存管理器
func NewCacheManager(
	cfg *config.Config,
	kv KVStore,
	logger *zap.Logger,
) *CacheManager {
	return &CacheManager{
		config: cfg,
		kv:     kv,
		logger: logger,
	}
}

// UpdateDashboardCache 更新最新仪表板快照
func (c *CacheManager) UpdateDashboardCache(ctx context.Context, dashboard *models.RosterDashboard) error {
	// 序列化数据
	jsonData, err := json.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard: %w", err)
	}

	// 写入 Redis（TTL 来自配置）
	ttl := time.Duration(c.config.Cache.TTL) * time.Second
	if err := c.kv.Set(ctx, dashboardCacheKey, string(jsonData), ttl); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	c.logger.Debug("Updated dashboard cache",
		zap.String("key", dashboardCacheKey),
		zap.Int("total_patients", dashboard.Summary.TotalPatients),
	)

	return nil
}

// UpdatePatientCache 更新单个患者的就绪快照
func (c *CacheManager) UpdatePatientCache(ctx context.Context, readiness *models.PatientReadiness) error {
	key := fmt.Sprintf(patientCacheKeyTemplate, readiness.PatientID)

	jsonData, err := json.Marshal(readiness)
	if err != nil {
		return fmt.Errorf("failed to marshal patient readiness: %w", err)
	}

	ttl := time.Duration(c.config.Cache.TTL) * time.Second
	if err := c.kv.Set(ctx, key, string(jsonData), ttl); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	c.logger.Debug("Updated patient readiness cache",
		zap.String("patient_id", readiness.PatientID),
		zap.String("key", key),
	)

	return nil
}
