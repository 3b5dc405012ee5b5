package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/repository"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/stream"

	"go.uber.org/zap"
)

// VersionService 配置文档的版本存储与发布
// 三个配置域（loot/shop/base）共用这一个引擎，版本与裁剪不变量只在这里维护
type VersionService struct {
	configs  repository.ConfigsRepository
	versions repository.VersionsRepository

	cache    *ResolveCache
	events   *stream.Publisher
	notifier *WebhookNotifier
	audit    *AuditService

	retention int
	logger    *zap.Logger
}

// NewVersionService 创建版本服务
func NewVersionService(
	configs repository.ConfigsRepository,
	versions repository.VersionsRepository,
	cache *ResolveCache,
	events *stream.Publisher,
	notifier *WebhookNotifier,
	audit *AuditService,
	retention int,
	logger *zap.Logger,
) *VersionService {
	if retention <= 0 {
		retention = domain.DefaultRetentionLimit
	}
	return &VersionService{
		configs:   configs,
		versions:  versions,
		cache:     cache,
		events:    events,
		notifier:  notifier,
		audit:     audit,
		retention: retention,
		logger:    logger,
	}
}

// CreateConfig 创建配置文档（version 1 + 第一条快照，原子）
func (s *VersionService) CreateConfig(ctx context.Context, actor domain.Actor, configType domain.ConfigType, name, description string, content json.RawMessage) (*domain.ConfigDocument, error) {
	if !configType.Valid() {
		return nil, fmt.Errorf("invalid config type %q", configType)
	}
	if name == "" {
		return nil, fmt.Errorf("config name is required")
	}

	cfg := &domain.ConfigDocument{
		ConfigType:  configType,
		ConfigName:  name,
		Description: description,
		Content:     content,
	}
	configID, err := s.configs.CreateConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create config: %w", err)
	}

	created, err := s.configs.GetConfig(ctx, configID)
	if err != nil {
		return nil, fmt.Errorf("create config: %w", err)
	}

	s.audit.Record(actor, "config", configID, "create", nil, created)
	return created, nil
}

// EditConfig 编辑配置内容：分配下一个版本号并写入快照
func (s *VersionService) EditConfig(ctx context.Context, actor domain.Actor, configID string, content json.RawMessage) (int, error) {
	before, err := s.configs.GetConfig(ctx, configID)
	if err != nil {
		return 0, err
	}

	version, err := s.configs.SnapshotConfig(ctx, configID, content, s.retention)
	if err != nil {
		return 0, fmt.Errorf("snapshot config %s: %w", configID, err)
	}

	s.logger.Info("config edited",
		zap.String("config_id", configID),
		zap.Int("version", version))
	s.audit.Record(actor, "config", configID, "update", before, map[string]any{"version": version})
	return version, nil
}

// DeleteConfig 删除配置文档（级联清掉版本历史和映射）
func (s *VersionService) DeleteConfig(ctx context.Context, actor domain.Actor, configID string) error {
	before, err := s.configs.GetConfig(ctx, configID)
	if err != nil {
		return err
	}

	if err := s.configs.DeleteConfig(ctx, configID); err != nil {
		return fmt.Errorf("delete config %s: %w", configID, err)
	}

	// 引用该配置的映射已被级联删除，解析结果随之改变
	s.cache.InvalidateType(ctx, before.ConfigType)
	s.audit.Record(actor, "config", configID, "delete", before, nil)
	return nil
}

// GetConfig 获取配置文档
func (s *VersionService) GetConfig(ctx context.Context, configID string) (*domain.ConfigDocument, error) {
	return s.configs.GetConfig(ctx, configID)
}

// ListConfigs 列出配置文档
func (s *VersionService) ListConfigs(ctx context.Context, configType domain.ConfigType, page, size int) ([]*domain.ConfigDocument, int, error) {
	return s.configs.ListConfigs(ctx, configType, page, size)
}

// ListVersions 列出版本历史
func (s *VersionService) ListVersions(ctx context.Context, configID string, page, size int) ([]*domain.VersionSnapshot, int, error) {
	return s.versions.ListVersions(ctx, configID, page, size)
}

// GetVersion 获取指定版本快照
func (s *VersionService) GetVersion(ctx context.Context, configID string, version int) (*domain.VersionSnapshot, error) {
	return s.versions.GetVersion(ctx, configID, version)
}

// Publish 把 published_version 指向指定版本
// 回滚 = 发布一个更老的已有版本号；重复发布同一版本幂等成功
func (s *VersionService) Publish(ctx context.Context, actor domain.Actor, configID string, version int) error {
	cfg, err := s.configs.GetConfig(ctx, configID)
	if err != nil {
		return err
	}

	if cfg.PublishedVersion != nil && *cfg.PublishedVersion == version {
		// 幂等：已经是这个版本
		return nil
	}

	if err := s.configs.PublishVersion(ctx, configID, version); err != nil {
		return err
	}

	s.logger.Info("config published",
		zap.String("config_id", configID),
		zap.String("config_type", string(cfg.ConfigType)),
		zap.Int("version", version))

	s.cache.InvalidateType(ctx, cfg.ConfigType)
	s.events.Publish(ctx, stream.Event{
		Kind:       "config.published",
		ConfigID:   configID,
		ConfigType: string(cfg.ConfigType),
		Version:    version,
		ActorID:    actor.UserID,
	})
	s.notifier.NotifyPublish(string(cfg.ConfigType), cfg.ConfigName, version, actor.UserID)
	s.audit.Record(actor, "config", configID, "publish",
		map[string]any{"published_version": cfg.PublishedVersion},
		map[string]any{"published_version": version})
	return nil
}
