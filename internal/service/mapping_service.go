package service

import (
	"context"
	"fmt"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/repository"

	"go.uber.org/zap"
)

// MappingService 服务器-配置映射管理
// 映射永远针对所指配置"当前已发布"的版本解析，不钉死版本号
type MappingService struct {
	mappings repository.MappingsRepository
	servers  repository.ServersRepository

	cache  *ResolveCache
	audit  *AuditService
	logger *zap.Logger
}

// NewMappingService 创建映射服务
func NewMappingService(
	mappings repository.MappingsRepository,
	servers repository.ServersRepository,
	cache *ResolveCache,
	audit *AuditService,
	logger *zap.Logger,
) *MappingService {
	return &MappingService{
		mappings: mappings,
		servers:  servers,
		cache:    cache,
		audit:    audit,
		logger:   logger,
	}
}

// ListMappings 查询映射列表
func (s *MappingService) ListMappings(ctx context.Context, filters repository.MappingFilters, page, size int) ([]*domain.ServerMapping, int, error) {
	return s.mappings.ListMappings(ctx, filters, page, size)
}

// GetMapping 获取映射
func (s *MappingService) GetMapping(ctx context.Context, mappingID string) (*domain.ServerMapping, error) {
	return s.mappings.GetMapping(ctx, mappingID)
}

// CreateMapping 创建映射
func (s *MappingService) CreateMapping(ctx context.Context, actor domain.Actor, m *domain.ServerMapping) (*domain.ServerMapping, error) {
	if m.OffsetMinutes != nil && *m.OffsetMinutes < 0 {
		return nil, fmt.Errorf("offset_minutes must be >= 0")
	}
	if _, err := s.servers.GetServer(ctx, m.ServerID); err != nil {
		return nil, err
	}

	mappingID, err := s.mappings.CreateMapping(ctx, m)
	if err != nil {
		return nil, err
	}

	created, err := s.mappings.GetMapping(ctx, mappingID)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateType(ctx, created.ConfigType)
	s.audit.Record(actor, "mapping", mappingID, "create", nil, created)
	return created, nil
}

// UpdateMapping 更新映射
func (s *MappingService) UpdateMapping(ctx context.Context, actor domain.Actor, mappingID string, m *domain.ServerMapping) (*domain.ServerMapping, error) {
	if m.OffsetMinutes != nil && *m.OffsetMinutes < 0 {
		return nil, fmt.Errorf("offset_minutes must be >= 0")
	}

	before, err := s.mappings.GetMapping(ctx, mappingID)
	if err != nil {
		return nil, err
	}

	if err := s.mappings.UpdateMapping(ctx, mappingID, m); err != nil {
		return nil, err
	}

	after, err := s.mappings.GetMapping(ctx, mappingID)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateType(ctx, before.ConfigType)
	if after.ConfigType != before.ConfigType {
		s.cache.InvalidateType(ctx, after.ConfigType)
	}
	s.audit.Record(actor, "mapping", mappingID, "update", before, after)
	return after, nil
}

// DeleteMapping 删除映射
func (s *MappingService) DeleteMapping(ctx context.Context, actor domain.Actor, mappingID string) error {
	before, err := s.mappings.GetMapping(ctx, mappingID)
	if err != nil {
		return err
	}

	if err := s.mappings.DeleteMapping(ctx, mappingID); err != nil {
		return err
	}

	s.cache.InvalidateType(ctx, before.ConfigType)
	s.audit.Record(actor, "mapping", mappingID, "delete", before, nil)
	return nil
}

// ServerScheduleRow 导出用：一台服务器在一个配置域的完整排期行
type ServerScheduleRow struct {
	ServerName    string
	ServerID      string
	ConfigType    domain.ConfigType
	ConfigID      string
	IsLive        bool
	OffsetMinutes *int
}

// FleetSchedule 导出用：全量映射排期（按 server/type/offset 稳定排序）
func (s *MappingService) FleetSchedule(ctx context.Context) ([]ServerScheduleRow, error) {
	servers, _, err := s.servers.ListServers(ctx, repository.ServerFilters{}, 1, 10000)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]string, len(servers))
	for _, sv := range servers {
		byID[sv.ServerID] = sv.ServerName
	}

	mappings, _, err := s.mappings.ListMappings(ctx, repository.MappingFilters{}, 1, 10000)
	if err != nil {
		return nil, err
	}

	rows := make([]ServerScheduleRow, 0, len(mappings))
	for _, m := range mappings {
		rows = append(rows, ServerScheduleRow{
			ServerName:    byID[m.ServerID],
			ServerID:      m.ServerID,
			ConfigType:    m.ConfigType,
			ConfigID:      m.ConfigID,
			IsLive:        m.IsLive,
			OffsetMinutes: m.OffsetMinutes,
		})
	}
	return rows, nil
}
