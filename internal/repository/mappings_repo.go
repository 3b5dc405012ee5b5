package repository

import (
	"context"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
)

// MappingFilters 映射查询过滤器
type MappingFilters struct {
	ServerID   string
	ConfigID   string
	ConfigType domain.ConfigType
	LiveOnly   bool
}

// ResolveCandidate 解析候选：live 映射与其配置的已发布版本指针的联表投影
type ResolveCandidate struct {
	MappingID        string
	ConfigID         string
	ConfigName       string
	OffsetMinutes    *int // NULL = base 映射
	PublishedVersion int
}

// MappingsRepository 服务器-配置映射Repository接口
type MappingsRepository interface {
	// GetMapping 获取映射
	GetMapping(ctx context.Context, mappingID string) (*domain.ServerMapping, error)

	// ListMappings 查询映射列表
	ListMappings(ctx context.Context, filters MappingFilters, page, size int) ([]*domain.ServerMapping, int, error)

	// CreateMapping 创建映射；违反 base 映射唯一约束时返回 domain.ErrDuplicateBaseMapping
	CreateMapping(ctx context.Context, m *domain.ServerMapping) (string, error)

	// UpdateMapping 更新映射的 is_live / offset_minutes / config_id
	UpdateMapping(ctx context.Context, mappingID string, m *domain.ServerMapping) error

	// DeleteMapping 删除映射
	DeleteMapping(ctx context.Context, mappingID string) error

	// ListResolveCandidates 下载解析的读路径：
	// 该服务器该配置域下 is_live 且所属配置已发布的全部映射，
	// 按 offset 升序（base 映射排最前）保证稳定迭代顺序
	ListResolveCandidates(ctx context.Context, serverID string, configType domain.ConfigType) ([]*ResolveCandidate, error)
}
