package repository

import (
	"context"
	"encoding/json"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
)

// ConfigsRepository 配置文档Repository接口
type ConfigsRepository interface {
	// CreateConfig 创建配置文档
	// 同一事务内写入 configs 行（current_version=1）和第一条版本快照
	CreateConfig(ctx context.Context, cfg *domain.ConfigDocument) (string, error)

	// GetConfig 获取配置文档
	GetConfig(ctx context.Context, configID string) (*domain.ConfigDocument, error)

	// ListConfigs 按配置域列出配置文档（configType 为空 = 全部）
	ListConfigs(ctx context.Context, configType domain.ConfigType, page, size int) ([]*domain.ConfigDocument, int, error)

	// DeleteConfig 删除配置文档（级联删除版本历史和映射）
	DeleteConfig(ctx context.Context, configID string) error

	// SnapshotConfig 编辑配置：同一事务内更新工作内容、current_version+1、
	// 写入新版本快照并按 retention 裁剪最旧的多余快照。
	// 裁剪永远不会删除 published_version 对应的快照。
	// 返回新分配的版本号。
	SnapshotConfig(ctx context.Context, configID string, content json.RawMessage, retention int) (int, error)

	// PublishVersion 将 published_version 指向一个已存在的版本快照
	// 版本不存在时返回 domain.ErrVersionNotFound；重复发布同一版本是幂等的
	PublishVersion(ctx context.Context, configID string, version int) error
}
