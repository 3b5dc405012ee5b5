package repository

import (
	"context"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
)

// VersionsRepository 版本快照Repository接口（只读；写入发生在 ConfigsRepository 的事务里）
type VersionsRepository interface {
	// GetVersion 获取指定版本快照
	GetVersion(ctx context.Context, configID string, version int) (*domain.VersionSnapshot, error)

	// ListVersions 按版本号倒序列出某配置的版本历史
	ListVersions(ctx context.Context, configID string, page, size int) ([]*domain.VersionSnapshot, int, error)
}
