package repository

import (
	"context"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
)

// ServerFilters 服务器查询过滤器
type ServerFilters struct {
	Region     string
	ActiveOnly bool
}

// ServersRepository 游戏服务器Repository接口
type ServersRepository interface {
	// CreateServer 注册游戏服务器
	CreateServer(ctx context.Context, s *domain.Server) (string, error)

	// GetServer 按ID获取服务器
	GetServer(ctx context.Context, serverID string) (*domain.Server, error)

	// GetServerByKey 按身份密钥获取服务器（下载鉴权路径）
	GetServerByKey(ctx context.Context, identityKey string) (*domain.Server, error)

	// ListServers 查询服务器列表
	ListServers(ctx context.Context, filters ServerFilters, page, size int) ([]*domain.Server, int, error)
}
