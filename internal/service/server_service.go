package service

import (
	"context"
	"fmt"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ServerService 游戏服务器登记管理
type ServerService struct {
	servers repository.ServersRepository

	audit  *AuditService
	logger *zap.Logger
}

// NewServerService 创建服务器服务
func NewServerService(servers repository.ServersRepository, audit *AuditService, logger *zap.Logger) *ServerService {
	return &ServerService{servers: servers, audit: audit, logger: logger}
}

// CreateServer 登记服务器；identity_key 不由调用方指定，服务端生成后
// 下发给插件侧配置（只在创建响应里回显一次的做法由前端约定）
func (s *ServerService) CreateServer(ctx context.Context, actor domain.Actor, name, region string) (*domain.Server, error) {
	if name == "" {
		return nil, fmt.Errorf("server_name is required")
	}

	srv := &domain.Server{
		ServerName:  name,
		IdentityKey: uuid.NewString(),
		Region:      region,
		IsActive:    true,
	}
	serverID, err := s.servers.CreateServer(ctx, srv)
	if err != nil {
		return nil, err
	}
	srv.ServerID = serverID

	s.logger.Info("server registered",
		zap.String("server_id", serverID),
		zap.String("server_name", name))
	s.audit.Record(actor, "server", serverID, "create", nil, srv)
	return srv, nil
}

// GetServer 按ID获取服务器
func (s *ServerService) GetServer(ctx context.Context, serverID string) (*domain.Server, error) {
	return s.servers.GetServer(ctx, serverID)
}

// ListServers 查询服务器列表
func (s *ServerService) ListServers(ctx context.Context, filters repository.ServerFilters, page, size int) ([]*domain.Server, int, error) {
	return s.servers.ListServers(ctx, filters, page, size)
}
