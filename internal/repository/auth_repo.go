package repository

import (
	"context"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
)

// AuthRepository 后台管理用户Repository接口
type AuthRepository interface {
	// GetUserByAccount 按账号获取用户
	GetUserByAccount(ctx context.Context, account string) (*domain.AdminUser, error)

	// UpsertUser 创建或更新用户（开发环境 sysadmin 引导用）
	UpsertUser(ctx context.Context, account string, passwordHash []byte, role string) error
}

// AuditRepository 审计日志Repository接口（只追加）
type AuditRepository interface {
	InsertAudit(ctx context.Context, e *domain.AuditEntry) error
}
