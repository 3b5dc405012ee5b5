package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/repository"

	"go.uber.org/zap"
)

// AuditService 审计日志服务（fire-and-forget：写失败只记日志）
type AuditService struct {
	repo   repository.AuditRepository
	logger *zap.Logger
}

// NewAuditService 创建审计服务；repo 为 nil 时 Record 为 no-op
func NewAuditService(repo repository.AuditRepository, logger *zap.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

// Record 追加一条审计记录，异步写入
func (s *AuditService) Record(actor domain.Actor, entityType, entityID, action string, before, after any) {
	if s == nil || s.repo == nil {
		return
	}

	entry := &domain.AuditEntry{
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actor.UserID,
		Action:     action,
	}
	if before != nil {
		if b, err := json.Marshal(before); err == nil {
			entry.Before = b
		}
	}
	if after != nil {
		if a, err := json.Marshal(after); err == nil {
			entry.After = a
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.repo.InsertAudit(ctx, entry); err != nil {
			s.logger.Warn("audit write failed",
				zap.String("entity_type", entityType),
				zap.String("entity_id", entityID),
				zap.String("action", action),
				zap.Error(err))
		}
	}()
}
