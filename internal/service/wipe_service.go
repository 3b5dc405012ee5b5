package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/repository"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/stream"

	"go.uber.org/zap"
)

// WipeService wipe 登记与查询
type WipeService struct {
	wipes   repository.WipesRepository
	servers repository.ServersRepository

	cache    *ResolveCache
	events   *stream.Publisher
	notifier *WebhookNotifier
	audit    *AuditService

	logger *zap.Logger
}

// NewWipeService 创建 wipe 服务
func NewWipeService(
	wipes repository.WipesRepository,
	servers repository.ServersRepository,
	cache *ResolveCache,
	events *stream.Publisher,
	notifier *WebhookNotifier,
	audit *AuditService,
	logger *zap.Logger,
) *WipeService {
	return &WipeService{
		wipes:    wipes,
		servers:  servers,
		cache:    cache,
		events:   events,
		notifier: notifier,
		audit:    audit,
		logger:   logger,
	}
}

// RegisterWipe 登记新 wipe（关旧开新，单事务；重复序号拒绝且不改动旧记录）
func (s *WipeService) RegisterWipe(ctx context.Context, actor domain.Actor, serverID string, wipeNumber int, wipedAt time.Time, metadata json.RawMessage) (*domain.ServerWipe, error) {
	if wipeNumber < 1 {
		return nil, fmt.Errorf("wipe number must be >= 1")
	}

	server, err := s.servers.GetServer(ctx, serverID)
	if err != nil {
		return nil, err
	}

	w := &domain.ServerWipe{
		ServerID:   serverID,
		WipeNumber: wipeNumber,
		WipedAt:    wipedAt,
		Metadata:   metadata,
	}
	wipeID, err := s.wipes.RegisterWipe(ctx, w)
	if err != nil {
		return nil, err
	}
	w.WipeID = wipeID

	s.logger.Info("wipe registered",
		zap.String("server_id", serverID),
		zap.Int("wipe_number", wipeNumber))

	// elapsed 基准变了，这台服务器的解析结果立即失效
	s.cache.InvalidateServer(ctx, server.IdentityKey)
	s.events.Publish(ctx, stream.Event{
		Kind:       "wipe.registered",
		ServerID:   serverID,
		WipeNumber: wipeNumber,
		ActorID:    actor.UserID,
	})
	s.notifier.NotifyWipe(server.ServerName, wipeNumber)
	s.audit.Record(actor, "wipe", wipeID, "register", nil, w)
	return w, nil
}

// CurrentWipe 当前打开的 wipe
func (s *WipeService) CurrentWipe(ctx context.Context, serverID string) (*domain.ServerWipe, error) {
	return s.wipes.CurrentWipe(ctx, serverID)
}

// ListWipes wipe 历史
func (s *WipeService) ListWipes(ctx context.Context, serverID string, page, size int) ([]*domain.ServerWipe, int, error) {
	return s.wipes.ListWipes(ctx, serverID, page, size)
}
