package repository

import (
	"context"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
)

// WipesRepository 服务器 wipe 记录Repository接口
type WipesRepository interface {
	// RegisterWipe 登记新 wipe：同一事务内把当前打开的 wipe 行 ended_at 置为
	// 新行的 wiped_at，再插入新行。
	// (server_id, wipe_number) 已存在时返回 domain.ErrDuplicateWipeNumber，
	// 且不改动已有记录。
	RegisterWipe(ctx context.Context, w *domain.ServerWipe) (string, error)

	// CurrentWipe 获取当前打开的 wipe（ended_at IS NULL）
	CurrentWipe(ctx context.Context, serverID string) (*domain.ServerWipe, error)

	// ListWipes 按时间倒序列出 wipe 历史
	ListWipes(ctx context.Context, serverID string, page, size int) ([]*domain.ServerWipe, int, error)
}
