package repository

import (
	"context"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
)

// SchedulesRepository wipe 排期Repository接口
type SchedulesRepository interface {
	// ListSchedules 列出某服务器的排期，按 (day,hour,minute,schedule_id) 稳定排序
	ListSchedules(ctx context.Context, serverID string, activeOnly bool) ([]*domain.WipeSchedule, error)

	// CreateSchedule 创建排期；活跃排期 (day,hour,minute) 冲突时返回
	// domain.ErrDuplicateScheduleSlot
	CreateSchedule(ctx context.Context, s *domain.WipeSchedule) (string, error)

	// DeleteSchedule 删除排期
	DeleteSchedule(ctx context.Context, scheduleID string) error
}
