package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/repository"

	"go.uber.org/zap"
)

// wipeZone 排期计算用的固定时区。
// 线上既有排期全部按这个固定偏移配置，不做夏令时换算；
// 改成真实时区库会让已调好的排期整体漂移一小时。
var wipeZone = time.FixedZone("EST", -5*3600)

// NextWipe nextServerWipe 的结果
type NextWipe struct {
	ScheduleID string          `json:"schedule_id"`
	When       time.Time       `json:"when"`
	Type       domain.WipeType `json:"type"`
}

// WipeScheduler 每周 wipe 排期：推算下一次发生时间，套用强制 wipe 日规则
type WipeScheduler struct {
	schedules repository.SchedulesRepository
	servers   repository.ServersRepository
	audit     *AuditService
	logger    *zap.Logger
}

// NewWipeScheduler 创建排期服务
func NewWipeScheduler(
	schedules repository.SchedulesRepository,
	servers repository.ServersRepository,
	audit *AuditService,
	logger *zap.Logger,
) *WipeScheduler {
	return &WipeScheduler{schedules: schedules, servers: servers, audit: audit, logger: logger}
}

// NextOccurrence 每周 (day,hour,minute) 循环在 now 之后（含 now 所在分钟）
// 的下一次发生时间。now 恰好落在该分钟上时返回当前时刻所在分钟，不跳下周。
func NextOccurrence(s *domain.WipeSchedule, now time.Time) time.Time {
	local := now.In(wipeZone)
	nowMinute := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), 0, 0, wipeZone)

	days := (s.DayOfWeek - int(local.Weekday()) + 7) % 7
	candidate := time.Date(local.Year(), local.Month(), local.Day(), s.Hour, s.Minute, 0, 0, wipeZone).
		AddDate(0, 0, days)

	if candidate.Before(nowMinute) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

// IsForcedWipeDay 是否强制全量 wipe 日：当月第一个周四
func IsForcedWipeDay(date time.Time) bool {
	d := date.In(wipeZone)
	return d.Weekday() == time.Thursday && d.Day() <= 7
}

// NextServerWipe 推算服务器的下一次 wipe。
// 非 force 排期落在强制 wipe 日的那次被顺延到下一周（当周让位给强制 wipe），
// 然后取发生时间最早的排期；同一时刻的并列按 (day,hour,minute,id)
// 的稳定迭代顺序决出。
func (s *WipeScheduler) NextServerWipe(ctx context.Context, serverID string, now time.Time) (*NextWipe, error) {
	if _, err := s.servers.GetServer(ctx, serverID); err != nil {
		return nil, err
	}

	schedules, err := s.schedules.ListSchedules(ctx, serverID, true)
	if err != nil {
		return nil, fmt.Errorf("next wipe for %s: %w", serverID, err)
	}
	if len(schedules) == 0 {
		return nil, domain.ErrNoSchedule
	}

	var best *NextWipe
	for _, sched := range schedules {
		occ := NextOccurrence(sched, now)
		if sched.WipeType != domain.WipeTypeForce && IsForcedWipeDay(occ) {
			occ = occ.AddDate(0, 0, 7)
		}
		if best == nil || occ.Before(best.When) {
			best = &NextWipe{ScheduleID: sched.ScheduleID, When: occ, Type: sched.WipeType}
		}
	}
	return best, nil
}

// ListSchedules 列出排期
func (s *WipeScheduler) ListSchedules(ctx context.Context, serverID string, activeOnly bool) ([]*domain.WipeSchedule, error) {
	return s.schedules.ListSchedules(ctx, serverID, activeOnly)
}

// CreateSchedule 创建排期
func (s *WipeScheduler) CreateSchedule(ctx context.Context, actor domain.Actor, sched *domain.WipeSchedule) (string, error) {
	if sched.DayOfWeek < 0 || sched.DayOfWeek > 6 {
		return "", fmt.Errorf("day_of_week must be 0-6")
	}
	if sched.Hour < 0 || sched.Hour > 23 {
		return "", fmt.Errorf("hour must be 0-23")
	}
	if sched.Minute < 0 || sched.Minute > 59 {
		return "", fmt.Errorf("minute must be 0-59")
	}
	if !sched.WipeType.Valid() {
		return "", fmt.Errorf("invalid wipe type %q", sched.WipeType)
	}
	if _, err := s.servers.GetServer(ctx, sched.ServerID); err != nil {
		return "", err
	}

	scheduleID, err := s.schedules.CreateSchedule(ctx, sched)
	if err != nil {
		return "", err
	}

	s.audit.Record(actor, "schedule", scheduleID, "create", nil, sched)
	return scheduleID, nil
}

// DeleteSchedule 删除排期
func (s *WipeScheduler) DeleteSchedule(ctx context.Context, actor domain.Actor, scheduleID string) error {
	if err := s.schedules.DeleteSchedule(ctx, scheduleID); err != nil {
		return err
	}
	s.audit.Record(actor, "schedule", scheduleID, "delete", nil, nil)
	return nil
}
