package service

import (
	"context"
	"testing"
	"time"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func schedule(day, hour, minute int, wipeType domain.WipeType) *domain.WipeSchedule {
	return &domain.WipeSchedule{
		ScheduleID: "sched-test",
		ServerID:   "srv-1",
		DayOfWeek:  day,
		Hour:       hour,
		Minute:     minute,
		WipeType:   wipeType,
		IsActive:   true,
	}
}

func TestNextOccurrence_LaterThisWeek(t *testing.T) {
	// 2026-03-03 是周二
	now := time.Date(2026, 3, 3, 10, 0, 0, 0, wipeZone)
	s := schedule(4, 18, 0, domain.WipeTypeRegular) // 周四 18:00

	occ := NextOccurrence(s, now)
	assert.Equal(t, time.Date(2026, 3, 5, 18, 0, 0, 0, wipeZone), occ)
}

func TestNextOccurrence_ExactMinuteIsNow(t *testing.T) {
	// now 恰好落在排期分钟上（含秒数）：返回当前分钟，不跳下周
	now := time.Date(2026, 3, 5, 18, 0, 42, 0, wipeZone)
	s := schedule(4, 18, 0, domain.WipeTypeRegular)

	occ := NextOccurrence(s, now)
	assert.Equal(t, time.Date(2026, 3, 5, 18, 0, 0, 0, wipeZone), occ)
}

func TestNextOccurrence_AlreadyPassedWrapsWeek(t *testing.T) {
	now := time.Date(2026, 3, 5, 18, 1, 0, 0, wipeZone)
	s := schedule(4, 18, 0, domain.WipeTypeRegular)

	occ := NextOccurrence(s, now)
	assert.Equal(t, time.Date(2026, 3, 12, 18, 0, 0, 0, wipeZone), occ)
}

func TestNextOccurrence_SameDayEarlierHourWrapsWeek(t *testing.T) {
	now := time.Date(2026, 3, 5, 20, 0, 0, 0, wipeZone)
	s := schedule(4, 18, 30, domain.WipeTypeRegular)

	occ := NextOccurrence(s, now)
	assert.Equal(t, time.Date(2026, 3, 12, 18, 30, 0, 0, wipeZone), occ)
}

func TestIsForcedWipeDay(t *testing.T) {
	// 2026-03-05 是三月第一个周四
	assert.True(t, IsForcedWipeDay(time.Date(2026, 3, 5, 12, 0, 0, 0, wipeZone)))
	// 第二个周四不是
	assert.False(t, IsForcedWipeDay(time.Date(2026, 3, 12, 12, 0, 0, 0, wipeZone)))
	// 同一周的周二不是
	assert.False(t, IsForcedWipeDay(time.Date(2026, 3, 3, 12, 0, 0, 0, wipeZone)))
	// 2026-04-02 是四月第一个周四
	assert.True(t, IsForcedWipeDay(time.Date(2026, 4, 2, 12, 0, 0, 0, wipeZone)))
}

func setupScheduler(schedules ...*domain.WipeSchedule) *WipeScheduler {
	servers := &fakeServersRepo{servers: map[string]*domain.Server{
		"srv-1": {ServerID: "srv-1", ServerName: "US Main", IsActive: true},
	}}
	repo := &fakeSchedulesRepo{schedules: schedules}
	logger := zap.NewNop()
	return NewWipeScheduler(repo, servers, NewAuditService(nil, logger), logger)
}

func TestNextServerWipe_RegularBumpedOffForcedDay(t *testing.T) {
	// 常规周四排期的下一次落在三月第一个周四（强制 wipe 日），顺延一周
	svc := setupScheduler(schedule(4, 18, 0, domain.WipeTypeRegular))
	now := time.Date(2026, 3, 3, 10, 0, 0, 0, wipeZone)

	next, err := svc.NextServerWipe(context.Background(), "srv-1", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 12, 18, 0, 0, 0, wipeZone), next.When)
	assert.Equal(t, domain.WipeTypeRegular, next.Type)
}

func TestNextServerWipe_ForceKeepsForcedDay(t *testing.T) {
	svc := setupScheduler(schedule(4, 18, 0, domain.WipeTypeForce))
	now := time.Date(2026, 3, 3, 10, 0, 0, 0, wipeZone)

	next, err := svc.NextServerWipe(context.Background(), "srv-1", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 5, 18, 0, 0, 0, wipeZone), next.When)
	assert.Equal(t, domain.WipeTypeForce, next.Type)
}

func TestNextServerWipe_EarliestAcrossSchedules(t *testing.T) {
	// 周四常规排期被顺延到 3/12，周五 12:00 的 bp 排期（3/6）反而先到
	thursday := schedule(4, 18, 0, domain.WipeTypeRegular)
	friday := schedule(5, 12, 0, domain.WipeTypeBP)
	friday.ScheduleID = "sched-friday"
	svc := setupScheduler(thursday, friday)
	now := time.Date(2026, 3, 3, 10, 0, 0, 0, wipeZone)

	next, err := svc.NextServerWipe(context.Background(), "srv-1", now)
	require.NoError(t, err)
	assert.Equal(t, "sched-friday", next.ScheduleID)
	assert.Equal(t, time.Date(2026, 3, 6, 12, 0, 0, 0, wipeZone), next.When)
}

func TestNextServerWipe_NoSchedules(t *testing.T) {
	svc := setupScheduler()

	_, err := svc.NextServerWipe(context.Background(), "srv-1", time.Now())
	assert.ErrorIs(t, err, domain.ErrNoSchedule)
}

func TestNextServerWipe_UnknownServer(t *testing.T) {
	svc := setupScheduler()

	_, err := svc.NextServerWipe(context.Background(), "srv-missing", time.Now())
	assert.ErrorIs(t, err, domain.ErrServerNotFound)
}

func TestCreateSchedule_Validation(t *testing.T) {
	svc := setupScheduler()
	actor := domain.Actor{UserID: "u1", Role: "SystemAdmin"}

	cases := []*domain.WipeSchedule{
		{ServerID: "srv-1", DayOfWeek: 7, Hour: 0, Minute: 0, WipeType: domain.WipeTypeRegular},
		{ServerID: "srv-1", DayOfWeek: 0, Hour: 24, Minute: 0, WipeType: domain.WipeTypeRegular},
		{ServerID: "srv-1", DayOfWeek: 0, Hour: 0, Minute: 60, WipeType: domain.WipeTypeRegular},
		{ServerID: "srv-1", DayOfWeek: 0, Hour: 0, Minute: 0, WipeType: "monthly"},
	}
	for _, c := range cases {
		_, err := svc.CreateSchedule(context.Background(), actor, c)
		assert.Error(t, err)
	}

	_, err := svc.CreateSchedule(context.Background(), actor, schedule(4, 18, 0, domain.WipeTypeRegular))
	assert.NoError(t, err)
}
