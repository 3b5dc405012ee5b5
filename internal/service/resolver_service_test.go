package service

import (
	"context"
	"testing"
	"time"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/repository"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func intPtr(i int) *int { return &i }

func durPtr(d time.Duration) *time.Duration { return &d }

func candidate(configID string, offset *int, version int) *repository.ResolveCandidate {
	return &repository.ResolveCandidate{
		MappingID:        "map-" + configID,
		ConfigID:         configID,
		ConfigName:       "name-" + configID,
		OffsetMinutes:    offset,
		PublishedVersion: version,
	}
}

func TestPickCandidate_LatestReachedMilestone(t *testing.T) {
	// offsets: base, 0m, 360m, 1440m
	cands := []*repository.ResolveCandidate{
		candidate("base", nil, 1),
		candidate("t0", intPtr(0), 1),
		candidate("t360", intPtr(360), 1),
		candidate("t1440", intPtr(1440), 1),
	}

	// elapsed 500m：已到达的里程碑是 0 和 360，取 360（不是离 500 更近的 1440）
	selected, upcoming, err := pickCandidate(cands, durPtr(500*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "t360", selected.ConfigID)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "t1440", upcoming[0].ConfigID)
}

func TestPickCandidate_ElapsedBeforeAllOffsets(t *testing.T) {
	cands := []*repository.ResolveCandidate{
		candidate("base", nil, 1),
		candidate("t360", intPtr(360), 1),
	}

	// elapsed 10m 小于所有 timed offset，落到 base
	selected, upcoming, err := pickCandidate(cands, durPtr(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "base", selected.ConfigID)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "t360", upcoming[0].ConfigID)
}

func TestPickCandidate_ZeroOffsetMatchesAtWipe(t *testing.T) {
	cands := []*repository.ResolveCandidate{
		candidate("base", nil, 1),
		candidate("t0", intPtr(0), 1),
	}

	selected, _, err := pickCandidate(cands, durPtr(0))
	require.NoError(t, err)
	assert.Equal(t, "t0", selected.ConfigID)
}

func TestPickCandidate_UndefinedElapsedUsesBase(t *testing.T) {
	cands := []*repository.ResolveCandidate{
		candidate("t0", intPtr(0), 1),
		candidate("base", nil, 1),
		candidate("t360", intPtr(360), 1),
	}

	// elapsed 未定义：timed 候选全部不合格，upcoming 列出全部 timed
	selected, upcoming, err := pickCandidate(cands, nil)
	require.NoError(t, err)
	assert.Equal(t, "base", selected.ConfigID)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "t0", upcoming[0].ConfigID)
	assert.Equal(t, "t360", upcoming[1].ConfigID)
}

func TestPickCandidate_OnlyTimedAndUndefinedElapsed(t *testing.T) {
	cands := []*repository.ResolveCandidate{
		candidate("t360", intPtr(360), 1),
	}

	_, _, err := pickCandidate(cands, nil)
	assert.ErrorIs(t, err, domain.ErrNoApplicableMapping)
}

func TestPickCandidate_UpcomingSortedAscending(t *testing.T) {
	cands := []*repository.ResolveCandidate{
		candidate("t1440", intPtr(1440), 1),
		candidate("t360", intPtr(360), 1),
		candidate("t4320", intPtr(4320), 1),
		candidate("t0", intPtr(0), 1),
	}

	selected, upcoming, err := pickCandidate(cands, durPtr(5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "t0", selected.ConfigID)
	require.Len(t, upcoming, 3)
	assert.Equal(t, 360, *upcoming[0].OffsetMinutes)
	assert.Equal(t, 1440, *upcoming[1].OffsetMinutes)
	assert.Equal(t, 4320, *upcoming[2].OffsetMinutes)
}

func setupResolver(t *testing.T, mappings *fakeMappingsRepo, versions *fakeVersionsRepo, wipes *fakeWipesRepo) (*ResolverService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	kv := store.NewRedisKV(client)

	servers := &fakeServersRepo{servers: map[string]*domain.Server{
		"srv-1": {ServerID: "srv-1", ServerName: "US Main", IdentityKey: "key-1", IsActive: true},
	}}

	logger := zap.NewNop()
	cache := NewResolveCache(kv, 30*time.Second, logger)
	return NewResolverService(servers, mappings, versions, wipes, cache, logger), mr
}

func TestResolve_WipeClockDrivesSelection(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mappings := &fakeMappingsRepo{candidates: []*repository.ResolveCandidate{
		candidate("base", nil, 2),
		candidate("t360", intPtr(360), 5),
	}}
	versions := &fakeVersionsRepo{}
	versions.put("base", 2, `{"tier":"base"}`)
	versions.put("t360", 5, `{"tier":"day1"}`)

	// 当前 wipe 开始于 7 小时前，t360 (6h) 已到达
	wipes := &fakeWipesRepo{current: map[string]*domain.ServerWipe{
		"srv-1": {ServerID: "srv-1", WipeNumber: 42, WipedAt: now.Add(-7 * time.Hour)},
	}}

	svc, _ := setupResolver(t, mappings, versions, wipes)

	resolved, err := svc.Resolve(context.Background(), domain.ConfigTypeLoot, "key-1", now, nil)
	require.NoError(t, err)
	assert.Equal(t, "t360", resolved.ConfigID)
	assert.Equal(t, 5, resolved.Version)
	assert.JSONEq(t, `{"tier":"day1"}`, string(resolved.Content))
	assert.Empty(t, resolved.Upcoming)
}

func TestResolve_NoWipeClockFallsBackToBase(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mappings := &fakeMappingsRepo{candidates: []*repository.ResolveCandidate{
		candidate("base", nil, 1),
		candidate("t360", intPtr(360), 1),
	}}
	versions := &fakeVersionsRepo{}
	versions.put("base", 1, `{"tier":"base"}`)

	svc, _ := setupResolver(t, mappings, versions, &fakeWipesRepo{})

	resolved, err := svc.Resolve(context.Background(), domain.ConfigTypeLoot, "key-1", now, nil)
	require.NoError(t, err)
	assert.Equal(t, "base", resolved.ConfigID)
	assert.Nil(t, resolved.OffsetMinutes)
	require.Len(t, resolved.Upcoming, 1)
	assert.Equal(t, 360, resolved.Upcoming[0].OffsetMinutes)
}

func TestResolve_ExplicitWipedAtOverridesClock(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mappings := &fakeMappingsRepo{candidates: []*repository.ResolveCandidate{
		candidate("base", nil, 1),
		candidate("t360", intPtr(360), 3),
	}}
	versions := &fakeVersionsRepo{}
	versions.put("base", 1, `{"tier":"base"}`)
	versions.put("t360", 3, `{"tier":"day1"}`)

	// 登记的 wipe 很久以前；显式参数说 wipe 刚发生 10 分钟
	wipes := &fakeWipesRepo{current: map[string]*domain.ServerWipe{
		"srv-1": {ServerID: "srv-1", WipeNumber: 1, WipedAt: now.Add(-100 * time.Hour)},
	}}

	svc, _ := setupResolver(t, mappings, versions, wipes)

	wipedAt := now.Add(-10 * time.Minute)
	resolved, err := svc.Resolve(context.Background(), domain.ConfigTypeLoot, "key-1", now, &wipedAt)
	require.NoError(t, err)
	assert.Equal(t, "base", resolved.ConfigID)
}

func TestResolve_CacheHitSkipsSecondLookup(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mappings := &fakeMappingsRepo{candidates: []*repository.ResolveCandidate{
		candidate("base", nil, 1),
	}}
	versions := &fakeVersionsRepo{}
	versions.put("base", 1, `{"tier":"base"}`)

	svc, _ := setupResolver(t, mappings, versions, &fakeWipesRepo{})

	first, err := svc.Resolve(context.Background(), domain.ConfigTypeShop, "key-1", now, nil)
	require.NoError(t, err)

	second, err := svc.Resolve(context.Background(), domain.ConfigTypeShop, "key-1", now, nil)
	require.NoError(t, err)

	assert.Equal(t, first.ConfigID, second.ConfigID)
	assert.Equal(t, 1, mappings.resolveCalls)
}

func TestResolve_ExplicitWipedAtBypassesCache(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mappings := &fakeMappingsRepo{candidates: []*repository.ResolveCandidate{
		candidate("base", nil, 1),
	}}
	versions := &fakeVersionsRepo{}
	versions.put("base", 1, `{"tier":"base"}`)

	svc, _ := setupResolver(t, mappings, versions, &fakeWipesRepo{})

	wipedAt := now.Add(-time.Hour)
	_, err := svc.Resolve(context.Background(), domain.ConfigTypeLoot, "key-1", now, &wipedAt)
	require.NoError(t, err)
	_, err = svc.Resolve(context.Background(), domain.ConfigTypeLoot, "key-1", now, &wipedAt)
	require.NoError(t, err)

	assert.Equal(t, 2, mappings.resolveCalls)
}

func TestResolve_UnknownServerKey(t *testing.T) {
	svc, _ := setupResolver(t, &fakeMappingsRepo{}, &fakeVersionsRepo{}, &fakeWipesRepo{})

	_, err := svc.Resolve(context.Background(), domain.ConfigTypeLoot, "nope", time.Now(), nil)
	assert.ErrorIs(t, err, domain.ErrServerNotFound)
}

func TestResolve_NoLiveConfig(t *testing.T) {
	svc, _ := setupResolver(t, &fakeMappingsRepo{}, &fakeVersionsRepo{}, &fakeWipesRepo{})

	_, err := svc.Resolve(context.Background(), domain.ConfigTypeLoot, "key-1", time.Now(), nil)
	assert.ErrorIs(t, err, domain.ErrNoLiveConfig)
}

func TestResolve_MissingSnapshotIsTypedError(t *testing.T) {
	mappings := &fakeMappingsRepo{candidates: []*repository.ResolveCandidate{
		candidate("base", nil, 7),
	}}
	// versions repo 里没有 base v7 的快照
	svc, _ := setupResolver(t, mappings, &fakeVersionsRepo{}, &fakeWipesRepo{})

	_, err := svc.Resolve(context.Background(), domain.ConfigTypeLoot, "key-1", time.Now(), nil)
	assert.ErrorIs(t, err, domain.ErrPublishedVersionMissing)
}
