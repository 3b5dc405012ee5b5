package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/repository"
)

// 服务层测试用的内存 repo 替身（repository 的 SQL 行为有自己的 sqlmock 测试）

type fakeServersRepo struct {
	servers map[string]*domain.Server // by server_id
}

func (f *fakeServersRepo) CreateServer(ctx context.Context, s *domain.Server) (string, error) {
	if f.servers == nil {
		f.servers = map[string]*domain.Server{}
	}
	if s.ServerID == "" {
		s.ServerID = "srv-" + s.ServerName
	}
	f.servers[s.ServerID] = s
	return s.ServerID, nil
}

func (f *fakeServersRepo) GetServer(ctx context.Context, serverID string) (*domain.Server, error) {
	if s, ok := f.servers[serverID]; ok {
		return s, nil
	}
	return nil, domain.ErrServerNotFound
}

func (f *fakeServersRepo) GetServerByKey(ctx context.Context, identityKey string) (*domain.Server, error) {
	for _, s := range f.servers {
		if s.IdentityKey == identityKey {
			return s, nil
		}
	}
	return nil, domain.ErrServerNotFound
}

func (f *fakeServersRepo) ListServers(ctx context.Context, filters repository.ServerFilters, page, size int) ([]*domain.Server, int, error) {
	out := make([]*domain.Server, 0, len(f.servers))
	for _, s := range f.servers {
		out = append(out, s)
	}
	return out, len(out), nil
}

type fakeMappingsRepo struct {
	candidates   []*repository.ResolveCandidate
	resolveCalls int
}

func (f *fakeMappingsRepo) GetMapping(ctx context.Context, mappingID string) (*domain.ServerMapping, error) {
	return nil, domain.ErrMappingNotFound
}

func (f *fakeMappingsRepo) ListMappings(ctx context.Context, filters repository.MappingFilters, page, size int) ([]*domain.ServerMapping, int, error) {
	return nil, 0, nil
}

func (f *fakeMappingsRepo) CreateMapping(ctx context.Context, m *domain.ServerMapping) (string, error) {
	return "map-1", nil
}

func (f *fakeMappingsRepo) UpdateMapping(ctx context.Context, mappingID string, m *domain.ServerMapping) error {
	return nil
}

func (f *fakeMappingsRepo) DeleteMapping(ctx context.Context, mappingID string) error {
	return nil
}

func (f *fakeMappingsRepo) ListResolveCandidates(ctx context.Context, serverID string, configType domain.ConfigType) ([]*repository.ResolveCandidate, error) {
	f.resolveCalls++
	return f.candidates, nil
}

type fakeVersionsRepo struct {
	snapshots map[string]*domain.VersionSnapshot // key = configID:version
}

func versionKey(configID string, version int) string {
	return fmt.Sprintf("%s:%d", configID, version)
}

func (f *fakeVersionsRepo) put(configID string, version int, content string) {
	if f.snapshots == nil {
		f.snapshots = map[string]*domain.VersionSnapshot{}
	}
	f.snapshots[versionKey(configID, version)] = &domain.VersionSnapshot{
		ConfigID: configID,
		Version:  version,
		Content:  json.RawMessage(content),
	}
}

func (f *fakeVersionsRepo) GetVersion(ctx context.Context, configID string, version int) (*domain.VersionSnapshot, error) {
	if s, ok := f.snapshots[versionKey(configID, version)]; ok {
		return s, nil
	}
	return nil, domain.ErrVersionNotFound
}

func (f *fakeVersionsRepo) ListVersions(ctx context.Context, configID string, page, size int) ([]*domain.VersionSnapshot, int, error) {
	return nil, 0, nil
}

type fakeWipesRepo struct {
	current map[string]*domain.ServerWipe // by server_id
}

func (f *fakeWipesRepo) RegisterWipe(ctx context.Context, w *domain.ServerWipe) (string, error) {
	if f.current == nil {
		f.current = map[string]*domain.ServerWipe{}
	}
	if prev, ok := f.current[w.ServerID]; ok {
		if prev.WipeNumber == w.WipeNumber {
			return "", domain.ErrDuplicateWipeNumber
		}
		ended := w.WipedAt
		prev.EndedAt = &ended
	}
	w.WipeID = "wipe-1"
	f.current[w.ServerID] = w
	return w.WipeID, nil
}

func (f *fakeWipesRepo) CurrentWipe(ctx context.Context, serverID string) (*domain.ServerWipe, error) {
	if w, ok := f.current[serverID]; ok {
		return w, nil
	}
	return nil, domain.ErrWipeNotFound
}

func (f *fakeWipesRepo) ListWipes(ctx context.Context, serverID string, page, size int) ([]*domain.ServerWipe, int, error) {
	return nil, 0, nil
}

type fakeSchedulesRepo struct {
	schedules []*domain.WipeSchedule
}

func (f *fakeSchedulesRepo) ListSchedules(ctx context.Context, serverID string, activeOnly bool) ([]*domain.WipeSchedule, error) {
	out := make([]*domain.WipeSchedule, 0, len(f.schedules))
	for _, s := range f.schedules {
		if s.ServerID != serverID {
			continue
		}
		if activeOnly && !s.IsActive {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSchedulesRepo) CreateSchedule(ctx context.Context, s *domain.WipeSchedule) (string, error) {
	s.ScheduleID = "sched-1"
	f.schedules = append(f.schedules, s)
	return s.ScheduleID, nil
}

func (f *fakeSchedulesRepo) DeleteSchedule(ctx context.Context, scheduleID string) error {
	return nil
}

type fakeAuthRepo struct {
	users map[string]*domain.AdminUser // by account
}

func (f *fakeAuthRepo) GetUserByAccount(ctx context.Context, account string) (*domain.AdminUser, error) {
	if u, ok := f.users[account]; ok {
		return u, nil
	}
	return nil, domain.ErrUnauthorized
}

func (f *fakeAuthRepo) UpsertUser(ctx context.Context, account string, passwordHash []byte, role string) error {
	if f.users == nil {
		f.users = map[string]*domain.AdminUser{}
	}
	f.users[account] = &domain.AdminUser{
		UserID:       "user-" + account,
		Account:      account,
		PasswordHash: passwordHash,
		Role:         role,
		Status:       "active",
	}
	return nil
}

var _ repository.ServersRepository = (*fakeServersRepo)(nil)
var _ repository.MappingsRepository = (*fakeMappingsRepo)(nil)
var _ repository.VersionsRepository = (*fakeVersionsRepo)(nil)
var _ repository.WipesRepository = (*fakeWipesRepo)(nil)
var _ repository.SchedulesRepository = (*fakeSchedulesRepo)(nil)
var _ repository.AuthRepository = (*fakeAuthRepo)(nil)
