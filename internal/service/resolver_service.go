package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/repository"

	"go.uber.org/zap"
)

// ResolvedConfig 下载解析结果：一份完整物化的配置文档 + 回显元数据
type ResolvedConfig struct {
	ConfigID   string            `json:"config_id"`
	ConfigName string            `json:"config_name"`
	ConfigType domain.ConfigType `json:"config_type"`
	Version    int               `json:"version"`

	// 命中的映射 offset（base 映射时缺省）
	OffsetMinutes *int `json:"offset_minutes,omitempty"`

	Content json.RawMessage `json:"content"`

	// 尚未到达的 timed 映射（offset 严格大于命中者，升序），服务器可预取
	Upcoming []UpcomingEntry `json:"upcoming,omitempty"`
}

// UpcomingEntry 即将生效的 timed 映射
type UpcomingEntry struct {
	ConfigID      string `json:"config_id"`
	ConfigName    string `json:"config_name"`
	OffsetMinutes int    `json:"offset_minutes"`
}

// ResolverService 下载解析：为一台服务器在一个时刻选出唯一的配置+版本
// 高频只读路径；固定输入下必须是纯函数（相同提交态 → 相同输出）
type ResolverService struct {
	servers  repository.ServersRepository
	mappings repository.MappingsRepository
	versions repository.VersionsRepository
	wipes    repository.WipesRepository

	cache  *ResolveCache
	logger *zap.Logger
}

// NewResolverService 创建解析服务
func NewResolverService(
	servers repository.ServersRepository,
	mappings repository.MappingsRepository,
	versions repository.VersionsRepository,
	wipes repository.WipesRepository,
	cache *ResolveCache,
	logger *zap.Logger,
) *ResolverService {
	return &ResolverService{
		servers:  servers,
		mappings: mappings,
		versions: versions,
		wipes:    wipes,
		cache:    cache,
		logger:   logger,
	}
}

// Resolve 为 serverKey 标识的服务器解析 configType 域的当前配置。
//
// explicitWipedAt 非空时 elapsed = now - explicitWipedAt；
// 否则取该服务器已登记的当前 wipe；两者都没有则 elapsed 未定义，
// 只有 base 映射可以命中。
//
// 失败一定是类型化的：ErrServerNotFound / ErrNoLiveConfig /
// ErrNoApplicableMapping / ErrPublishedVersionMissing，绝不猜一个兜底。
func (s *ResolverService) Resolve(ctx context.Context, configType domain.ConfigType, serverKey string, now time.Time, explicitWipedAt *time.Time) (*ResolvedConfig, error) {
	if !configType.Valid() {
		return nil, fmt.Errorf("invalid config type %q", configType)
	}

	// 只有"默认输入"（无显式 wipe 引用）的请求走缓存
	cacheable := explicitWipedAt == nil
	if cacheable {
		if raw, err := s.cache.Get(ctx, configType, serverKey); err == nil {
			var cached ResolvedConfig
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	server, err := s.servers.GetServerByKey(ctx, serverKey)
	if err != nil {
		return nil, err
	}

	candidates, err := s.mappings.ListResolveCandidates(ctx, server.ServerID, configType)
	if err != nil {
		return nil, fmt.Errorf("resolve %s for %s: %w", configType, server.ServerID, err)
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNoLiveConfig
	}

	var elapsed *time.Duration
	if explicitWipedAt != nil {
		d := now.Sub(*explicitWipedAt)
		elapsed = &d
	} else {
		wipe, err := s.wipes.CurrentWipe(ctx, server.ServerID)
		switch {
		case err == nil:
			d := wipe.Elapsed(now)
			elapsed = &d
		case errors.Is(err, domain.ErrWipeNotFound):
			// elapsed 未定义，只匹配 base 映射
		default:
			return nil, fmt.Errorf("resolve %s for %s: %w", configType, server.ServerID, err)
		}
	}

	selected, upcoming, err := pickCandidate(candidates, elapsed)
	if err != nil {
		return nil, err
	}

	// published_version 已在候选查询时读定，这里物化快照；
	// 缺失说明裁剪 bug 或数据损坏，报错而不是退回半截数据
	snap, err := s.versions.GetVersion(ctx, selected.ConfigID, selected.PublishedVersion)
	if err != nil {
		if errors.Is(err, domain.ErrVersionNotFound) {
			s.logger.Error("published snapshot missing",
				zap.String("config_id", selected.ConfigID),
				zap.Int("version", selected.PublishedVersion))
			return nil, fmt.Errorf("config %s v%d: %w",
				selected.ConfigID, selected.PublishedVersion, domain.ErrPublishedVersionMissing)
		}
		return nil, err
	}

	resolved := &ResolvedConfig{
		ConfigID:      selected.ConfigID,
		ConfigName:    selected.ConfigName,
		ConfigType:    configType,
		Version:       selected.PublishedVersion,
		OffsetMinutes: selected.OffsetMinutes,
		Content:       snap.Content,
	}
	for _, u := range upcoming {
		resolved.Upcoming = append(resolved.Upcoming, UpcomingEntry{
			ConfigID:      u.ConfigID,
			ConfigName:    u.ConfigName,
			OffsetMinutes: *u.OffsetMinutes,
		})
	}

	if cacheable {
		if raw, err := json.Marshal(resolved); err == nil {
			s.cache.Set(ctx, configType, serverKey, string(raw))
		}
	}
	return resolved, nil
}

// pickCandidate 映射选择规则（纯函数）：
//   - timed 候选里选 offset ≤ elapsed 的最大者（"最近到达的里程碑"，
//     不是双向最近）；
//   - 没有合格 timed 候选（elapsed 未定义，或 elapsed 小于所有 offset）
//     则落到 base 映射；
//   - 两者都没有 → ErrNoApplicableMapping。
//
// 返回的 upcoming 是 offset 严格大于命中者的 timed 候选，升序。
func pickCandidate(cands []*repository.ResolveCandidate, elapsed *time.Duration) (*repository.ResolveCandidate, []*repository.ResolveCandidate, error) {
	var base, best *repository.ResolveCandidate
	for _, c := range cands {
		if c.OffsetMinutes == nil {
			if base == nil {
				base = c
			}
			continue
		}
		if elapsed == nil {
			continue
		}
		offset := time.Duration(*c.OffsetMinutes) * time.Minute
		if offset <= *elapsed && (best == nil || *c.OffsetMinutes > *best.OffsetMinutes) {
			best = c
		}
	}

	selected := best
	if selected == nil {
		selected = base
	}
	if selected == nil {
		return nil, nil, domain.ErrNoApplicableMapping
	}

	threshold := -1
	if selected.OffsetMinutes != nil {
		threshold = *selected.OffsetMinutes
	}
	var upcoming []*repository.ResolveCandidate
	for _, c := range cands {
		if c.OffsetMinutes != nil && *c.OffsetMinutes > threshold {
			upcoming = append(upcoming, c)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return *upcoming[i].OffsetMinutes < *upcoming[j].OffsetMinutes
	})
	return selected, upcoming, nil
}
