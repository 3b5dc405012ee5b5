package service

import (
	"context"
	"time"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/store"

	"go.uber.org/zap"
)

// ResolveCache 下载解析结果的短 TTL 缓存
// key 按 (config_type, server_key) 划分；publish/映射修改/wipe 登记会主动失效，
// 其余情况靠 TTL 过期——TTL 即对外承诺的最大陈旧窗口。
type ResolveCache struct {
	kv     store.KV
	ttl    time.Duration
	logger *zap.Logger
}

// NewResolveCache 创建缓存；kv 为 nil 时读写均为 no-op（miss）
func NewResolveCache(kv store.KV, ttl time.Duration, logger *zap.Logger) *ResolveCache {
	return &ResolveCache{kv: kv, ttl: ttl, logger: logger}
}

func resolveKey(configType domain.ConfigType, serverKey string) string {
	return "kits:resolve:" + string(configType) + ":" + serverKey
}

// Get 读缓存；miss 或 kv 不可用返回 store.ErrMiss
func (c *ResolveCache) Get(ctx context.Context, configType domain.ConfigType, serverKey string) (string, error) {
	if c == nil || c.kv == nil {
		return "", store.ErrMiss
	}
	return c.kv.Get(ctx, resolveKey(configType, serverKey))
}

// Set 写缓存，失败只告警
func (c *ResolveCache) Set(ctx context.Context, configType domain.ConfigType, serverKey string, value string) {
	if c == nil || c.kv == nil {
		return
	}
	if err := c.kv.Set(ctx, resolveKey(configType, serverKey), value, c.ttl); err != nil {
		c.logger.Warn("resolve cache set failed", zap.Error(err))
	}
}

// InvalidateType 失效某配置域下的全部缓存（publish / 映射修改后调用）
func (c *ResolveCache) InvalidateType(ctx context.Context, configType domain.ConfigType) {
	c.invalidate(ctx, "kits:resolve:"+string(configType)+":*")
}

// InvalidateServer 失效某服务器的全部缓存（wipe 登记后调用）
func (c *ResolveCache) InvalidateServer(ctx context.Context, serverKey string) {
	c.invalidate(ctx, "kits:resolve:*:"+serverKey)
}

func (c *ResolveCache) invalidate(ctx context.Context, pattern string) {
	if c == nil || c.kv == nil {
		return
	}
	keys, err := c.kv.ScanKeys(ctx, pattern)
	if err != nil {
		c.logger.Warn("resolve cache scan failed", zap.String("pattern", pattern), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.kv.Del(ctx, keys...); err != nil {
		c.logger.Warn("resolve cache del failed", zap.String("pattern", pattern), zap.Error(err))
	}
}
