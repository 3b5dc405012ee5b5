package domain

import (
	"encoding/json"
	"time"
)

// ConfigType 配置域类型（loot/shop/base 三个域共用同一套版本与解析引擎）
type ConfigType string

const (
	ConfigTypeLoot ConfigType = "loot" // 掉落/套装表
	ConfigTypeShop ConfigType = "shop" // 商店目录
	ConfigTypeBase ConfigType = "base" // 基建配置
)

// Valid 校验配置域类型是否合法
func (t ConfigType) Valid() bool {
	switch t {
	case ConfigTypeLoot, ConfigTypeShop, ConfigTypeBase:
		return true
	}
	return false
}

// ConfigDocument 配置文档领域模型（对应 configs 表）
// content 是工作副本（草稿）；历史快照见 config_versions 表
type ConfigDocument struct {
	// 主键
	ConfigID string `db:"config_id"` // UUID, PRIMARY KEY

	// 配置域
	ConfigType ConfigType `db:"config_type"` // VARCHAR(10), NOT NULL - 'loot'/'shop'/'base'

	ConfigName  string `db:"config_name"` // VARCHAR(100), NOT NULL
	Description string `db:"description"` // TEXT

	// 工作内容（JSONB，内部结构由各域自己负责，本引擎不解析）
	Content json.RawMessage `db:"content"`

	// 版本指针
	CurrentVersion   int  `db:"current_version"`   // 最新编辑版本号，从1开始单调递增
	PublishedVersion *int `db:"published_version"` // 当前对外生效版本（NULL=未发布）

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsPublished 是否已发布
func (c *ConfigDocument) IsPublished() bool {
	return c.PublishedVersion != nil
}
