package domain

import (
	"encoding/json"
	"time"
)

// DefaultRetentionLimit 每个配置保留的历史版本数上限
// 超出后按最旧优先裁剪，但绝不裁剪当前 published_version 对应的快照
const DefaultRetentionLimit = 50

// VersionSnapshot 版本快照领域模型（对应 config_versions 表）
// 复合主键 (config_id, version)；创建后不可变，版本号不复用
type VersionSnapshot struct {
	ConfigID string `db:"config_id"` // UUID, NOT NULL, FK to configs (CASCADE)
	Version  int    `db:"version"`   // INT, NOT NULL, 从1开始连续递增

	// 快照内容（JSONB，不可变）
	Content json.RawMessage `db:"content"`

	CreatedAt time.Time `db:"created_at"`
}
