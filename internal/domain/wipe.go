package domain

import (
	"encoding/json"
	"time"
)

// ServerWipe 服务器 wipe 记录（对应 server_wipes 表）
// 每个服务器最多一条 ended_at IS NULL 的"当前 wipe"；
// 注册新 wipe 时在同一事务里关闭上一条并打开新的一条。
type ServerWipe struct {
	WipeID   string `db:"wipe_id"`   // UUID, PRIMARY KEY
	ServerID string `db:"server_id"` // UUID, NOT NULL, FK to servers

	// wipe 序号，(server_id, wipe_number) UNIQUE（防止重试导致的重复注册）
	WipeNumber int `db:"wipe_number"`

	WipedAt time.Time  `db:"wiped_at"` // 本次 wipe 开始时间
	EndedAt *time.Time `db:"ended_at"` // 被下一次 wipe 取代的时间（NULL=当前 wipe）

	// 地图种子/尺寸等附加信息（JSONB）
	Metadata json.RawMessage `db:"metadata"`
}

// Elapsed 返回从 wipe 开始到 now 的经过时长
func (w *ServerWipe) Elapsed(now time.Time) time.Duration {
	return now.Sub(w.WipedAt)
}
