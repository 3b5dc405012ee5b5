package domain

import "time"

// ServerMapping 服务器-配置映射领域模型（对应 server_mappings 表）
// offset_minutes 为 NULL 表示无时间条件的 base/默认映射；
// 同一 (server, config_type) 下 is_live 的 base 映射最多一条（部分唯一索引保证）。
// 多条不同 offset 的 timed 映射构成一个 wipe 生命周期内的"排期"
// （例如 wipe 后 0h / 6h / 24h / 72h 各用一张掉落表）。
type ServerMapping struct {
	// 主键
	MappingID string `db:"mapping_id"` // UUID, PRIMARY KEY

	ServerID string `db:"server_id"` // UUID, NOT NULL, FK to servers (CASCADE)
	ConfigID string `db:"config_id"` // UUID, NOT NULL, FK to configs (CASCADE)

	// 冗余自 configs.config_type，用于唯一索引和解析查询
	ConfigType ConfigType `db:"config_type"`

	IsLive bool `db:"is_live"`

	// 距 wipe 的偏移（分钟，>=0）；NULL = base 映射
	OffsetMinutes *int `db:"offset_minutes"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
