package domain

import "time"

// Server 游戏服务器领域模型（对应 servers 表）
type Server struct {
	ServerID   string `db:"server_id"`   // UUID, PRIMARY KEY
	ServerName string `db:"server_name"` // VARCHAR(100), NOT NULL

	// 下载鉴权用的服务器身份密钥（插件侧配置，UNIQUE）
	IdentityKey string `db:"identity_key"`

	Region   string `db:"region"` // VARCHAR(20) - 'us'/'eu'/...
	IsActive bool   `db:"is_active"`

	CreatedAt time.Time `db:"created_at"`
}
