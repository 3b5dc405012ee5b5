package domain

import (
	"encoding/json"
	"time"
)

// AdminUser 后台管理用户（对应 admin_users 表）
type AdminUser struct {
	UserID       string `db:"user_id"` // UUID, PRIMARY KEY
	Account      string `db:"account"` // VARCHAR(100), UNIQUE
	PasswordHash []byte `db:"password_hash"`
	Role         string `db:"role"`   // 'SystemAdmin'/'Editor'/'Viewer'
	Status       string `db:"status"` // 'active'/'disabled'
}

// AuditEntry 审计日志条目（对应 audit_log 表，只追加不修改）
type AuditEntry struct {
	AuditID    string          `db:"audit_id"`
	EntityType string          `db:"entity_type"` // 'config'/'mapping'/'server'/'wipe'/'schedule'
	EntityID   string          `db:"entity_id"`
	ActorID    string          `db:"actor_id"`
	Action     string          `db:"action"` // 'create'/'update'/'delete'/'publish'/'register'
	Before     json.RawMessage `db:"before_state"`
	After      json.RawMessage `db:"after_state"`
	CreatedAt  time.Time       `db:"created_at"`
}

// Actor 鉴权后的操作者上下文（写操作必须携带）
type Actor struct {
	UserID string
	Role   string
}
