package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"

	"github.com/google/uuid"
)

// PostgresAuthRepository 后台管理用户Repository实现
type PostgresAuthRepository struct {
	db *sql.DB
}

// NewPostgresAuthRepository 创建用户Repository
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{db: db}
}

// 确保实现了接口
var _ AuthRepository = (*PostgresAuthRepository)(nil)

// GetUserByAccount 按账号获取用户
func (r *PostgresAuthRepository) GetUserByAccount(ctx context.Context, account string) (*domain.AdminUser, error) {
	if account == "" {
		return nil, domain.ErrUnauthorized
	}

	var u domain.AdminUser
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id::text, account, password_hash, role, status
		   FROM admin_users
		  WHERE account = $1 AND status = 'active'`,
		account,
	).Scan(&u.UserID, &u.Account, &u.PasswordHash, &u.Role, &u.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// UpsertUser 创建或更新用户（开发环境引导 sysadmin）
func (r *PostgresAuthRepository) UpsertUser(ctx context.Context, account string, passwordHash []byte, role string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admin_users (user_id, account, password_hash, role, status)
		 VALUES ($1, $2, $3, $4, 'active')
		 ON CONFLICT (account)
		 DO UPDATE SET password_hash = EXCLUDED.password_hash,
		               role = EXCLUDED.role,
		               status = 'active'`,
		uuid.New().String(), account, passwordHash, role,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// PostgresAuditRepository 审计日志Repository实现
type PostgresAuditRepository struct {
	db *sql.DB
}

// NewPostgresAuditRepository 创建审计Repository
func NewPostgresAuditRepository(db *sql.DB) *PostgresAuditRepository {
	return &PostgresAuditRepository{db: db}
}

// 确保实现了接口
var _ AuditRepository = (*PostgresAuditRepository)(nil)

// InsertAudit 追加审计条目
func (r *PostgresAuditRepository) InsertAudit(ctx context.Context, e *domain.AuditEntry) error {
	var before, after any
	if len(e.Before) > 0 {
		before = string(e.Before)
	}
	if len(e.After) > 0 {
		after = string(e.After)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (audit_id, entity_type, entity_id, actor_id, action, before_state, after_state)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New().String(), e.EntityType, e.EntityID, e.ActorID, e.Action, before, after,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}
