package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"

	"github.com/google/uuid"
)

// PostgresServersRepository 游戏服务器Repository实现
type PostgresServersRepository struct {
	db *sql.DB
}

// NewPostgresServersRepository 创建服务器Repository
func NewPostgresServersRepository(db *sql.DB) *PostgresServersRepository {
	return &PostgresServersRepository{db: db}
}

// 确保实现了接口
var _ ServersRepository = (*PostgresServersRepository)(nil)

const serverColumns = `server_id::text, server_name, identity_key, region, is_active, created_at`

func scanServer(row interface{ Scan(...any) error }) (*domain.Server, error) {
	var s domain.Server
	err := row.Scan(&s.ServerID, &s.ServerName, &s.IdentityKey, &s.Region, &s.IsActive, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateServer 注册游戏服务器
func (r *PostgresServersRepository) CreateServer(ctx context.Context, s *domain.Server) (string, error) {
	serverID := s.ServerID
	if serverID == "" {
		serverID = uuid.New().String()
	}
	if s.IdentityKey == "" {
		// 身份密钥缺省随机生成，插件侧配置后用它请求下载
		s.IdentityKey = uuid.New().String()
	}
	if s.Region == "" {
		s.Region = "us"
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO servers (server_id, server_name, identity_key, region, is_active)
		 VALUES ($1, $2, $3, $4, $5)`,
		serverID, s.ServerName, s.IdentityKey, s.Region, s.IsActive,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create server: %w", err)
	}
	return serverID, nil
}

// GetServer 按ID获取服务器
func (r *PostgresServersRepository) GetServer(ctx context.Context, serverID string) (*domain.Server, error) {
	if serverID == "" {
		return nil, domain.ErrServerNotFound
	}

	query := `SELECT ` + serverColumns + ` FROM servers WHERE server_id = $1`
	s, err := scanServer(r.db.QueryRowContext(ctx, query, serverID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrServerNotFound
		}
		return nil, fmt.Errorf("failed to get server: %w", err)
	}
	return s, nil
}

// GetServerByKey 按身份密钥获取服务器（下载鉴权路径，只认 active 服务器）
func (r *PostgresServersRepository) GetServerByKey(ctx context.Context, identityKey string) (*domain.Server, error) {
	if identityKey == "" {
		return nil, domain.ErrServerNotFound
	}

	query := `SELECT ` + serverColumns + ` FROM servers WHERE identity_key = $1 AND is_active`
	s, err := scanServer(r.db.QueryRowContext(ctx, query, identityKey))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrServerNotFound
		}
		return nil, fmt.Errorf("failed to get server by key: %w", err)
	}
	return s, nil
}

// ListServers 查询服务器列表
func (r *PostgresServersRepository) ListServers(ctx context.Context, filters ServerFilters, page, size int) ([]*domain.Server, int, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 50
	}

	where := "1=1"
	args := []any{}
	argN := 1
	if filters.Region != "" {
		where += fmt.Sprintf(" AND region = $%d", argN)
		args = append(args, filters.Region)
		argN++
	}
	if filters.ActiveOnly {
		where += " AND is_active"
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM servers WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count servers: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM servers WHERE %s ORDER BY server_name, server_id LIMIT $%d OFFSET $%d`,
		serverColumns, where, argN, argN+1,
	)
	args = append(args, size, (page-1)*size)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list servers: %w", err)
	}
	defer rows.Close()

	var items []*domain.Server
	for rows.Next() {
		s, err := scanServer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan server: %w", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate servers: %w", err)
	}
	return items, total, nil
}
