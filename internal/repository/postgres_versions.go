package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
)

// PostgresVersionsRepository 版本快照Repository实现（只读）
type PostgresVersionsRepository struct {
	db *sql.DB
}

// NewPostgresVersionsRepository 创建版本快照Repository
func NewPostgresVersionsRepository(db *sql.DB) *PostgresVersionsRepository {
	return &PostgresVersionsRepository{db: db}
}

// 确保实现了接口
var _ VersionsRepository = (*PostgresVersionsRepository)(nil)

// GetVersion 获取指定版本快照
func (r *PostgresVersionsRepository) GetVersion(ctx context.Context, configID string, version int) (*domain.VersionSnapshot, error) {
	if configID == "" || version < 1 {
		return nil, domain.ErrVersionNotFound
	}

	query := `
		SELECT config_id::text, version, content, created_at
		FROM config_versions
		WHERE config_id = $1 AND version = $2
	`

	var snap domain.VersionSnapshot
	var content string
	err := r.db.QueryRowContext(ctx, query, configID, version).Scan(
		&snap.ConfigID,
		&snap.Version,
		&content,
		&snap.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrVersionNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot v%d: %w", version, err)
	}
	snap.Content = json.RawMessage(content)
	return &snap, nil
}

// ListVersions 按版本号倒序列出版本历史
func (r *PostgresVersionsRepository) ListVersions(ctx context.Context, configID string, page, size int) ([]*domain.VersionSnapshot, int, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM config_versions WHERE config_id = $1`, configID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count snapshots: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT config_id::text, version, content, created_at
		   FROM config_versions
		  WHERE config_id = $1
		  ORDER BY version DESC
		  LIMIT $2 OFFSET $3`,
		configID, size, (page-1)*size,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var items []*domain.VersionSnapshot
	for rows.Next() {
		var snap domain.VersionSnapshot
		var content string
		if err := rows.Scan(&snap.ConfigID, &snap.Version, &content, &snap.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snap.Content = json.RawMessage(content)
		items = append(items, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return items, total, nil
}
