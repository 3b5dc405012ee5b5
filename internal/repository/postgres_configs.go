package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"

	"github.com/google/uuid"
)

// PostgresConfigsRepository 配置文档Repository实现
type PostgresConfigsRepository struct {
	db *sql.DB
}

// NewPostgresConfigsRepository 创建配置文档Repository
func NewPostgresConfigsRepository(db *sql.DB) *PostgresConfigsRepository {
	return &PostgresConfigsRepository{db: db}
}

// 确保实现了接口
var _ ConfigsRepository = (*PostgresConfigsRepository)(nil)

const configColumns = `
	config_id::text,
	config_type,
	config_name,
	description,
	content,
	current_version,
	published_version,
	created_at,
	updated_at
`

func scanConfig(row interface{ Scan(...any) error }) (*domain.ConfigDocument, error) {
	var cfg domain.ConfigDocument
	var content sql.NullString
	var published sql.NullInt64

	err := row.Scan(
		&cfg.ConfigID,
		&cfg.ConfigType,
		&cfg.ConfigName,
		&cfg.Description,
		&content,
		&cfg.CurrentVersion,
		&published,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if content.Valid {
		cfg.Content = json.RawMessage(content.String)
	}
	if published.Valid {
		v := int(published.Int64)
		cfg.PublishedVersion = &v
	}
	return &cfg, nil
}

// CreateConfig 创建配置文档（current_version=1，同一事务写入第一条版本快照）
func (r *PostgresConfigsRepository) CreateConfig(ctx context.Context, cfg *domain.ConfigDocument) (string, error) {
	if !cfg.ConfigType.Valid() {
		return "", fmt.Errorf("invalid config type %q", cfg.ConfigType)
	}
	if len(cfg.Content) == 0 {
		cfg.Content = json.RawMessage(`{}`)
	}

	configID := cfg.ConfigID
	if configID == "" {
		configID = uuid.New().String()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO configs (config_id, config_type, config_name, description, content, current_version)
		 VALUES ($1, $2, $3, $4, $5, 1)`,
		configID, cfg.ConfigType, cfg.ConfigName, cfg.Description, string(cfg.Content),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert config: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO config_versions (config_id, version, content) VALUES ($1, 1, $2)`,
		configID, string(cfg.Content),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert first snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return configID, nil
}

// GetConfig 获取配置文档
func (r *PostgresConfigsRepository) GetConfig(ctx context.Context, configID string) (*domain.ConfigDocument, error) {
	if configID == "" {
		return nil, domain.ErrConfigNotFound
	}

	query := `SELECT ` + configColumns + ` FROM configs WHERE config_id = $1`

	cfg, err := scanConfig(r.db.QueryRowContext(ctx, query, configID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to get config: %w", err)
	}
	return cfg, nil
}

// ListConfigs 按配置域列出配置文档
func (r *PostgresConfigsRepository) ListConfigs(ctx context.Context, configType domain.ConfigType, page, size int) ([]*domain.ConfigDocument, int, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	where := ""
	args := []any{}
	if configType != "" {
		where = "WHERE config_type = $1"
		args = append(args, configType)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM configs ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count configs: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM configs %s ORDER BY created_at DESC, config_id LIMIT $%d OFFSET $%d`,
		configColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, size, (page-1)*size)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list configs: %w", err)
	}
	defer rows.Close()

	var items []*domain.ConfigDocument
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan config: %w", err)
		}
		items = append(items, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate configs: %w", err)
	}
	return items, total, nil
}

// DeleteConfig 删除配置文档（FK CASCADE 清掉版本历史和映射）
func (r *PostgresConfigsRepository) DeleteConfig(ctx context.Context, configID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM configs WHERE config_id = $1`, configID)
	if err != nil {
		return fmt.Errorf("failed to delete config: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrConfigNotFound
	}
	return nil
}

// SnapshotConfig 编辑配置：bump current_version + 写入快照 + 裁剪，单事务
func (r *PostgresConfigsRepository) SnapshotConfig(ctx context.Context, configID string, content json.RawMessage, retention int) (int, error) {
	if retention <= 0 {
		retention = domain.DefaultRetentionLimit
	}
	if len(content) == 0 {
		content = json.RawMessage(`{}`)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var version int
	var published sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`UPDATE configs
		    SET content = $2, current_version = current_version + 1, updated_at = now()
		  WHERE config_id = $1
		  RETURNING current_version, published_version`,
		configID, string(content),
	).Scan(&version, &published)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, domain.ErrConfigNotFound
		}
		return 0, fmt.Errorf("failed to bump version: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO config_versions (config_id, version, content) VALUES ($1, $2, $3)`,
		configID, version, string(content),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot v%d: %w", version, err)
	}

	if err := pruneVersionsTx(ctx, tx, configID, published, retention); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return version, nil
}

// pruneVersionsTx 超出 retention 时按最旧优先裁剪。
// 子查询排除 published_version，删除后再显式确认已发布快照仍然存在——
// 两道保护，published 快照被裁剪属于不变量破坏，必须让事务失败。
func pruneVersionsTx(ctx context.Context, tx *sql.Tx, configID string, published sql.NullInt64, retention int) error {
	var count int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM config_versions WHERE config_id = $1`, configID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count snapshots: %w", err)
	}
	if count <= retention {
		return nil
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM config_versions
		  WHERE config_id = $1
		    AND version IN (
		        SELECT version FROM config_versions
		         WHERE config_id = $1
		           AND ($2::int IS NULL OR version <> $2)
		         ORDER BY version ASC
		         LIMIT $3)`,
		configID, published, count-retention,
	)
	if err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}

	if published.Valid {
		var exists bool
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM config_versions WHERE config_id = $1 AND version = $2)`,
			configID, published.Int64,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to verify published snapshot: %w", err)
		}
		if !exists {
			return domain.ErrPublishedVersionPruned
		}
	}
	return nil
}

// PublishVersion 发布指定版本（重复发布同一版本幂等）
func (r *PostgresConfigsRepository) PublishVersion(ctx context.Context, configID string, version int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE configs
		    SET published_version = $2, updated_at = now()
		  WHERE config_id = $1
		    AND EXISTS (SELECT 1 FROM config_versions v WHERE v.config_id = $1 AND v.version = $2)`,
		configID, version,
	)
	if err != nil {
		return fmt.Errorf("failed to publish version: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		return nil
	}

	// 区分：配置不存在 vs 版本快照不存在
	var exists bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM configs WHERE config_id = $1)`, configID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check config existence: %w", err)
	}
	if !exists {
		return domain.ErrConfigNotFound
	}
	return domain.ErrVersionNotFound
}
