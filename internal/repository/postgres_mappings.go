package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresMappingsRepository 服务器-配置映射Repository实现
type PostgresMappingsRepository struct {
	db *sql.DB
}

// NewPostgresMappingsRepository 创建映射Repository
func NewPostgresMappingsRepository(db *sql.DB) *PostgresMappingsRepository {
	return &PostgresMappingsRepository{db: db}
}

// 确保实现了接口
var _ MappingsRepository = (*PostgresMappingsRepository)(nil)

const mappingColumns = `
	mapping_id::text,
	server_id::text,
	config_id::text,
	config_type,
	is_live,
	offset_minutes,
	created_at,
	updated_at
`

func scanMapping(row interface{ Scan(...any) error }) (*domain.ServerMapping, error) {
	var m domain.ServerMapping
	var offset sql.NullInt64

	err := row.Scan(
		&m.MappingID,
		&m.ServerID,
		&m.ConfigID,
		&m.ConfigType,
		&m.IsLive,
		&offset,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if offset.Valid {
		v := int(offset.Int64)
		m.OffsetMinutes = &v
	}
	return &m, nil
}

// isUniqueViolation PostgreSQL 唯一约束冲突
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// GetMapping 获取映射
func (r *PostgresMappingsRepository) GetMapping(ctx context.Context, mappingID string) (*domain.ServerMapping, error) {
	if mappingID == "" {
		return nil, domain.ErrMappingNotFound
	}

	query := `SELECT ` + mappingColumns + ` FROM server_mappings WHERE mapping_id = $1`
	m, err := scanMapping(r.db.QueryRowContext(ctx, query, mappingID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrMappingNotFound
		}
		return nil, fmt.Errorf("failed to get mapping: %w", err)
	}
	return m, nil
}

// ListMappings 查询映射列表
func (r *PostgresMappingsRepository) ListMappings(ctx context.Context, filters MappingFilters, page, size int) ([]*domain.ServerMapping, int, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 50
	}

	where := []string{"1=1"}
	args := []any{}
	argN := 1
	if filters.ServerID != "" {
		where = append(where, fmt.Sprintf("server_id = $%d", argN))
		args = append(args, filters.ServerID)
		argN++
	}
	if filters.ConfigID != "" {
		where = append(where, fmt.Sprintf("config_id = $%d", argN))
		args = append(args, filters.ConfigID)
		argN++
	}
	if filters.ConfigType != "" {
		where = append(where, fmt.Sprintf("config_type = $%d", argN))
		args = append(args, filters.ConfigType)
		argN++
	}
	if filters.LiveOnly {
		where = append(where, "is_live")
	}

	whereSQL := where[0]
	for _, w := range where[1:] {
		whereSQL += " AND " + w
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM server_mappings WHERE ` + whereSQL
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count mappings: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM server_mappings WHERE %s
		 ORDER BY server_id, config_type, offset_minutes NULLS FIRST, mapping_id
		 LIMIT $%d OFFSET $%d`,
		mappingColumns, whereSQL, argN, argN+1,
	)
	args = append(args, size, (page-1)*size)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list mappings: %w", err)
	}
	defer rows.Close()

	var items []*domain.ServerMapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan mapping: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate mappings: %w", err)
	}
	return items, total, nil
}

// CreateMapping 创建映射（config_type 冗余列从 configs 回填，保证一致）
func (r *PostgresMappingsRepository) CreateMapping(ctx context.Context, m *domain.ServerMapping) (string, error) {
	mappingID := m.MappingID
	if mappingID == "" {
		mappingID = uuid.New().String()
	}

	var offset sql.NullInt64
	if m.OffsetMinutes != nil {
		offset = sql.NullInt64{Int64: int64(*m.OffsetMinutes), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO server_mappings (mapping_id, server_id, config_id, config_type, is_live, offset_minutes)
		 SELECT $1, $2, c.config_id, c.config_type, $4, $5
		   FROM configs c WHERE c.config_id = $3`,
		mappingID, m.ServerID, m.ConfigID, m.IsLive, offset,
	)
	if err != nil {
		if isUniqueViolation(err, "uniq_live_base_mapping") {
			return "", domain.ErrDuplicateBaseMapping
		}
		return "", fmt.Errorf("failed to create mapping: %w", err)
	}

	// INSERT ... SELECT 没命中说明 config 不存在
	created, err := r.GetMapping(ctx, mappingID)
	if err != nil {
		if errors.Is(err, domain.ErrMappingNotFound) {
			return "", domain.ErrConfigNotFound
		}
		return "", err
	}
	return created.MappingID, nil
}

// UpdateMapping 更新映射
func (r *PostgresMappingsRepository) UpdateMapping(ctx context.Context, mappingID string, m *domain.ServerMapping) error {
	var offset sql.NullInt64
	if m.OffsetMinutes != nil {
		offset = sql.NullInt64{Int64: int64(*m.OffsetMinutes), Valid: true}
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE server_mappings sm
		    SET config_id = c.config_id,
		        config_type = c.config_type,
		        is_live = $3,
		        offset_minutes = $4,
		        updated_at = now()
		   FROM configs c
		  WHERE sm.mapping_id = $1 AND c.config_id = $2`,
		mappingID, m.ConfigID, m.IsLive, offset,
	)
	if err != nil {
		if isUniqueViolation(err, "uniq_live_base_mapping") {
			return domain.ErrDuplicateBaseMapping
		}
		return fmt.Errorf("failed to update mapping: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrMappingNotFound
	}
	return nil
}

// DeleteMapping 删除映射
func (r *PostgresMappingsRepository) DeleteMapping(ctx context.Context, mappingID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM server_mappings WHERE mapping_id = $1`, mappingID)
	if err != nil {
		return fmt.Errorf("failed to delete mapping: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrMappingNotFound
	}
	return nil
}

// ListResolveCandidates 下载解析读路径
// published_version 在这里一次性读出，之后解析流程不再回表重读，
// 保证整个 resolve 基于一次一致的读取。
func (r *PostgresMappingsRepository) ListResolveCandidates(ctx context.Context, serverID string, configType domain.ConfigType) ([]*ResolveCandidate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.mapping_id::text,
		        c.config_id::text,
		        c.config_name,
		        m.offset_minutes,
		        c.published_version
		   FROM server_mappings m
		   JOIN configs c ON c.config_id = m.config_id
		  WHERE m.server_id = $1
		    AND m.config_type = $2
		    AND m.is_live
		    AND c.published_version IS NOT NULL
		  ORDER BY m.offset_minutes NULLS FIRST, m.mapping_id`,
		serverID, configType,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resolve candidates: %w", err)
	}
	defer rows.Close()

	var items []*ResolveCandidate
	for rows.Next() {
		var c ResolveCandidate
		var offset sql.NullInt64
		if err := rows.Scan(&c.MappingID, &c.ConfigID, &c.ConfigName, &offset, &c.PublishedVersion); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		if offset.Valid {
			v := int(offset.Int64)
			c.OffsetMinutes = &v
		}
		items = append(items, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}
	return items, nil
}
