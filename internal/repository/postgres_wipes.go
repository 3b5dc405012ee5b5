package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"

	"github.com/google/uuid"
)

// PostgresWipesRepository 服务器 wipe 记录Repository实现
type PostgresWipesRepository struct {
	db *sql.DB
}

// NewPostgresWipesRepository 创建 wipe Repository
func NewPostgresWipesRepository(db *sql.DB) *PostgresWipesRepository {
	return &PostgresWipesRepository{db: db}
}

// 确保实现了接口
var _ WipesRepository = (*PostgresWipesRepository)(nil)

const wipeColumns = `wipe_id::text, server_id::text, wipe_number, wiped_at, ended_at, metadata`

func scanWipe(row interface{ Scan(...any) error }) (*domain.ServerWipe, error) {
	var w domain.ServerWipe
	var endedAt sql.NullTime
	var metadata sql.NullString

	err := row.Scan(&w.WipeID, &w.ServerID, &w.WipeNumber, &w.WipedAt, &endedAt, &metadata)
	if err != nil {
		return nil, err
	}
	if endedAt.Valid {
		w.EndedAt = &endedAt.Time
	}
	if metadata.Valid {
		w.Metadata = json.RawMessage(metadata.String)
	}
	return &w, nil
}

// RegisterWipe 登记新 wipe：关旧开新，单事务
// 重复 (server_id, wipe_number) 在插入前显式检查，保证第一次登记的状态不被触碰
func (r *PostgresWipesRepository) RegisterWipe(ctx context.Context, w *domain.ServerWipe) (string, error) {
	wipeID := w.WipeID
	if wipeID == "" {
		wipeID = uuid.New().String()
	}
	if len(w.Metadata) == 0 {
		w.Metadata = json.RawMessage(`{}`)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM server_wipes WHERE server_id = $1 AND wipe_number = $2)`,
		w.ServerID, w.WipeNumber,
	).Scan(&exists)
	if err != nil {
		return "", fmt.Errorf("failed to check wipe number: %w", err)
	}
	if exists {
		return "", domain.ErrDuplicateWipeNumber
	}

	// 关闭上一条打开的 wipe
	_, err = tx.ExecContext(ctx,
		`UPDATE server_wipes SET ended_at = $2 WHERE server_id = $1 AND ended_at IS NULL`,
		w.ServerID, w.WipedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to close previous wipe: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO server_wipes (wipe_id, server_id, wipe_number, wiped_at, metadata)
		 VALUES ($1, $2, $3, $4, $5)`,
		wipeID, w.ServerID, w.WipeNumber, w.WipedAt, string(w.Metadata),
	)
	if err != nil {
		// 并发双写时唯一索引兜底
		if isUniqueViolation(err, "") {
			return "", domain.ErrDuplicateWipeNumber
		}
		return "", fmt.Errorf("failed to insert wipe: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return wipeID, nil
}

// CurrentWipe 获取当前打开的 wipe
func (r *PostgresWipesRepository) CurrentWipe(ctx context.Context, serverID string) (*domain.ServerWipe, error) {
	if serverID == "" {
		return nil, domain.ErrWipeNotFound
	}

	query := `SELECT ` + wipeColumns + ` FROM server_wipes WHERE server_id = $1 AND ended_at IS NULL`
	w, err := scanWipe(r.db.QueryRowContext(ctx, query, serverID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrWipeNotFound
		}
		return nil, fmt.Errorf("failed to get current wipe: %w", err)
	}
	return w, nil
}

// ListWipes 按 wipe_number 倒序列出历史
func (r *PostgresWipesRepository) ListWipes(ctx context.Context, serverID string, page, size int) ([]*domain.ServerWipe, int, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM server_wipes WHERE server_id = $1`, serverID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count wipes: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+wipeColumns+` FROM server_wipes
		  WHERE server_id = $1
		  ORDER BY wipe_number DESC
		  LIMIT $2 OFFSET $3`,
		serverID, size, (page-1)*size,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list wipes: %w", err)
	}
	defer rows.Close()

	var items []*domain.ServerWipe
	for rows.Next() {
		w, err := scanWipe(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan wipe: %w", err)
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate wipes: %w", err)
	}
	return items, total, nil
}
