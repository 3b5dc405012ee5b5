package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"

	"github.com/google/uuid"
)

// PostgresSchedulesRepository wipe 排期Repository实现
type PostgresSchedulesRepository struct {
	db *sql.DB
}

// NewPostgresSchedulesRepository 创建排期Repository
func NewPostgresSchedulesRepository(db *sql.DB) *PostgresSchedulesRepository {
	return &PostgresSchedulesRepository{db: db}
}

// 确保实现了接口
var _ SchedulesRepository = (*PostgresSchedulesRepository)(nil)

// ListSchedules 列出某服务器的排期
// 排序即 NextServerWipe 的稳定迭代顺序，同一时刻的并列由它决出
func (r *PostgresSchedulesRepository) ListSchedules(ctx context.Context, serverID string, activeOnly bool) ([]*domain.WipeSchedule, error) {
	query := `
		SELECT schedule_id::text, server_id::text, day_of_week, hour, minute, wipe_type, is_active, created_at
		FROM wipe_schedules
		WHERE server_id = $1
	`
	if activeOnly {
		query += " AND is_active"
	}
	query += " ORDER BY day_of_week, hour, minute, schedule_id"

	rows, err := r.db.QueryContext(ctx, query, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var items []*domain.WipeSchedule
	for rows.Next() {
		var s domain.WipeSchedule
		err := rows.Scan(&s.ScheduleID, &s.ServerID, &s.DayOfWeek, &s.Hour, &s.Minute, &s.WipeType, &s.IsActive, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		items = append(items, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedules: %w", err)
	}
	return items, nil
}

// CreateSchedule 创建排期
func (r *PostgresSchedulesRepository) CreateSchedule(ctx context.Context, s *domain.WipeSchedule) (string, error) {
	scheduleID := s.ScheduleID
	if scheduleID == "" {
		scheduleID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO wipe_schedules (schedule_id, server_id, day_of_week, hour, minute, wipe_type, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		scheduleID, s.ServerID, s.DayOfWeek, s.Hour, s.Minute, s.WipeType, s.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err, "uniq_active_schedule_slot") {
			return "", domain.ErrDuplicateScheduleSlot
		}
		return "", fmt.Errorf("failed to create schedule: %w", err)
	}
	return scheduleID, nil
}

// DeleteSchedule 删除排期
func (r *PostgresSchedulesRepository) DeleteSchedule(ctx context.Context, scheduleID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM wipe_schedules WHERE schedule_id = $1`, scheduleID)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrScheduleNotFound
	}
	return nil
}
