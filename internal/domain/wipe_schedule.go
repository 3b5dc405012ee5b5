package domain

import "time"

// WipeType wipe 类型
type WipeType string

const (
	WipeTypeRegular WipeType = "regular" // 常规地图 wipe
	WipeTypeForce   WipeType = "force"   // 强制全量 wipe（每月第一个周四）
	WipeTypeBP      WipeType = "bp"      // 蓝图 wipe
)

// Valid 校验 wipe 类型是否合法
func (t WipeType) Valid() bool {
	switch t {
	case WipeTypeRegular, WipeTypeForce, WipeTypeBP:
		return true
	}
	return false
}

// WipeSchedule 每周循环的 wipe 排期（对应 wipe_schedules 表）
// 同一服务器的活跃排期不允许重复的 (day, hour, minute) 三元组
type WipeSchedule struct {
	ScheduleID string `db:"schedule_id"` // UUID, PRIMARY KEY
	ServerID   string `db:"server_id"`   // UUID, NOT NULL, FK to servers

	DayOfWeek int `db:"day_of_week"` // 0-6 (0=Sunday)
	Hour      int `db:"hour"`        // 0-23
	Minute    int `db:"minute"`      // 0-59

	WipeType WipeType `db:"wipe_type"`
	IsActive bool     `db:"is_active"`

	CreatedAt time.Time `db:"created_at"`
}
