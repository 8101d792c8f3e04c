package maintenance

import "time"

// Status 维保任务状态枚举（持久化为字符串）。
type Status string

const (
	StatusOngoing   Status = "Ongoing"   // 进行中（初始态）
	StatusCompleted Status = "Completed" // 已完成（终态）
	StatusCancelled Status = "Cancelled" // 已取消（终态）
)

// Valid 是否为合法枚举值。
func (s Status) Valid() bool {
	switch s {
	case StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Job 是 maintenance_jobs 表的 GORM 模型。
// 同一 VehicleID 任意时刻至多存在一条 Ongoing 记录。
type Job struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	VehicleID   int64      `gorm:"index;not null"`
	Description string     `gorm:"size:255"`
	Status      Status     `gorm:"type:varchar(16);index;not null"`
	StartedAt   time.Time  `gorm:"not null"`
	CompletedAt *time.Time // 完成时间；取消不写入
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}

func (Job) TableName() string { return "maintenance_jobs" }

// PartUsage 是 maintenance_part_usage 表的 GORM 模型：
// 一条任务的一行零件用量。任务不带零件时落一条全 null 的占位行，
// 保持“一条任务至少一行用量”的存储形态，报表侧依赖这个形状。
type PartUsage struct {
	ID           int64    `gorm:"primaryKey;autoIncrement"`
	JobID        int64    `gorm:"index;not null"`
	PartID       *int64   `gorm:"index"`
	QuantityUsed *int     // 使用数量，> 0
	CostPerPart  *float64 // 预扣时刻的单价快照，之后零件改价不影响
}

func (PartUsage) TableName() string { return "maintenance_part_usage" }

// IsReal 只有 PartID 与 QuantityUsed 同时存在才参与库存与费用计算；
// 占位行/残缺行一律视为零贡献。
func (u PartUsage) IsReal() bool {
	return u.PartID != nil && u.QuantityUsed != nil
}
