package vehicle

import (
	"errors"
	"time"
)

var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrInvalidStatus   = errors.New("invalid vehicle status")
)

// Status 车辆运营状态枚举（持久化为字符串）。
type Status string

const (
	StatusAvailable   Status = "available"   // 可调度
	StatusOnTrip      Status = "on_trip"     // 行程中
	StatusMaintenance Status = "maintenance" // 维保中
	StatusInactive    Status = "inactive"    // 停用
)

// Valid 是否为合法枚举值。
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusOnTrip, StatusMaintenance, StatusInactive:
		return true
	}
	return false
}

// Vehicle 是 vehicles 表的 GORM 模型。
// TotalMileage 只增不减，由行程记录侧维护；维保核心只读写运营状态。
type Vehicle struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	PlateNumber  string    `gorm:"uniqueIndex;size:32;not null"`
	Model        string    `gorm:"size:64"`
	TotalMileage int64     `gorm:"not null;default:0"`
	Status       Status    `gorm:"type:varchar(16);index;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}
