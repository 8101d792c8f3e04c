package maintenance

import "errors"

// 工作流对外的业务错误。零件侧的错误（part.ErrPartNotFound /
// part.ErrDeliveryPending / part.ErrInsufficientStock）原样透传。
// 除 ErrBusy 外均不可重试。
var (
	ErrJobNotFound            = errors.New("maintenance job not found")
	ErrVehicleNotAvailable    = errors.New("vehicle not available for maintenance")
	ErrConflictingMaintenance = errors.New("vehicle already has an ongoing maintenance job")
	ErrInvalidDate            = errors.New("invalid date")
	ErrInvalidTransition      = errors.New("invalid maintenance status transition")
	ErrBusy                   = errors.New("maintenance resources busy")
)
