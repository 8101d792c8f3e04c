package maintenance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/FleetLink/FleetLink/internal/common/logger"
	"github.com/FleetLink/FleetLink/internal/vehicle"
)

// PartLedger 是工作流对零件库存记账的依赖。
// Reserve 返回预扣时刻的单价，作为用量行上的快照值落库。
type PartLedger interface {
	Check(ctx context.Context, partID int64, qty int) error
	Reserve(ctx context.Context, partID int64, qty int) (costSnapshot float64, err error)
	Release(ctx context.Context, partID int64, qty int) error
}

// VehicleGate 是工作流对车辆可用性的依赖（外部协作方）。
// 约定：SetStatus 幂等；Status 返回已提交的当前值。
type VehicleGate interface {
	Status(ctx context.Context, vehicleID int64) (vehicle.Status, error)
	SetStatus(ctx context.Context, vehicleID int64, st vehicle.Status) error
}

// JobStore 是工作流对任务持久化的依赖。
type JobStore interface {
	Create(ctx context.Context, job *Job, lines []PartUsage) (int64, error)
	Get(ctx context.Context, jobID int64) (*Job, error)
	Update(ctx context.Context, job *Job) error
	HasOngoing(ctx context.Context, vehicleID int64) (bool, error)
	UsageByJob(ctx context.Context, jobID int64) ([]PartUsage, error)
	DeleteCascade(ctx context.Context, jobID int64) error
	List(ctx context.Context, vehicleID int64, status Status, offset, limit int) ([]Job, int64, error)
}

// Deps 一次操作内可见的依赖集合。
type Deps struct {
	Parts    PartLedger
	Vehicles VehicleGate
	Jobs     JobStore
}

// Backend 提供事务边界：InTx 内对任务、用量、库存、车辆状态的全部读写
// 要么一起提交要么一起回滚，并在锁等待超出上限时返回可重试的 ErrBusy。
// Read 返回不开事务的只读依赖。
type Backend interface {
	InTx(ctx context.Context, fn func(ctx context.Context, d Deps) error) error
	Read() Deps
}

// Service 封装维保工作流的核心用例（不依赖传输层），驱动
// Ongoing -> Completed | Cancelled 状态机并维持任务/库存/车辆三方一致。
type Service struct {
	backend Backend
	log     logger.Logger
	now     func() time.Time
}

func NewService(backend Backend, log logger.Logger) *Service {
	return &Service{backend: backend, log: log, now: time.Now}
}

// PartRequest 开单时的一行零件请求。对齐存储形态，两个字段都允许缺失：
// 只有两者齐备的行才参与校验与预扣，残缺行原样落库、零贡献。
type PartRequest struct {
	PartID   *int64
	Quantity *int
}

func (r PartRequest) real() bool {
	return r.PartID != nil && r.Quantity != nil
}

// OpenInput 开单入参。
type OpenInput struct {
	VehicleID   int64
	Description string
	StartTime   time.Time
	Parts       []PartRequest
}

// Open 开一条维保任务：
//  1. 车辆存在且处于 available
//  2. 开始时间不晚于当前时间
//  3. 该车辆没有进行中的任务
//  4. 两遍处理零件：先整体预检，再逐行预扣并记录单价快照
//  5. 无零件时落一条占位行
//  6. 任务 + 用量落库，车辆状态切到 maintenance
//
// 全程一个事务，失败即整体回滚，调用方看不到部分预扣。
func (s *Service) Open(ctx context.Context, in OpenInput) (*Job, error) {
	if s == nil || s.backend == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if in.VehicleID <= 0 {
		return nil, fmt.Errorf("vehicle_id required")
	}
	if in.StartTime.IsZero() {
		return nil, fmt.Errorf("start time required: %w", ErrInvalidDate)
	}

	var job *Job
	err := s.backend.InTx(ctx, func(ctx context.Context, d Deps) error {
		st, err := d.Vehicles.Status(ctx, in.VehicleID)
		if err != nil {
			return err
		}
		if st != vehicle.StatusAvailable {
			return fmt.Errorf("vehicle %d status %q: %w", in.VehicleID, st, ErrVehicleNotAvailable)
		}

		if in.StartTime.After(s.now()) {
			return fmt.Errorf("start time in the future: %w", ErrInvalidDate)
		}

		ongoing, err := d.Jobs.HasOngoing(ctx, in.VehicleID)
		if err != nil {
			return err
		}
		if ongoing {
			return fmt.Errorf("vehicle %d: %w", in.VehicleID, ErrConflictingMaintenance)
		}

		// 第一遍：整体预检。任一行不满足则整单失败，零件零变更。
		for _, pr := range in.Parts {
			if !pr.real() {
				continue
			}
			if err := d.Parts.Check(ctx, *pr.PartID, *pr.Quantity); err != nil {
				return err
			}
		}

		// 第二遍：逐行预扣并快照单价。
		lines := make([]PartUsage, 0, len(in.Parts))
		for _, pr := range in.Parts {
			line := PartUsage{}
			if pr.PartID != nil {
				id := *pr.PartID
				line.PartID = &id
			}
			if pr.Quantity != nil {
				qty := *pr.Quantity
				line.QuantityUsed = &qty
			}
			if pr.real() {
				cost, err := d.Parts.Reserve(ctx, *pr.PartID, *pr.Quantity)
				if err != nil {
					return err
				}
				line.CostPerPart = &cost
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			lines = append(lines, PartUsage{}) // 占位行
		}

		j := &Job{
			VehicleID:   in.VehicleID,
			Description: strings.TrimSpace(in.Description),
			Status:      StatusOngoing,
			StartedAt:   in.StartTime,
		}
		if _, err := d.Jobs.Create(ctx, j, lines); err != nil {
			return err
		}
		if err := d.Vehicles.SetStatus(ctx, in.VehicleID, vehicle.StatusMaintenance); err != nil {
			return err
		}
		job = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.log != nil {
		s.log.Infof("maintenance job %d opened for vehicle %d", job.ID, job.VehicleID)
	}
	return job, nil
}

// Complete 完成任务：仅 Ongoing 可完成，完成时间不得晚于当前时间、
// 不得早于开始时间；车辆状态切回 available。
func (s *Service) Complete(ctx context.Context, jobID int64, completedAt time.Time) (*Job, error) {
	if s == nil || s.backend == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	var job *Job
	err := s.backend.InTx(ctx, func(ctx context.Context, d Deps) error {
		j, err := d.Jobs.Get(ctx, jobID)
		if err != nil {
			return err
		}
		if !CanTransition(j.Status, StatusCompleted) {
			return fmt.Errorf("job %d is %s: %w", jobID, j.Status, ErrInvalidTransition)
		}
		if completedAt.IsZero() {
			return fmt.Errorf("completion time is not set: %w", ErrInvalidDate)
		}
		if completedAt.After(s.now()) {
			return fmt.Errorf("completion time in the future: %w", ErrInvalidDate)
		}
		if completedAt.Before(j.StartedAt) {
			return fmt.Errorf("completion time before start time: %w", ErrInvalidDate)
		}

		t := completedAt
		j.CompletedAt = &t
		j.Status = StatusCompleted
		if err := d.Jobs.Update(ctx, j); err != nil {
			return err
		}
		if err := d.Vehicles.SetStatus(ctx, j.VehicleID, vehicle.StatusAvailable); err != nil {
			return err
		}
		job = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.log != nil {
		s.log.Infof("maintenance job %d completed", jobID)
	}
	return job, nil
}

// Cancel 取消任务：Completed 与已 Cancelled 均拒绝（重复取消若放行
// 会二次回补库存）。真实用量行逐行回补库存，车辆状态切回 available，
// CompletedAt 保持不动。
func (s *Service) Cancel(ctx context.Context, jobID int64) (*Job, error) {
	if s == nil || s.backend == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	var job *Job
	err := s.backend.InTx(ctx, func(ctx context.Context, d Deps) error {
		j, err := d.Jobs.Get(ctx, jobID)
		if err != nil {
			return err
		}
		if !CanTransition(j.Status, StatusCancelled) {
			return fmt.Errorf("job %d is %s: %w", jobID, j.Status, ErrInvalidTransition)
		}

		lines, err := d.Jobs.UsageByJob(ctx, jobID)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if !line.IsReal() {
				continue
			}
			if err := d.Parts.Release(ctx, *line.PartID, *line.QuantityUsed); err != nil {
				return err
			}
		}

		if err := d.Vehicles.SetStatus(ctx, j.VehicleID, vehicle.StatusAvailable); err != nil {
			return err
		}
		j.Status = StatusCancelled
		if err := d.Jobs.Update(ctx, j); err != nil {
			return err
		}
		job = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.log != nil {
		s.log.Infof("maintenance job %d cancelled, reservations released", jobID)
	}
	return job, nil
}

// GetJob 查询单条任务。
func (s *Service) GetJob(ctx context.Context, jobID int64) (*Job, error) {
	if s == nil || s.backend == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return s.backend.Read().Jobs.Get(ctx, jobID)
}

// GetUsage 查询任务的全部用量行（含占位行，保持持久化形状）。
func (s *Service) GetUsage(ctx context.Context, jobID int64) ([]PartUsage, error) {
	if s == nil || s.backend == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	d := s.backend.Read()
	if _, err := d.Jobs.Get(ctx, jobID); err != nil {
		return nil, err
	}
	return d.Jobs.UsageByJob(ctx, jobID)
}

// CalculateCost 汇总任务费用：Σ 单价快照 × 数量，只计完整行，恒 >= 0。
func (s *Service) CalculateCost(ctx context.Context, jobID int64) (float64, error) {
	if s == nil || s.backend == nil {
		return 0, fmt.Errorf("service not initialized")
	}
	d := s.backend.Read()
	if _, err := d.Jobs.Get(ctx, jobID); err != nil {
		return 0, err
	}
	lines, err := d.Jobs.UsageByJob(ctx, jobID)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, line := range lines {
		if !line.IsReal() || line.CostPerPart == nil {
			continue
		}
		total += *line.CostPerPart * float64(*line.QuantityUsed)
	}
	if total < 0 {
		total = 0
	}
	return total, nil
}

// ListJobs 按车辆 / 状态过滤的任务列表。
func (s *Service) ListJobs(ctx context.Context, vehicleID int64, status Status, offset, limit int) ([]Job, int64, error) {
	if s == nil || s.backend == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.backend.Read().Jobs.List(ctx, vehicleID, status, offset, limit)
}

// DeleteJob 级联删除任务及其用量行。进行中的任务不可删除：
// 先取消或完成，否则预扣与车辆状态会悬空。
func (s *Service) DeleteJob(ctx context.Context, jobID int64) error {
	if s == nil || s.backend == nil {
		return fmt.Errorf("service not initialized")
	}
	return s.backend.InTx(ctx, func(ctx context.Context, d Deps) error {
		j, err := d.Jobs.Get(ctx, jobID)
		if err != nil {
			return err
		}
		if j.Status == StatusOngoing {
			return fmt.Errorf("job %d is ongoing: %w", jobID, ErrInvalidTransition)
		}
		return d.Jobs.DeleteCascade(ctx, jobID)
	})
}
