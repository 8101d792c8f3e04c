package maintenance

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store 负责 Job + PartUsage 的持久化。
// 写路径（Create / Update / DeleteCascade）必须跑在 Backend.InTx 提供的
// 事务里；行与任务的插入不在同一事务内提交会产生不可见的半成品状态。
type Store struct {
	db        *gorm.DB
	forUpdate bool
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ForUpdate 返回读操作带行锁的副本，用于事务内锁住任务行。
func (s *Store) ForUpdate() *Store {
	if s == nil {
		return nil
	}
	return &Store{db: s.db, forUpdate: true}
}

func (s *Store) withCtx(ctx context.Context) *gorm.DB {
	if s == nil || s.db == nil {
		return nil
	}
	db := s.db.WithContext(ctx)
	if s.forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// Create 插入任务并把生成的任务 ID 盖章到每一行用量后插入。
// 任一行插入失败时返回错误，由外层事务整体回滚。
func (s *Store) Create(ctx context.Context, job *Job, lines []PartUsage) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("store db is nil")
	}
	db := s.db.WithContext(ctx)
	if err := db.Create(job).Error; err != nil {
		return 0, err
	}
	for i := range lines {
		lines[i].JobID = job.ID
	}
	if len(lines) > 0 {
		if err := db.Create(&lines).Error; err != nil {
			return 0, fmt.Errorf("inserting usage lines for job %d: %w", job.ID, err)
		}
	}
	return job.ID, nil
}

func (s *Store) Get(ctx context.Context, jobID int64) (*Job, error) {
	db := s.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("store db is nil")
	}
	var j Job
	if err := db.Where("id = ?", jobID).First(&j).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job %d: %w", jobID, ErrJobNotFound)
		}
		return nil, err
	}
	return &j, nil
}

func (s *Store) Update(ctx context.Context, job *Job) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store db is nil")
	}
	return s.db.WithContext(ctx).Save(job).Error
}

// HasOngoing 该车辆当前是否有进行中的维保任务。
// 并发 Open 的竞态由事务先行锁住车辆行来消除，这里只做普通读。
func (s *Store) HasOngoing(ctx context.Context, vehicleID int64) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("store db is nil")
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&Job{}).
		Where("vehicle_id = ? AND status = ?", vehicleID, StatusOngoing).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UsageByJob 按插入顺序返回任务的全部用量行（含占位行）。
func (s *Store) UsageByJob(ctx context.Context, jobID int64) ([]PartUsage, error) {
	db := s.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("store db is nil")
	}
	var lines []PartUsage
	if err := db.Where("job_id = ?", jobID).Order("id").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// DeleteCascade 先删用量行再删任务行；任务行在有用量行引用期间不可单删。
func (s *Store) DeleteCascade(ctx context.Context, jobID int64) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store db is nil")
	}
	db := s.db.WithContext(ctx)
	if err := db.Where("job_id = ?", jobID).Delete(&PartUsage{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", jobID).Delete(&Job{}).Error
}

// List 支持按车辆 / 状态过滤 + 分页。
func (s *Store) List(ctx context.Context, vehicleID int64, status Status, offset, limit int) ([]Job, int64, error) {
	if s == nil || s.db == nil {
		return nil, 0, fmt.Errorf("store db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := s.db.WithContext(ctx).Model(&Job{})
	if vehicleID > 0 {
		q = q.Where("vehicle_id = ?", vehicleID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var jobs []Job
	if err := q.Order("started_at DESC").Offset(offset).Limit(limit).Find(&jobs).Error; err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}
