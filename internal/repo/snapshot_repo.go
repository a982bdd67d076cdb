package repo

import (
	"context"
	"time"

	"github.com/dushixiang/marmot/internal/models"
	"gorm.io/gorm"
)

// snapshotPreloads 快照的全部子表，查询详情时一次性加载，避免逐行回表
var snapshotPreloads = []string{
	"AssetInfo.OS",
	"AssetInfo.System",
	"AssetInfo.CPU",
	"AssetInfo.Memory",
	"AssetInfo.Virtualization",
	"AssetInfo.Disks",
	"AssetInfo.NetworkInterfaces",
	"AssetInfo.WindowsUpdates",
	"MetricData.MemoryUsage",
	"MetricData.CPULoad",
	"MetricData.NetworkUsage",
	"MetricData.TopProcesses.Processes",
	"MetricData.DiskUsage",
	"MetricData.TopDiskConsumers",
}

// SnapshotRepo 快照数据访问层
type SnapshotRepo struct {
	db *gorm.DB
}

func NewSnapshotRepo(db *gorm.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// SnapshotFilter 快照列表的过滤条件，条件之间为逻辑与
type SnapshotFilter struct {
	Hostname     string     // 主机名，不区分大小写的精确匹配
	TimestampGte *time.Time // 采集时间下界
	TimestampLte *time.Time // 采集时间上界
	Page         int
	PageSize     int
}

// Create 写入完整的快照子树。GORM 会在单个事务内依次创建父行和全部子行，
// 任何一行失败（如唯一约束冲突）整个事务回滚
func (r *SnapshotRepo) Create(ctx context.Context, snapshot *models.Snapshot) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

// FindById 查询单条快照及其全部嵌套数据
func (r *SnapshotRepo) FindById(ctx context.Context, id string) (models.Snapshot, error) {
	var snapshot models.Snapshot
	query := r.db.WithContext(ctx)
	for _, preload := range snapshotPreloads {
		query = query.Preload(preload)
	}
	err := query.Where("id = ?", id).First(&snapshot).Error
	return snapshot, err
}

// FindByFilter 按条件分页查询快照，默认按采集时间倒序
func (r *SnapshotRepo) FindByFilter(ctx context.Context, filter SnapshotFilter) ([]models.Snapshot, int64, error) {
	var snapshots []models.Snapshot
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Snapshot{})

	if filter.Hostname != "" {
		query = query.Where("LOWER(hostname) = LOWER(?)", filter.Hostname)
	}
	if filter.TimestampGte != nil {
		query = query.Where("timestamp >= ?", *filter.TimestampGte)
	}
	if filter.TimestampLte != nil {
		query = query.Where("timestamp <= ?", *filter.TimestampLte)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	for _, preload := range snapshotPreloads {
		query = query.Preload(preload)
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.Order("timestamp DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&snapshots).Error

	return snapshots, total, err
}

// DeleteById 删除快照，子树由数据库级联删除
func (r *SnapshotRepo) DeleteById(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Snapshot{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
