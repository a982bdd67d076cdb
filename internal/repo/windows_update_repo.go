package repo

import (
	"context"
	"time"

	"github.com/dushixiang/marmot/internal/models"
	"gorm.io/gorm"
)

// WindowsUpdateRepo Windows 更新记录数据访问层（只读，数据随快照写入）
type WindowsUpdateRepo struct {
	db *gorm.DB
}

func NewWindowsUpdateRepo(db *gorm.DB) *WindowsUpdateRepo {
	return &WindowsUpdateRepo{db: db}
}

// WindowsUpdateFilter Windows 更新记录的过滤条件，条件之间为逻辑与
type WindowsUpdateFilter struct {
	KBID           string     // KB编号，不区分大小写的模糊匹配
	Title          string     // 标题，不区分大小写的模糊匹配
	InstalledOnGte *time.Time // 安装时间下界
	InstalledOnLte *time.Time // 安装时间上界
	Status         string     // 状态，精确匹配
	Page           int
	PageSize       int
}

// FindById 查询单条更新记录
func (r *WindowsUpdateRepo) FindById(ctx context.Context, id uint) (models.WindowsUpdate, error) {
	var update models.WindowsUpdate
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&update).Error
	return update, err
}

// FindByFilter 按条件分页查询，默认按安装时间倒序，再按所属主机名排序
func (r *WindowsUpdateRepo) FindByFilter(ctx context.Context, filter WindowsUpdateFilter) ([]models.WindowsUpdate, int64, error) {
	var updates []models.WindowsUpdate
	var total int64

	query := r.db.WithContext(ctx).Model(&models.WindowsUpdate{}).
		Joins("LEFT JOIN asset_infos ON asset_infos.id = windows_updates.asset_info_id").
		Joins("LEFT JOIN snapshots ON snapshots.id = asset_infos.snapshot_id")

	if filter.KBID != "" {
		query = query.Where("LOWER(windows_updates.kb_id) LIKE LOWER(?)", "%"+filter.KBID+"%")
	}
	if filter.Title != "" {
		query = query.Where("LOWER(windows_updates.title) LIKE LOWER(?)", "%"+filter.Title+"%")
	}
	if filter.InstalledOnGte != nil {
		query = query.Where("windows_updates.installed_on >= ?", *filter.InstalledOnGte)
	}
	if filter.InstalledOnLte != nil {
		query = query.Where("windows_updates.installed_on <= ?", *filter.InstalledOnLte)
	}
	if filter.Status != "" {
		query = query.Where("windows_updates.status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.Order("windows_updates.installed_on DESC, snapshots.hostname ASC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&updates).Error

	return updates, total, err
}
