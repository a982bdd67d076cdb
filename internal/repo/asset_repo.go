package repo

import (
	"context"

	"github.com/dushixiang/marmot/internal/models"
	"gorm.io/gorm"
)

// assetPreloads 资产的全部子表
var assetPreloads = []string{
	"OS",
	"System",
	"CPU",
	"Memory",
	"Virtualization",
	"Disks",
	"NetworkInterfaces",
	"WindowsUpdates",
}

// AssetRepo 资产数据访问层（只读，数据随快照写入）
type AssetRepo struct {
	db *gorm.DB
}

func NewAssetRepo(db *gorm.DB) *AssetRepo {
	return &AssetRepo{db: db}
}

// AssetFilter 资产列表的过滤条件，条件之间为逻辑与
type AssetFilter struct {
	OSPrettyName       string // 操作系统名称，不区分大小写的模糊匹配
	SystemManufacturer string // 厂商，不区分大小写的模糊匹配
	MemoryTotalMBGte   *int   // 最小总内存(MB)
	IsVM               *bool  // 是否为虚拟机
	Page               int
	PageSize           int
}

// FindById 查询单条资产及其全部嵌套数据
func (r *AssetRepo) FindById(ctx context.Context, id uint) (models.AssetInfo, error) {
	var asset models.AssetInfo
	query := r.db.WithContext(ctx)
	for _, preload := range assetPreloads {
		query = query.Preload(preload)
	}
	err := query.Where("id = ?", id).First(&asset).Error
	return asset, err
}

// FindByFilter 按条件分页查询资产，默认按所属快照的主机名排序
func (r *AssetRepo) FindByFilter(ctx context.Context, filter AssetFilter) ([]models.AssetInfo, int64, error) {
	var assets []models.AssetInfo
	var total int64

	query := r.db.WithContext(ctx).Model(&models.AssetInfo{}).
		Joins("LEFT JOIN snapshots ON snapshots.id = asset_infos.snapshot_id")

	if filter.OSPrettyName != "" {
		query = query.
			Joins("LEFT JOIN os_infos ON os_infos.asset_info_id = asset_infos.id").
			Where("LOWER(os_infos.pretty_name) LIKE LOWER(?)", "%"+filter.OSPrettyName+"%")
	}
	if filter.SystemManufacturer != "" {
		query = query.
			Joins("LEFT JOIN system_infos ON system_infos.asset_info_id = asset_infos.id").
			Where("LOWER(system_infos.manufacturer) LIKE LOWER(?)", "%"+filter.SystemManufacturer+"%")
	}
	if filter.MemoryTotalMBGte != nil {
		query = query.
			Joins("LEFT JOIN memory_infos ON memory_infos.asset_info_id = asset_infos.id").
			Where("memory_infos.total_mb >= ?", *filter.MemoryTotalMBGte)
	}
	if filter.IsVM != nil {
		query = query.
			Joins("LEFT JOIN virtualization_infos ON virtualization_infos.asset_info_id = asset_infos.id").
			Where("virtualization_infos.is_vm = ?", *filter.IsVM)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	for _, preload := range assetPreloads {
		query = query.Preload(preload)
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.Order("snapshots.hostname ASC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&assets).Error

	return assets, total, err
}
