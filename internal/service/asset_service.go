package service

import (
	"context"

	"github.com/dushixiang/marmot/internal/models"
	"github.com/dushixiang/marmot/internal/repo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AssetService 资产查询服务。资产数据只随快照写入，这里只读
type AssetService struct {
	logger    *zap.Logger
	assetRepo *repo.AssetRepo
}

func NewAssetService(logger *zap.Logger, db *gorm.DB) *AssetService {
	return &AssetService{
		logger:    logger,
		assetRepo: repo.NewAssetRepo(db),
	}
}

// FindById 查询单条资产及其全部嵌套数据
func (s *AssetService) FindById(ctx context.Context, id uint) (models.AssetInfo, error) {
	return s.assetRepo.FindById(ctx, id)
}

// FindByFilter 按条件分页查询资产
func (s *AssetService) FindByFilter(ctx context.Context, filter repo.AssetFilter) ([]models.AssetInfo, int64, error) {
	return s.assetRepo.FindByFilter(ctx, filter)
}
