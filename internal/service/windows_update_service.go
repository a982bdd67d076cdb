package service

import (
	"context"

	"github.com/dushixiang/marmot/internal/models"
	"github.com/dushixiang/marmot/internal/repo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WindowsUpdateService Windows 更新记录查询服务（只读）
type WindowsUpdateService struct {
	logger     *zap.Logger
	updateRepo *repo.WindowsUpdateRepo
}

func NewWindowsUpdateService(logger *zap.Logger, db *gorm.DB) *WindowsUpdateService {
	return &WindowsUpdateService{
		logger:     logger,
		updateRepo: repo.NewWindowsUpdateRepo(db),
	}
}

// FindById 查询单条更新记录
func (s *WindowsUpdateService) FindById(ctx context.Context, id uint) (models.WindowsUpdate, error) {
	return s.updateRepo.FindById(ctx, id)
}

// FindByFilter 按条件分页查询更新记录
func (s *WindowsUpdateService) FindByFilter(ctx context.Context, filter repo.WindowsUpdateFilter) ([]models.WindowsUpdate, int64, error) {
	return s.updateRepo.FindByFilter(ctx, filter)
}
