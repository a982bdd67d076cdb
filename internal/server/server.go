package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dushixiang/marmot/internal/config"
	"github.com/dushixiang/marmot/internal/handler"
	"github.com/dushixiang/marmot/internal/models"
	"github.com/dushixiang/marmot/internal/service"
	"github.com/glebarez/sqlite"
	"github.com/go-errors/errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const echoShutdownTimeout = 10 * time.Second

// Server 快照采集服务端
type Server struct {
	logger *zap.Logger
	cfg    *config.Config
	echo   *echo.Echo
	db     *gorm.DB
}

func New(logger *zap.Logger, cfg *config.Config) (*Server, error) {
	db, err := OpenDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := models.AutoMigrate(db); err != nil {
		return nil, errors.WrapPrefix(err, "数据库迁移失败", 0)
	}

	s := &Server{
		logger: logger,
		cfg:    cfg,
		db:     db,
	}
	s.echo = s.buildEcho()
	return s, nil
}

// OpenDatabase 按配置打开数据库连接。开启 TranslateError 以便把驱动错误
// 统一映射成 gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated
func OpenDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite", "":
		dsn := cfg.DSN
		// 级联删除依赖外键约束，sqlite 需要显式开启
		if !strings.Contains(dsn, "_pragma=foreign_keys") {
			if strings.Contains(dsn, "?") {
				dsn += "&_pragma=foreign_keys(1)"
			} else {
				dsn += "?_pragma=foreign_keys(1)"
			}
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, errors.Errorf("不支持的数据库类型: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.WrapPrefix(err, "连接数据库失败", 0)
	}
	return db, nil
}

func (s *Server) buildEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	snapshotService := service.NewSnapshotService(s.logger, s.db)
	assetService := service.NewAssetService(s.logger, s.db)
	updateService := service.NewWindowsUpdateService(s.logger, s.db)

	snapshotHandler := handler.NewSnapshotHandler(s.logger, snapshotService)
	assetHandler := handler.NewAssetHandler(s.logger, assetService)
	updateHandler := handler.NewWindowsUpdateHandler(s.logger, updateService)

	api := e.Group("/api")
	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api.POST("/snapshots", snapshotHandler.Create)
	api.GET("/snapshots", snapshotHandler.List)
	api.GET("/snapshots/:id", snapshotHandler.Get)
	api.DELETE("/snapshots/:id", snapshotHandler.Delete)

	api.GET("/assets", assetHandler.List)
	api.GET("/assets/:id", assetHandler.Get)

	api.GET("/windows-updates", updateHandler.List)
	api.GET("/windows-updates/:id", updateHandler.Get)

	return e
}

// Run 启动 HTTP 服务，直到 ctx 取消后优雅退出
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("服务启动", zap.String("addr", s.cfg.Server.Addr))
		if err := s.echo.Start(s.cfg.Server.Addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("服务启动失败: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("服务准备退出")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), echoShutdownTimeout)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}
