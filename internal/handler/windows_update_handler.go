package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dushixiang/marmot/internal/repo"
	"github.com/dushixiang/marmot/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// WindowsUpdateHandler Windows 更新记录接口处理器（只读）
type WindowsUpdateHandler struct {
	logger  *zap.Logger
	service *service.WindowsUpdateService
}

func NewWindowsUpdateHandler(logger *zap.Logger, service *service.WindowsUpdateService) *WindowsUpdateHandler {
	return &WindowsUpdateHandler{
		logger:  logger,
		service: service,
	}
}

// List 查询更新记录列表
// GET /api/windows-updates?kb_id=&title=&installed_on_gte=&installed_on_lte=&status=
func (h *WindowsUpdateHandler) List(c echo.Context) error {
	filter := repo.WindowsUpdateFilter{
		KBID:   c.QueryParam("kb_id"),
		Title:  c.QueryParam("title"),
		Status: c.QueryParam("status"),
	}
	filter.Page, filter.PageSize = parsePagination(c)

	if value := c.QueryParam("installed_on_gte"); value != "" {
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "installed_on_gte 不是合法的 RFC3339 时间",
			})
		}
		filter.InstalledOnGte = &t
	}
	if value := c.QueryParam("installed_on_lte"); value != "" {
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "installed_on_lte 不是合法的 RFC3339 时间",
			})
		}
		filter.InstalledOnLte = &t
	}

	updates, total, err := h.service.FindByFilter(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, h.logger, "查询更新记录失败", err)
	}

	return listResponse(c, updates, total, filter.Page, filter.PageSize)
}

// Get 查询单条更新记录
// GET /api/windows-updates/:id
func (h *WindowsUpdateHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "更新记录ID必须是整数",
		})
	}

	update, err := h.service.FindById(c.Request().Context(), uint(id))
	if err != nil {
		return writeError(c, h.logger, "查询更新记录失败", err)
	}

	return c.JSON(http.StatusOK, update)
}
