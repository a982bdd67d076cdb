package handler

import (
	"net/http"
	"strconv"

	"github.com/dushixiang/marmot/internal/repo"
	"github.com/dushixiang/marmot/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AssetHandler 资产接口处理器（只读）
type AssetHandler struct {
	logger  *zap.Logger
	service *service.AssetService
}

func NewAssetHandler(logger *zap.Logger, service *service.AssetService) *AssetHandler {
	return &AssetHandler{
		logger:  logger,
		service: service,
	}
}

// List 查询资产列表
// GET /api/assets?os_pretty_name=&system_manufacturer=&memory_total_mb_gte=&is_vm=
func (h *AssetHandler) List(c echo.Context) error {
	filter := repo.AssetFilter{
		OSPrettyName:       c.QueryParam("os_pretty_name"),
		SystemManufacturer: c.QueryParam("system_manufacturer"),
	}
	filter.Page, filter.PageSize = parsePagination(c)

	if value := c.QueryParam("memory_total_mb_gte"); value != "" {
		mb, err := strconv.Atoi(value)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "memory_total_mb_gte 必须是整数",
			})
		}
		filter.MemoryTotalMBGte = &mb
	}
	if value := c.QueryParam("is_vm"); value != "" {
		isVM, err := strconv.ParseBool(value)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "is_vm 必须是布尔值",
			})
		}
		filter.IsVM = &isVM
	}

	assets, total, err := h.service.FindByFilter(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, h.logger, "查询资产列表失败", err)
	}

	return listResponse(c, assets, total, filter.Page, filter.PageSize)
}

// Get 查询单条资产
// GET /api/assets/:id
func (h *AssetHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "资产ID必须是整数",
		})
	}

	asset, err := h.service.FindById(c.Request().Context(), uint(id))
	if err != nil {
		return writeError(c, h.logger, "查询资产失败", err)
	}

	return c.JSON(http.StatusOK, asset)
}
