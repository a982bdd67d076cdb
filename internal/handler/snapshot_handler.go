package handler

import (
	"net/http"
	"time"

	"github.com/dushixiang/marmot/internal/protocol"
	"github.com/dushixiang/marmot/internal/repo"
	"github.com/dushixiang/marmot/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SnapshotHandler 快照接口处理器
type SnapshotHandler struct {
	logger  *zap.Logger
	service *service.SnapshotService
}

func NewSnapshotHandler(logger *zap.Logger, service *service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{
		logger:  logger,
		service: service,
	}
}

// Create 接收探针上报的快照
// POST /api/snapshots
func (h *SnapshotHandler) Create(c echo.Context) error {
	var payload protocol.SnapshotPayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "请求体不是合法的快照数据",
		})
	}

	snapshot, err := h.service.Ingest(c.Request().Context(), &payload)
	if err != nil {
		return writeError(c, h.logger, "快照写入失败", err)
	}

	return c.JSON(http.StatusCreated, snapshot)
}

// List 查询快照列表
// GET /api/snapshots?hostname=&timestamp_gte=&timestamp_lte=
func (h *SnapshotHandler) List(c echo.Context) error {
	filter := repo.SnapshotFilter{
		Hostname: c.QueryParam("hostname"),
	}
	filter.Page, filter.PageSize = parsePagination(c)

	if value := c.QueryParam("timestamp_gte"); value != "" {
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "timestamp_gte 不是合法的 RFC3339 时间",
			})
		}
		filter.TimestampGte = &t
	}
	if value := c.QueryParam("timestamp_lte"); value != "" {
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "timestamp_lte 不是合法的 RFC3339 时间",
			})
		}
		filter.TimestampLte = &t
	}

	snapshots, total, err := h.service.FindByFilter(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, h.logger, "查询快照列表失败", err)
	}

	return listResponse(c, snapshots, total, filter.Page, filter.PageSize)
}

// Get 查询单条快照
// GET /api/snapshots/:id
func (h *SnapshotHandler) Get(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "快照ID不能为空",
		})
	}

	snapshot, err := h.service.FindById(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.logger, "查询快照失败", err)
	}

	return c.JSON(http.StatusOK, snapshot)
}

// Delete 删除快照及其整个子树
// DELETE /api/snapshots/:id
func (h *SnapshotHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "快照ID不能为空",
		})
	}

	if err := h.service.DeleteById(c.Request().Context(), id); err != nil {
		return writeError(c, h.logger, "删除快照失败", err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "删除成功",
	})
}
