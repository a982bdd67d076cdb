package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dushixiang/marmot/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// parsePagination 解析分页参数，页码从 1 开始，每页默认 20 条，最多 100 条
func parsePagination(c echo.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	pageSize, _ = strconv.Atoi(c.QueryParam("pageSize"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// listResponse 列表接口统一的分页响应
func listResponse(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":    items,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// writeError 按错误类别映射 HTTP 状态码：
// 校验错误 400、唯一约束/外键冲突 409、记录不存在 404，其余 500
func writeError(c echo.Context, logger *zap.Logger, message string, err error) error {
	var validationError *service.ValidationError
	if errors.As(err, &validationError) {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":  "参数校验失败",
			"fields": validationError.Fields,
		})
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "数据冲突，记录未写入",
		})
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "记录不存在",
		})
	}

	logger.Error(message, zap.Error(err))
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": message,
	})
}
