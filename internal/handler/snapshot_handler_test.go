package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dushixiang/marmot/internal/models"
	"github.com/dushixiang/marmot/internal/service"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "marmot_test.db") + "?_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

// newTestEcho 按和正式服务一样的方式注册全部路由
func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()

	snapshotHandler := NewSnapshotHandler(log, service.NewSnapshotService(log, db))
	assetHandler := NewAssetHandler(log, service.NewAssetService(log, db))
	updateHandler := NewWindowsUpdateHandler(log, service.NewWindowsUpdateService(log, db))

	e := echo.New()
	api := e.Group("/api")
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

func snapshotJSON(hostname, timestamp string) string {
	return fmt.Sprintf(`{
		"timestamp": %q,
		"hostname": %q,
		"asset_info": {
			"hostname": %q,
			"os": {"pretty_name": "Ubuntu 22.04.3 LTS", "kernel_version": "5.15.0-91-generic"},
			"system": {
				"manufacturer": "Dell Inc.",
				"product_name": "PowerEdge R740",
				"serial_number": "ABC1234",
				"bios_version": "2.19.1",
				"chassis_type": "Rack Mount Chassis",
				"uptime_initial": "up 12 days, 3:45",
				"pending_updates_count": 0
			},
			"cpu": {
				"model_name": "Intel(R) Xeon(R) Gold 6230",
				"vendor_id": "GenuineIntel",
				"total_logical_cpus": 40,
				"physical_cores_per_socket": 20,
				"architecture": "x86_64"
			},
			"memory": {"total_mb": 65536, "speed": "2933 MT/s", "modules_count": 4},
			"virtualization": {"is_vm": false, "hypervisor": ""},
			"disks": [{"name": "sda", "size": "1.8 TiB", "model": "PERC H740P", "serial": "S1"}],
			"network_interfaces": [{"name": "eno1", "mac_address": "aa:bb:cc:dd:ee:01", "ipv4_address": "10.0.0.11"}],
			"windows_updates": []
		},
		"metrics": {
			"memory_usage": {"total_mb": 65536, "used_mb": 30000, "free_mb": 20000, "available_mb": 35536, "percentage_used": 45.78},
			"cpu_load": {"load_1min": 0.52, "load_5min": 0.61, "load_15min": 0.7},
			"network_usage": {"received_bps": 10240.5, "transmitted_bps": 2048.25},
			"top_processes": {
				"by_cpu": [{"pid": 1234, "user": "postgres", "cpu_percent": 12.5, "mem_percent": 3.2, "command": "postgres: writer"}],
				"by_memory": [{"pid": 4321, "user": "root", "cpu_percent": 1.1, "mem_percent": 15.6, "command": "java -Xmx8g"}]
			},
			"disk_usage": [{"filesystem": "/dev/sda1", "percentage_used": 63.3, "total_size": "1.8 TiB", "used_size": "1.1 TiB", "available_size": "700 GiB"}],
			"top_disk_consumers": [{"size": "120 GiB", "path": "/var/lib/postgresql"}]
		}
	}`, timestamp, hostname, hostname)
}

func postSnapshot(t *testing.T, e *echo.Echo, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/snapshots", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateSnapshot(t *testing.T) {
	e := newTestEcho(t)

	rec := postSnapshot(t, e, snapshotJSON("web01", "2024-01-15T10:00:00Z"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际 %d，响应: %s", rec.Code, rec.Body.String())
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if snapshot.ID == "" {
		t.Error("响应里应该带上生成的快照 ID")
	}
	if snapshot.Hostname != "web01" {
		t.Errorf("hostname 不对: %s", snapshot.Hostname)
	}
}

func TestCreateSnapshotValidationError(t *testing.T) {
	e := newTestEcho(t)

	// 去掉 cpu 字段，校验应该指出具体路径
	body := strings.Replace(snapshotJSON("web01", "2024-01-15T10:00:00Z"),
		`"cpu": {`, `"cpu_removed": {`, 1)
	rec := postSnapshot(t, e, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("期望 400，实际 %d", rec.Code)
	}

	var resp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if _, ok := resp.Fields["asset_info.cpu"]; !ok {
		t.Errorf("校验错误里应该包含 asset_info.cpu，实际: %v", resp.Fields)
	}
}

func TestCreateSnapshotBadBody(t *testing.T) {
	e := newTestEcho(t)

	rec := postSnapshot(t, e, "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("非法 JSON 期望 400，实际 %d", rec.Code)
	}
}

func TestListSnapshotsFilter(t *testing.T) {
	e := newTestEcho(t)

	for _, item := range [][2]string{
		{"web01", "2024-01-15T10:00:00Z"},
		{"web01", "2024-01-15T11:00:00Z"},
		{"db01", "2024-01-15T10:30:00Z"},
	} {
		if rec := postSnapshot(t, e, snapshotJSON(item[0], item[1])); rec.Code != http.StatusCreated {
			t.Fatalf("写入测试数据失败: %d %s", rec.Code, rec.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/snapshots?hostname=WEB01", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", rec.Code)
	}

	var resp struct {
		Items []models.Snapshot `json:"items"`
		Total int64             `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("hostname 过滤不区分大小写，应该匹配 2 条，实际 %d", resp.Total)
	}
	// 默认按采集时间倒序
	if len(resp.Items) == 2 && resp.Items[0].Timestamp.Before(resp.Items[1].Timestamp) {
		t.Error("快照列表没有按时间倒序排列")
	}
}

func TestListSnapshotsBadTimestamp(t *testing.T) {
	e := newTestEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/api/snapshots?timestamp_gte=yesterday", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("非法时间参数期望 400，实际 %d", rec.Code)
	}
}

func TestGetSnapshotNotFound(t *testing.T) {
	e := newTestEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/api/snapshots/no-such-id", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("不存在的快照期望 404，实际 %d", rec.Code)
	}
}

func TestDeleteSnapshot(t *testing.T) {
	e := newTestEcho(t)

	rec := postSnapshot(t, e, snapshotJSON("web01", "2024-01-15T10:00:00Z"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("写入测试数据失败: %d", rec.Code)
	}
	var snapshot models.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/snapshots/"+snapshot.ID, nil)
	del := httptest.NewRecorder()
	e.ServeHTTP(del, req)
	if del.Code != http.StatusOK {
		t.Fatalf("删除期望 200，实际 %d", del.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/snapshots/"+snapshot.ID, nil)
	get := httptest.NewRecorder()
	e.ServeHTTP(get, req)
	if get.Code != http.StatusNotFound {
		t.Errorf("删除后再查询期望 404，实际 %d", get.Code)
	}
}

func TestListAssets(t *testing.T) {
	e := newTestEcho(t)

	if rec := postSnapshot(t, e, snapshotJSON("web01", "2024-01-15T10:00:00Z")); rec.Code != http.StatusCreated {
		t.Fatalf("写入测试数据失败: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/assets?system_manufacturer=dell", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", rec.Code)
	}

	var resp struct {
		Items []models.AssetInfo `json:"items"`
		Total int64              `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("厂商模糊过滤应该匹配 1 条，实际 %d", resp.Total)
	}
}
