package service

import (
	"context"
	"testing"
	"time"

	"github.com/dushixiang/marmot/internal/protocol"
	"github.com/dushixiang/marmot/internal/repo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func intPtr(v int) *int {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}

// seedAssets 通过快照上报写入三台不同配置的主机
func seedAssets(t *testing.T, db *gorm.DB) {
	t.Helper()
	service := NewSnapshotService(zap.NewNop(), db)
	ctx := context.Background()

	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	web := validPayload("WEB01", base)

	db01 := validPayload("DB01", base.Add(time.Hour))
	db01.AssetInfo.OS.PrettyName = "Rocky Linux 9.3 (Blue Onyx)"
	db01.AssetInfo.System.Manufacturer = "Supermicro"
	db01.AssetInfo.Memory.TotalMB = 8192

	vm01 := validPayload("VM01", base.Add(2*time.Hour))
	vm01.AssetInfo.OS.PrettyName = "Ubuntu 20.04.6 LTS"
	vm01.AssetInfo.System.Manufacturer = "VMware, Inc."
	vm01.AssetInfo.Memory.TotalMB = 16384
	vm01.AssetInfo.Virtualization.IsVM = true
	vm01.AssetInfo.Virtualization.Hypervisor = "VMware"

	for _, payload := range []*protocol.SnapshotPayload{web, db01, vm01} {
		if _, err := service.Ingest(ctx, payload); err != nil {
			t.Fatalf("写入测试快照失败: %v", err)
		}
	}
}

func TestAssetFilters(t *testing.T) {
	db := newTestDB(t)
	seedAssets(t, db)
	service := NewAssetService(zap.NewNop(), db)
	ctx := context.Background()

	t.Run("操作系统名称模糊匹配", func(t *testing.T) {
		assets, total, err := service.FindByFilter(ctx, repo.AssetFilter{
			OSPrettyName: "ubuntu", Page: 1, PageSize: 20,
		})
		if err != nil {
			t.Fatalf("查询失败: %v", err)
		}
		if total != 2 || len(assets) != 2 {
			t.Errorf("ubuntu 应该匹配 2 台主机，实际 %d 台", total)
		}
	})

	t.Run("厂商模糊匹配", func(t *testing.T) {
		_, total, err := service.FindByFilter(ctx, repo.AssetFilter{
			SystemManufacturer: "dell", Page: 1, PageSize: 20,
		})
		if err != nil {
			t.Fatalf("查询失败: %v", err)
		}
		if total != 1 {
			t.Errorf("dell 应该匹配 1 台主机，实际 %d 台", total)
		}
	})

	t.Run("最小内存过滤", func(t *testing.T) {
		assets, total, err := service.FindByFilter(ctx, repo.AssetFilter{
			MemoryTotalMBGte: intPtr(16000), Page: 1, PageSize: 20,
		})
		if err != nil {
			t.Fatalf("查询失败: %v", err)
		}
		// 8192MB 的 DB01 必须被排除
		if total != 2 {
			t.Fatalf("内存不小于 16000MB 的主机应该有 2 台，实际 %d 台", total)
		}
		for _, asset := range assets {
			if asset.Memory.TotalMB < 16000 {
				t.Errorf("主机 %s 的内存 %dMB 不满足过滤条件", asset.Hostname, asset.Memory.TotalMB)
			}
		}
	})

	t.Run("虚拟机过滤", func(t *testing.T) {
		assets, total, err := service.FindByFilter(ctx, repo.AssetFilter{
			IsVM: boolPtr(true), Page: 1, PageSize: 20,
		})
		if err != nil {
			t.Fatalf("查询失败: %v", err)
		}
		if total != 1 {
			t.Fatalf("虚拟机应该只有 1 台，实际 %d 台", total)
		}
		if assets[0].Hostname != "VM01" {
			t.Errorf("匹配到了错误的主机: %s", assets[0].Hostname)
		}
	})

	t.Run("组合条件取交集", func(t *testing.T) {
		_, total, err := service.FindByFilter(ctx, repo.AssetFilter{
			OSPrettyName:     "ubuntu",
			MemoryTotalMBGte: intPtr(32000),
			Page:             1, PageSize: 20,
		})
		if err != nil {
			t.Fatalf("查询失败: %v", err)
		}
		if total != 1 {
			t.Errorf("组合条件应该只匹配 WEB01 一台，实际 %d 台", total)
		}
	})

	t.Run("默认按主机名排序", func(t *testing.T) {
		assets, _, err := service.FindByFilter(ctx, repo.AssetFilter{Page: 1, PageSize: 20})
		if err != nil {
			t.Fatalf("查询失败: %v", err)
		}
		if len(assets) != 3 {
			t.Fatalf("应该返回 3 台主机，实际 %d 台", len(assets))
		}
		want := []string{"DB01", "VM01", "WEB01"}
		for i, asset := range assets {
			if asset.Hostname != want[i] {
				t.Errorf("第 %d 台主机应该是 %s，实际 %s", i, want[i], asset.Hostname)
			}
		}
	})
}

func TestAssetFindByIdPreloadsChildren(t *testing.T) {
	db := newTestDB(t)
	seedAssets(t, db)
	service := NewAssetService(zap.NewNop(), db)
	ctx := context.Background()

	assets, _, err := service.FindByFilter(ctx, repo.AssetFilter{Page: 1, PageSize: 20})
	if err != nil || len(assets) == 0 {
		t.Fatalf("查询资产列表失败: %v", err)
	}

	asset, err := service.FindById(ctx, assets[0].ID)
	if err != nil {
		t.Fatalf("FindById() 失败: %v", err)
	}

	if asset.OS == nil || asset.System == nil || asset.CPU == nil ||
		asset.Memory == nil || asset.Virtualization == nil {
		t.Error("一对一子对象没有完整加载")
	}
	if len(asset.Disks) == 0 || len(asset.NetworkInterfaces) == 0 {
		t.Error("一对多子对象没有完整加载")
	}
}
