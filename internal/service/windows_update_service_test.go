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

// seedWindowsUpdates 写入两台 Windows 主机的快照，带不同的更新历史
func seedWindowsUpdates(t *testing.T, db *gorm.DB) {
	t.Helper()
	service := NewSnapshotService(zap.NewNop(), db)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	win01 := validPayload("WIN01", base.Add(time.Hour))
	win01.AssetInfo.OS.PrettyName = "Windows Server 2022"
	win01.AssetInfo.WindowsUpdates = []protocol.WindowsUpdatePayload{
		{KBID: "KB5033375", Title: "2024-01 Cumulative Update", InstalledOn: base.Add(-24 * time.Hour), Status: "Installed"},
		{KBID: "KB5032202", Title: ".NET Framework Security Update", InstalledOn: base.Add(-48 * time.Hour), Status: "Installed"},
	}

	win02 := validPayload("WIN02", base.Add(2 * time.Hour))
	win02.AssetInfo.OS.PrettyName = "Windows Server 2019"
	win02.AssetInfo.WindowsUpdates = []protocol.WindowsUpdatePayload{
		{KBID: "KB5034122", Title: "2024-01 Security Only Update", InstalledOn: base.Add(-2 * time.Hour), Status: "Failed"},
	}

	for _, payload := range []*protocol.SnapshotPayload{win01, win02} {
		if _, err := service.Ingest(ctx, payload); err != nil {
			t.Fatalf("写入测试快照失败: %v", err)
		}
	}
}

func TestWindowsUpdateFilters(t *testing.T) {
	db := newTestDB(t)
	seedWindowsUpdates(t, db)
	service := NewWindowsUpdateService(zap.NewNop(), db)
	ctx := context.Background()

	t.Run("KB编号模糊匹配", func(t *testing.T) {
		_, total, err := service.FindByFilter(ctx, repo.WindowsUpdateFilter{
			KBID: "kb503", Page: 1, PageSize: 20,
		})
		if err != nil {
			t.Fatalf("查询失败: %v", err)
		}
		if total != 3 {
			t.Errorf("kb503 应该匹配 3 条更新，实际 %d 条", total)
		}
	})

	t.Run("标题模糊匹配", func(t *testing.T) {
		updates, total, err := service.FindByFilter(ctx, repo.WindowsUpdateFilter{
			Title: "security", Page: 1, PageSize: 20,
		})
		if err != nil {
			t.Fatalf("查询失败: %v", err)
		}
		if total != 2 {
			t.Fatalf("security 应该匹配 2 条更新，实际 %d 条", total)
		}
		for _, update := range updates {
			if update.KBID == "KB5033375" {
				t.Errorf("不包含 security 的更新不应该被匹配: %s", update.KBID)
			}
		}
	})

	t.Run("状态精确匹配", func(t *testing.T) {
		updates, total, err := service.FindByFilter(ctx, repo.WindowsUpdateFilter{
			Status: "Failed", Page: 1, PageSize: 20,
		})
		if err != nil {
			t.Fatalf("查询失败: %v", err)
		}
		if total != 1 || updates[0].KBID != "KB5034122" {
			t.Errorf("Failed 状态应该只匹配 KB5034122，实际 %d 条", total)
		}
	})

	t.Run("安装时间范围过滤", func(t *testing.T) {
		gte := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
		_, total, err := service.FindByFilter(ctx, repo.WindowsUpdateFilter{
			InstalledOnGte: &gte, Page: 1, PageSize: 20,
		})
		if err != nil {
			t.Fatalf("查询失败: %v", err)
		}
		// KB5032202 安装于 2023-12-30，应该被排除
		if total != 2 {
			t.Errorf("时间范围内应该有 2 条更新，实际 %d 条", total)
		}
	})

	t.Run("默认按安装时间倒序", func(t *testing.T) {
		updates, _, err := service.FindByFilter(ctx, repo.WindowsUpdateFilter{Page: 1, PageSize: 20})
		if err != nil {
			t.Fatalf("查询失败: %v", err)
		}
		if len(updates) != 3 {
			t.Fatalf("应该返回 3 条更新，实际 %d 条", len(updates))
		}
		for i := 1; i < len(updates); i++ {
			if updates[i].InstalledOn.After(updates[i-1].InstalledOn) {
				t.Error("更新列表没有按安装时间倒序排列")
			}
		}
	})
}

func TestWindowsUpdateFindById(t *testing.T) {
	db := newTestDB(t)
	seedWindowsUpdates(t, db)
	service := NewWindowsUpdateService(zap.NewNop(), db)
	ctx := context.Background()

	updates, _, err := service.FindByFilter(ctx, repo.WindowsUpdateFilter{Page: 1, PageSize: 20})
	if err != nil || len(updates) == 0 {
		t.Fatalf("查询更新列表失败: %v", err)
	}

	update, err := service.FindById(ctx, updates[0].ID)
	if err != nil {
		t.Fatalf("FindById() 失败: %v", err)
	}
	if update.ID != updates[0].ID {
		t.Errorf("返回了错误的记录: %d", update.ID)
	}
}
