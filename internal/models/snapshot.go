package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Snapshot 一次主机上报的快照，整个数据图的根节点
type Snapshot struct {
	ID        string    `gorm:"primaryKey" json:"id"`              // 快照ID (UUID)
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`   // 采集时间（UTC）
	Hostname  string    `gorm:"index;not null" json:"hostname"`    // 主机名
	CreatedAt int64     `json:"created_at"`                        // 记录创建时间（毫秒）

	// 一对一子树，随快照级联删除
	AssetInfo  *AssetInfo  `gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE" json:"asset_info"`
	MetricData *MetricData `gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE" json:"metrics"`
}

func (Snapshot) TableName() string {
	return "snapshots"
}

// BeforeCreate GORM钩子：生成主键和创建时间
func (s *Snapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt == 0 {
		s.CreatedAt = time.Now().UnixMilli()
	}
	return nil
}
