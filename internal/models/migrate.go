package models

import "gorm.io/gorm"

// AutoMigrate 创建快照实体图的全部表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Snapshot{},
		&AssetInfo{},
		&OSInfo{},
		&SystemInfo{},
		&CPUInfo{},
		&MemoryInfo{},
		&VirtualizationInfo{},
		&DiskInfo{},
		&NetworkInterfaceInfo{},
		&WindowsUpdate{},
		&MetricData{},
		&MemoryUsageMetric{},
		&CPULoadMetric{},
		&NetworkUsageMetric{},
		&TopProcessesMetric{},
		&ProcessDetail{},
		&DiskUsageMetric{},
		&TopDiskConsumerMetric{},
	)
}
