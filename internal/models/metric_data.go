package models

// 进程指标的归类方式，写入时由服务层打标，不接受外部直接传入
const (
	ProcessTypeCPU    = "cpu"
	ProcessTypeMemory = "memory"
)

// MetricData 一次快照的性能指标容器
type MetricData struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	SnapshotID string `gorm:"uniqueIndex;not null" json:"snapshot_id"` // 所属快照ID

	MemoryUsage  *MemoryUsageMetric  `gorm:"foreignKey:MetricDataID;constraint:OnDelete:CASCADE" json:"memory_usage"`
	CPULoad      *CPULoadMetric      `gorm:"foreignKey:MetricDataID;constraint:OnDelete:CASCADE" json:"cpu_load"`
	NetworkUsage *NetworkUsageMetric `gorm:"foreignKey:MetricDataID;constraint:OnDelete:CASCADE" json:"network_usage"`
	TopProcesses *TopProcessesMetric `gorm:"foreignKey:MetricDataID;constraint:OnDelete:CASCADE" json:"top_processes"`

	DiskUsage        []DiskUsageMetric       `gorm:"foreignKey:MetricDataID;constraint:OnDelete:CASCADE" json:"disk_usage"`
	TopDiskConsumers []TopDiskConsumerMetric `gorm:"foreignKey:MetricDataID;constraint:OnDelete:CASCADE" json:"top_disk_consumers"`
}

func (MetricData) TableName() string {
	return "metric_data"
}

// MemoryUsageMetric 内存用量指标
type MemoryUsageMetric struct {
	ID             uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	MetricDataID   uint    `gorm:"uniqueIndex;not null" json:"-"`
	TotalMB        int     `json:"total_mb"`        // 总内存(MB)
	UsedMB         int     `json:"used_mb"`         // 已用内存(MB)
	FreeMB         int     `json:"free_mb"`         // 空闲内存(MB)
	AvailableMB    int     `json:"available_mb"`    // 可用内存(MB)
	PercentageUsed float64 `json:"percentage_used"` // 使用率（保留两位小数）
}

func (MemoryUsageMetric) TableName() string {
	return "memory_usage_metrics"
}

// CPULoadMetric CPU负载指标
type CPULoadMetric struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	MetricDataID uint    `gorm:"uniqueIndex;not null" json:"-"`
	Load1Min     float64 `json:"load_1min"`  // 1分钟平均负载
	Load5Min     float64 `json:"load_5min"`  // 5分钟平均负载
	Load15Min    float64 `json:"load_15min"` // 15分钟平均负载
}

func (CPULoadMetric) TableName() string {
	return "cpu_load_metrics"
}

// NetworkUsageMetric 网络带宽指标
type NetworkUsageMetric struct {
	ID             uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	MetricDataID   uint    `gorm:"uniqueIndex;not null" json:"-"`
	ReceivedBps    float64 `json:"received_bps"`    // 接收速率（字节/秒）
	TransmittedBps float64 `json:"transmitted_bps"` // 发送速率（字节/秒）
}

func (NetworkUsageMetric) TableName() string {
	return "network_usage_metrics"
}

// TopProcessesMetric 资源占用最高的进程集合（仅作为 ProcessDetail 的容器）
type TopProcessesMetric struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	MetricDataID uint            `gorm:"uniqueIndex;not null" json:"-"`
	Processes    []ProcessDetail `gorm:"foreignKey:TopProcessesMetricID;constraint:OnDelete:CASCADE" json:"processes"`
}

func (TopProcessesMetric) TableName() string {
	return "top_processes_metrics"
}

// ProcessDetail 单个进程的资源占用明细
type ProcessDetail struct {
	ID                   uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	TopProcessesMetricID uint    `gorm:"index;not null" json:"-"`
	ProcessType          string  `gorm:"index;not null" json:"process_type"` // 归类: cpu/memory
	PID                  int     `json:"pid"`                                // 进程ID
	User                 string  `json:"user"`                               // 运行用户
	CPUPercent           float64 `json:"cpu_percent"`                        // CPU占用率
	MemPercent           float64 `json:"mem_percent"`                        // 内存占用率
	Command              string  `gorm:"type:text" json:"command"`           // 完整命令行
}

func (ProcessDetail) TableName() string {
	return "process_details"
}

// DiskUsageMetric 单个文件系统的用量，路径在同一指标集内唯一
type DiskUsageMetric struct {
	ID             uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	MetricDataID   uint    `gorm:"uniqueIndex:ux_disk_usage_fs;not null" json:"-"`
	Filesystem     string  `gorm:"uniqueIndex:ux_disk_usage_fs;not null" json:"filesystem"` // 文件系统（如 /dev/sda2）
	PercentageUsed float64 `json:"percentage_used"`                                         // 使用率（保留两位小数）
	TotalSize      string  `json:"total_size"`                                              // 总容量
	UsedSize       string  `json:"used_size"`                                               // 已用容量
	AvailableSize  string  `json:"available_size"`                                          // 可用容量
}

func (DiskUsageMetric) TableName() string {
	return "disk_usage_metrics"
}

// TopDiskConsumerMetric 占用空间最大的目录，路径在同一指标集内唯一
type TopDiskConsumerMetric struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	MetricDataID uint   `gorm:"uniqueIndex:ux_disk_consumer_path;not null" json:"-"`
	Size         string `json:"size"`                                                         // 目录大小（如 103G）
	Path         string `gorm:"uniqueIndex:ux_disk_consumer_path;size:1024;not null" json:"path"` // 目录路径
}

func (TopDiskConsumerMetric) TableName() string {
	return "top_disk_consumer_metrics"
}
