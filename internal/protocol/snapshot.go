package protocol

import (
	"math"
	"time"
)

// SnapshotPayload 探针上报的完整快照，对应 POST /api/snapshots 的请求体
type SnapshotPayload struct {
	Timestamp time.Time         `json:"timestamp" validate:"required"`
	Hostname  string            `json:"hostname" validate:"required"`
	AssetInfo *AssetInfoPayload `json:"asset_info" validate:"required"`
	Metrics   *MetricsPayload   `json:"metrics" validate:"required"`
}

// AssetInfoPayload 静态资产信息
type AssetInfoPayload struct {
	Hostname          string                    `json:"hostname"`
	OS                *OSPayload                `json:"os" validate:"required"`
	System            *SystemPayload            `json:"system" validate:"required"`
	CPU               *CPUPayload               `json:"cpu" validate:"required"`
	Memory            *MemoryPayload            `json:"memory" validate:"required"`
	Virtualization    *VirtualizationPayload    `json:"virtualization" validate:"required"`
	Disks             []DiskPayload             `json:"disks" validate:"omitempty,dive"`
	NetworkInterfaces []NetworkInterfacePayload `json:"network_interfaces" validate:"omitempty,dive"`
	WindowsUpdates    []WindowsUpdatePayload    `json:"windows_updates" validate:"omitempty,dive"`
}

type OSPayload struct {
	PrettyName    string `json:"pretty_name"`
	KernelVersion string `json:"kernel_version"`
}

type SystemPayload struct {
	Manufacturer        string     `json:"manufacturer"`
	ProductName         string     `json:"product_name"`
	SerialNumber        string     `json:"serial_number"`
	BiosVersion         string     `json:"bios_version"`
	ChassisType         string     `json:"chassis_type"`
	UptimeInitial       string     `json:"uptime_initial"`
	LastUpdateCheckTime *time.Time `json:"last_update_check_time"`
	PendingUpdatesCount int        `json:"pending_updates_count" validate:"gte=0"`
}

type CPUPayload struct {
	ModelName              string `json:"model_name"`
	VendorID               string `json:"vendor_id"`
	TotalLogicalCPUs       int    `json:"total_logical_cpus" validate:"gte=0"`
	PhysicalCoresPerSocket int    `json:"physical_cores_per_socket" validate:"gte=0"`
	Architecture           string `json:"architecture"`
}

type MemoryPayload struct {
	TotalMB      int    `json:"total_mb" validate:"gte=0"`
	Speed        string `json:"speed"`
	ModulesCount int    `json:"modules_count" validate:"gte=0"`
}

type VirtualizationPayload struct {
	IsVM       bool   `json:"is_vm"`
	Hypervisor string `json:"hypervisor"`
}

type DiskPayload struct {
	Name   string `json:"name" validate:"required"`
	Size   string `json:"size" validate:"required"`
	Model  string `json:"model"`
	Serial string `json:"serial"`
}

type NetworkInterfacePayload struct {
	Name        string  `json:"name" validate:"required"`
	MACAddress  string  `json:"mac_address" validate:"omitempty,mac"`
	IPv4Address *string `json:"ipv4_address" validate:"omitempty,ipv4"`
	IPv6Address *string `json:"ipv6_address" validate:"omitempty,ipv6"`
}

type WindowsUpdatePayload struct {
	KBID        string    `json:"kb_id" validate:"required"`
	Title       string    `json:"title"`
	InstalledOn time.Time `json:"installed_on" validate:"required"`
	Status      string    `json:"status"`
}

// MetricsPayload 性能指标
type MetricsPayload struct {
	MemoryUsage      *MemoryUsagePayload      `json:"memory_usage" validate:"required"`
	CPULoad          *CPULoadPayload          `json:"cpu_load" validate:"required"`
	NetworkUsage     *NetworkUsagePayload     `json:"network_usage" validate:"required"`
	TopProcesses     *TopProcessesPayload     `json:"top_processes" validate:"required"`
	DiskUsage        []DiskUsagePayload       `json:"disk_usage" validate:"omitempty,dive"`
	TopDiskConsumers []TopDiskConsumerPayload `json:"top_disk_consumers" validate:"omitempty,dive"`
}

type MemoryUsagePayload struct {
	TotalMB        int     `json:"total_mb" validate:"gte=0"`
	UsedMB         int     `json:"used_mb" validate:"gte=0"`
	FreeMB         int     `json:"free_mb" validate:"gte=0"`
	AvailableMB    int     `json:"available_mb" validate:"gte=0"`
	PercentageUsed float64 `json:"percentage_used" validate:"gte=0,lte=100"`
}

type CPULoadPayload struct {
	Load1Min  float64 `json:"load_1min" validate:"gte=0"`
	Load5Min  float64 `json:"load_5min" validate:"gte=0"`
	Load15Min float64 `json:"load_15min" validate:"gte=0"`
}

type NetworkUsagePayload struct {
	ReceivedBps    float64 `json:"received_bps" validate:"gte=0"`
	TransmittedBps float64 `json:"transmitted_bps" validate:"gte=0"`
}

// TopProcessesPayload 进程榜单。by_cpu/by_memory 仅用于上报，
// 落库时分别展开成 process_type 为 cpu/memory 的明细行
type TopProcessesPayload struct {
	ByCPU    []ProcessPayload `json:"by_cpu" validate:"omitempty,dive"`
	ByMemory []ProcessPayload `json:"by_memory" validate:"omitempty,dive"`
}

type ProcessPayload struct {
	PID        int     `json:"pid" validate:"gte=0"`
	User       string  `json:"user"`
	CPUPercent float64 `json:"cpu_percent" validate:"gte=0"`
	MemPercent float64 `json:"mem_percent" validate:"gte=0,lte=100"`
	Command    string  `json:"command"`
}

type DiskUsagePayload struct {
	Filesystem     string  `json:"filesystem" validate:"required"`
	PercentageUsed float64 `json:"percentage_used" validate:"gte=0,lte=100"`
	TotalSize      string  `json:"total_size"`
	UsedSize       string  `json:"used_size"`
	AvailableSize  string  `json:"available_size"`
}

type TopDiskConsumerPayload struct {
	Size string `json:"size" validate:"required"`
	Path string `json:"path" validate:"required"`
}

// Round2 百分比、负载等数值统一保留两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
