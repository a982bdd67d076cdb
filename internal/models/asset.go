package models

import "time"

// AssetInfo 主机静态资产信息，随快照一次性写入
type AssetInfo struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	SnapshotID string `gorm:"uniqueIndex;not null" json:"snapshot_id"` // 所属快照ID
	Hostname   string `json:"hostname"`                                // 资产上报的主机名（与快照冗余，保持上报结构）

	OS             *OSInfo             `gorm:"foreignKey:AssetInfoID;constraint:OnDelete:CASCADE" json:"os"`
	System         *SystemInfo         `gorm:"foreignKey:AssetInfoID;constraint:OnDelete:CASCADE" json:"system"`
	CPU            *CPUInfo            `gorm:"foreignKey:AssetInfoID;constraint:OnDelete:CASCADE" json:"cpu"`
	Memory         *MemoryInfo         `gorm:"foreignKey:AssetInfoID;constraint:OnDelete:CASCADE" json:"memory"`
	Virtualization *VirtualizationInfo `gorm:"foreignKey:AssetInfoID;constraint:OnDelete:CASCADE" json:"virtualization"`

	Disks             []DiskInfo             `gorm:"foreignKey:AssetInfoID;constraint:OnDelete:CASCADE" json:"disks"`
	NetworkInterfaces []NetworkInterfaceInfo `gorm:"foreignKey:AssetInfoID;constraint:OnDelete:CASCADE" json:"network_interfaces"`
	WindowsUpdates    []WindowsUpdate        `gorm:"foreignKey:AssetInfoID;constraint:OnDelete:CASCADE" json:"windows_updates"`
}

func (AssetInfo) TableName() string {
	return "asset_infos"
}

// OSInfo 操作系统信息
type OSInfo struct {
	ID            uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	AssetInfoID   uint   `gorm:"uniqueIndex;not null" json:"-"`
	PrettyName    string `json:"pretty_name"`    // 操作系统名称（如 Ubuntu 22.04.3 LTS）
	KernelVersion string `json:"kernel_version"` // 内核版本
}

func (OSInfo) TableName() string {
	return "os_infos"
}

// SystemInfo 系统硬件信息
type SystemInfo struct {
	ID                  uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	AssetInfoID         uint       `gorm:"uniqueIndex;not null" json:"-"`
	Manufacturer        string     `json:"manufacturer"`            // 厂商
	ProductName         string     `json:"product_name"`            // 产品型号
	SerialNumber        string     `json:"serial_number"`           // 序列号
	BiosVersion         string     `json:"bios_version"`            // BIOS/UEFI 版本
	ChassisType         string     `json:"chassis_type"`            // 机箱类型
	UptimeInitial       string     `json:"uptime_initial"`          // 采集时的系统运行时长
	LastUpdateCheckTime *time.Time `json:"last_update_check_time"`  // 最近一次更新检查时间（可空）
	PendingUpdatesCount int        `json:"pending_updates_count"`   // 待安装的更新数量
}

func (SystemInfo) TableName() string {
	return "system_infos"
}

// CPUInfo CPU信息
type CPUInfo struct {
	ID                     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	AssetInfoID            uint   `gorm:"uniqueIndex;not null" json:"-"`
	ModelName              string `json:"model_name"`                // CPU型号
	VendorID               string `json:"vendor_id"`                 // 厂商标识
	TotalLogicalCPUs       int    `json:"total_logical_cpus"`        // 逻辑核数
	PhysicalCoresPerSocket int    `json:"physical_cores_per_socket"` // 每插槽物理核数
	Architecture           string `json:"architecture"`              // 架构（如 x86_64）
}

func (CPUInfo) TableName() string {
	return "cpu_infos"
}

// MemoryInfo 内存信息
type MemoryInfo struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	AssetInfoID  uint   `gorm:"uniqueIndex;not null" json:"-"`
	TotalMB      int    `json:"total_mb"`      // 总内存(MB)
	Speed        string `json:"speed"`         // 内存频率（如 2400 MHz）
	ModulesCount int    `json:"modules_count"` // 内存条数量
}

func (MemoryInfo) TableName() string {
	return "memory_infos"
}

// VirtualizationInfo 虚拟化信息
type VirtualizationInfo struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	AssetInfoID uint   `gorm:"uniqueIndex;not null" json:"-"`
	IsVM        bool   `json:"is_vm"`      // 是否为虚拟机
	Hypervisor  string `json:"hypervisor"` // 虚拟化平台名称
}

func (VirtualizationInfo) TableName() string {
	return "virtualization_infos"
}

// DiskInfo 单块磁盘信息，名称在同一资产内唯一
type DiskInfo struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	AssetInfoID uint   `gorm:"uniqueIndex:ux_disk_asset_name;not null" json:"-"`
	Name        string `gorm:"uniqueIndex:ux_disk_asset_name;not null" json:"name"` // 设备名（如 sda）
	Size        string `json:"size"`                                                // 容量（如 256G）
	Model       string `json:"model"`                                               // 磁盘型号
	Serial      string `json:"serial"`                                              // 磁盘序列号
}

func (DiskInfo) TableName() string {
	return "disk_infos"
}

// NetworkInterfaceInfo 单个网卡信息，名称在同一资产内唯一
type NetworkInterfaceInfo struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	AssetInfoID uint    `gorm:"uniqueIndex:ux_iface_asset_name;not null" json:"-"`
	Name        string  `gorm:"uniqueIndex:ux_iface_asset_name;not null" json:"name"` // 接口名（如 eth0）
	MACAddress  string  `gorm:"column:mac_address" json:"mac_address"`                // MAC地址
	IPv4Address *string `gorm:"column:ipv4_address" json:"ipv4_address"`              // IPv4地址（可空）
	IPv6Address *string `gorm:"column:ipv6_address" json:"ipv6_address"`              // IPv6地址（可空）
}

func (NetworkInterfaceInfo) TableName() string {
	return "network_interface_infos"
}

// WindowsUpdate Windows 更新记录（仅 Windows 主机上报）
type WindowsUpdate struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AssetInfoID uint      `gorm:"index;not null" json:"asset_info_id"`
	KBID        string    `gorm:"column:kb_id;index" json:"kb_id"`  // KB编号
	Title       string    `json:"title"`                      // 更新标题
	InstalledOn time.Time `gorm:"index" json:"installed_on"`  // 安装时间
	Status      string    `gorm:"index" json:"status"`        // 状态
}

func (WindowsUpdate) TableName() string {
	return "windows_updates"
}
