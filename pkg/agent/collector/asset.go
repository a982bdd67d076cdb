package collector

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/dushixiang/marmot/internal/protocol"
	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	gopsutilnet "github.com/shirou/gopsutil/v4/net"
)

// collectAssetInfo 采集静态资产信息
func collectAssetInfo() (*protocol.AssetInfoPayload, error) {
	hostInfo, err := host.Info()
	if err != nil {
		return nil, fmt.Errorf("采集主机信息失败: %w", err)
	}

	asset := &protocol.AssetInfoPayload{
		Hostname: hostInfo.Hostname,
		OS: &protocol.OSPayload{
			PrettyName:    strings.TrimSpace(hostInfo.Platform + " " + hostInfo.PlatformVersion),
			KernelVersion: hostInfo.KernelVersion,
		},
		System:         collectSystemInfo(hostInfo.Uptime),
		CPU:            collectCPUInfo(hostInfo.KernelArch),
		Memory:         collectMemoryInfo(),
		Virtualization: collectVirtualizationInfo(hostInfo),
	}

	asset.Disks = collectDisks()
	asset.NetworkInterfaces = collectNetworkInterfaces()
	// Windows 更新历史只有 Windows 主机上报，当前采集器面向 Linux
	asset.WindowsUpdates = []protocol.WindowsUpdatePayload{}

	return asset, nil
}

// collectSystemInfo 硬件信息来自 DMI，非 Linux 或无权限时字段留空
func collectSystemInfo(uptimeSeconds uint64) *protocol.SystemPayload {
	return &protocol.SystemPayload{
		Manufacturer:  readDMI("sys_vendor"),
		ProductName:   readDMI("product_name"),
		SerialNumber:  readDMI("product_serial"),
		BiosVersion:   readDMI("bios_version"),
		ChassisType:   readDMI("chassis_type"),
		UptimeInitial: formatUptime(uptimeSeconds),
	}
}

func collectCPUInfo(arch string) *protocol.CPUPayload {
	payload := &protocol.CPUPayload{Architecture: arch}
	if arch == "" {
		payload.Architecture = runtime.GOARCH
	}

	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		payload.ModelName = infos[0].ModelName
		payload.VendorID = infos[0].VendorID
	}
	if logical, err := cpu.Counts(true); err == nil {
		payload.TotalLogicalCPUs = logical
	}
	if physical, err := cpu.Counts(false); err == nil {
		payload.PhysicalCoresPerSocket = physical
	}
	return payload
}

func collectMemoryInfo() *protocol.MemoryPayload {
	payload := &protocol.MemoryPayload{}
	if vm, err := mem.VirtualMemory(); err == nil {
		payload.TotalMB = int(vm.Total / 1024 / 1024)
	}
	// 内存频率和条数需要 dmidecode，普通权限下留空
	return payload
}

func collectVirtualizationInfo(hostInfo *host.InfoStat) *protocol.VirtualizationPayload {
	return &protocol.VirtualizationPayload{
		IsVM:       hostInfo.VirtualizationRole == "guest" && hostInfo.VirtualizationSystem != "",
		Hypervisor: hostInfo.VirtualizationSystem,
	}
}

// collectDisks 从 /sys/block 枚举物理磁盘，非 Linux 系统返回空列表
func collectDisks() []protocol.DiskPayload {
	disks := []protocol.DiskPayload{}

	entries, err := os.ReadDir("/sys/block")
	if err != nil {
		return disks
	}

	for _, entry := range entries {
		name := entry.Name()
		// 跳过虚拟设备
		if strings.HasPrefix(name, "loop") ||
			strings.HasPrefix(name, "ram") ||
			strings.HasPrefix(name, "zram") ||
			strings.HasPrefix(name, "dm-") {
			continue
		}

		disk := protocol.DiskPayload{
			Name:   name,
			Size:   readBlockSize(name),
			Model:  readSysFile(filepath.Join("/sys/block", name, "device", "model")),
			Serial: readSysFile(filepath.Join("/sys/block", name, "device", "serial")),
		}
		if disk.Size == "" {
			continue
		}
		disks = append(disks, disk)
	}
	return disks
}

// readBlockSize 块设备的 size 文件记录的是 512 字节扇区数
func readBlockSize(name string) string {
	raw := readSysFile(filepath.Join("/sys/block", name, "size"))
	if raw == "" {
		return ""
	}
	sectors, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || sectors == 0 {
		return ""
	}
	return humanize.IBytes(sectors * 512)
}

func collectNetworkInterfaces() []protocol.NetworkInterfacePayload {
	interfaces := []protocol.NetworkInterfacePayload{}

	stats, err := gopsutilnet.Interfaces()
	if err != nil {
		return interfaces
	}

	for _, stat := range stats {
		if stat.Name == "lo" {
			continue
		}

		iface := protocol.NetworkInterfacePayload{
			Name:       stat.Name,
			MACAddress: stat.HardwareAddr,
		}
		for _, addr := range stat.Addrs {
			// 地址可能带 CIDR 前缀长度
			ipText := addr.Addr
			if idx := strings.Index(ipText, "/"); idx >= 0 {
				ipText = ipText[:idx]
			}
			ip := net.ParseIP(ipText)
			if ip == nil {
				continue
			}
			value := ipText
			if ip.To4() != nil {
				if iface.IPv4Address == nil {
					iface.IPv4Address = &value
				}
			} else if iface.IPv6Address == nil {
				iface.IPv6Address = &value
			}
		}
		interfaces = append(interfaces, iface)
	}
	return interfaces
}

func readDMI(name string) string {
	return readSysFile(filepath.Join("/sys/class/dmi/id", name))
}

func readSysFile(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(content))
}

// formatUptime 把秒数格式化成 "up 3 days, 4:05" 的形式
func formatUptime(seconds uint64) string {
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60

	if days > 0 {
		return fmt.Sprintf("up %d days, %d:%02d", days, hours, minutes)
	}
	return fmt.Sprintf("up %d:%02d", hours, minutes)
}
