package collector

import (
	"fmt"
	"sort"
	"time"

	"github.com/dushixiang/marmot/internal/protocol"
	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	gopsutilnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
)

// networkSampleInterval 网络速率通过两次采样求差得到
const networkSampleInterval = time.Second

// collectMetrics 采集即时性能指标
func collectMetrics(topN int) (*protocol.MetricsPayload, error) {
	memoryUsage, err := collectMemoryUsage()
	if err != nil {
		return nil, fmt.Errorf("采集内存用量失败: %w", err)
	}

	cpuLoad, err := collectCPULoad()
	if err != nil {
		return nil, fmt.Errorf("采集CPU负载失败: %w", err)
	}

	networkUsage, err := collectNetworkUsage()
	if err != nil {
		return nil, fmt.Errorf("采集网络速率失败: %w", err)
	}

	return &protocol.MetricsPayload{
		MemoryUsage:  memoryUsage,
		CPULoad:      cpuLoad,
		NetworkUsage: networkUsage,
		TopProcesses: collectTopProcesses(topN),
		DiskUsage:    collectDiskUsage(),
		// TODO: 目录体积扫描开销大，等做成可配置的采集项后再上报
		TopDiskConsumers: []protocol.TopDiskConsumerPayload{},
	}, nil
}

func collectMemoryUsage() (*protocol.MemoryUsagePayload, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, err
	}
	return &protocol.MemoryUsagePayload{
		TotalMB:        int(vm.Total / 1024 / 1024),
		UsedMB:         int(vm.Used / 1024 / 1024),
		FreeMB:         int(vm.Free / 1024 / 1024),
		AvailableMB:    int(vm.Available / 1024 / 1024),
		PercentageUsed: protocol.Round2(vm.UsedPercent),
	}, nil
}

func collectCPULoad() (*protocol.CPULoadPayload, error) {
	avg, err := load.Avg()
	if err != nil {
		return nil, err
	}
	return &protocol.CPULoadPayload{
		Load1Min:  protocol.Round2(avg.Load1),
		Load5Min:  protocol.Round2(avg.Load5),
		Load15Min: protocol.Round2(avg.Load15),
	}, nil
}

// collectNetworkUsage 两次采样所有网卡的总收发字节数，差值即为速率
func collectNetworkUsage() (*protocol.NetworkUsagePayload, error) {
	before, err := gopsutilnet.IOCounters(false)
	if err != nil {
		return nil, err
	}
	if len(before) == 0 {
		return nil, fmt.Errorf("未读取到网络计数器")
	}

	time.Sleep(networkSampleInterval)

	after, err := gopsutilnet.IOCounters(false)
	if err != nil {
		return nil, err
	}
	if len(after) == 0 {
		return nil, fmt.Errorf("未读取到网络计数器")
	}

	return &protocol.NetworkUsagePayload{
		ReceivedBps:    deltaRate(before[0].BytesRecv, after[0].BytesRecv),
		TransmittedBps: deltaRate(before[0].BytesSent, after[0].BytesSent),
	}, nil
}

// deltaRate 计数器回绕时按 0 处理
func deltaRate(before, after uint64) float64 {
	if after < before {
		return 0
	}
	return protocol.Round2(float64(after-before) / networkSampleInterval.Seconds())
}

func collectDiskUsage() []protocol.DiskUsagePayload {
	usages := []protocol.DiskUsagePayload{}

	partitions, err := disk.Partitions(false)
	if err != nil {
		return usages
	}

	for _, partition := range partitions {
		usage, err := disk.Usage(partition.Mountpoint)
		if err != nil || usage.Total == 0 {
			continue
		}
		usages = append(usages, protocol.DiskUsagePayload{
			Filesystem:     partition.Device,
			PercentageUsed: protocol.Round2(usage.UsedPercent),
			TotalSize:      humanize.IBytes(usage.Total),
			UsedSize:       humanize.IBytes(usage.Used),
			AvailableSize:  humanize.IBytes(usage.Free),
		})
	}
	return usages
}

// collectTopProcesses 按 CPU 和内存占用分别取前 topN 个进程
func collectTopProcesses(topN int) *protocol.TopProcessesPayload {
	processes, err := process.Processes()
	if err != nil {
		return &protocol.TopProcessesPayload{
			ByCPU:    []protocol.ProcessPayload{},
			ByMemory: []protocol.ProcessPayload{},
		}
	}

	samples := make([]protocol.ProcessPayload, 0, len(processes))
	for _, p := range processes {
		cpuPercent, err := p.CPUPercent()
		if err != nil {
			continue
		}
		memPercent, err := p.MemoryPercent()
		if err != nil {
			continue
		}
		username, _ := p.Username()
		command, _ := p.Cmdline()
		if command == "" {
			continue
		}

		samples = append(samples, protocol.ProcessPayload{
			PID:        int(p.Pid),
			User:       username,
			CPUPercent: protocol.Round2(cpuPercent),
			MemPercent: protocol.Round2(float64(memPercent)),
			Command:    command,
		})
	}

	return &protocol.TopProcessesPayload{
		ByCPU:    topBy(samples, topN, func(a, b protocol.ProcessPayload) bool { return a.CPUPercent > b.CPUPercent }),
		ByMemory: topBy(samples, topN, func(a, b protocol.ProcessPayload) bool { return a.MemPercent > b.MemPercent }),
	}
}

func topBy(samples []protocol.ProcessPayload, n int, less func(a, b protocol.ProcessPayload) bool) []protocol.ProcessPayload {
	sorted := make([]protocol.ProcessPayload, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
