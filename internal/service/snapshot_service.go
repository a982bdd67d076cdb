package service

import (
	"context"
	"time"

	"github.com/dushixiang/marmot/internal/models"
	"github.com/dushixiang/marmot/internal/protocol"
	"github.com/dushixiang/marmot/internal/repo"
	"github.com/go-orz/orz"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SnapshotService 快照服务：校验上报数据并原子落库，同时提供查询和删除
type SnapshotService struct {
	logger *zap.Logger
	*orz.Service
	snapshotRepo *repo.SnapshotRepo
	validate     *validator.Validate
	trans        ut.Translator
}

func NewSnapshotService(logger *zap.Logger, db *gorm.DB) *SnapshotService {
	validate, trans := newPayloadValidator()
	return &SnapshotService{
		logger:       logger,
		Service:      orz.NewService(db),
		snapshotRepo: repo.NewSnapshotRepo(db),
		validate:     validate,
		trans:        trans,
	}
}

// Ingest 校验一份完整上报，构建快照聚合后在单个事务内整体写入。
// 校验失败返回 ValidationError 且不写任何行；写入阶段任何约束冲突整体回滚
func (s *SnapshotService) Ingest(ctx context.Context, payload *protocol.SnapshotPayload) (*models.Snapshot, error) {
	if err := s.validate.Struct(payload); err != nil {
		return nil, fieldErrors(err, s.trans)
	}

	snapshot := buildSnapshot(payload)

	err := s.Transaction(ctx, func(ctx context.Context) error {
		return s.snapshotRepo.Create(ctx, snapshot)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("快照写入成功",
		zap.String("id", snapshot.ID),
		zap.String("hostname", snapshot.Hostname),
		zap.Time("timestamp", snapshot.Timestamp),
	)
	return snapshot, nil
}

// FindById 查询单条快照及其全部嵌套数据
func (s *SnapshotService) FindById(ctx context.Context, id string) (models.Snapshot, error) {
	return s.snapshotRepo.FindById(ctx, id)
}

// FindByFilter 按条件分页查询快照
func (s *SnapshotService) FindByFilter(ctx context.Context, filter repo.SnapshotFilter) ([]models.Snapshot, int64, error) {
	return s.snapshotRepo.FindByFilter(ctx, filter)
}

// DeleteById 删除快照，整个子树级联删除
func (s *SnapshotService) DeleteById(ctx context.Context, id string) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.snapshotRepo.DeleteById(ctx, id); err != nil {
			return err
		}
		s.logger.Info("快照删除成功", zap.String("id", id))
		return nil
	})
}

// buildSnapshot 把一份校验过的上报翻译成完整的快照聚合。
// 先在内存中组装整个对象图，再交给 GORM 一次性写入
func buildSnapshot(payload *protocol.SnapshotPayload) *models.Snapshot {
	return &models.Snapshot{
		Timestamp:  payload.Timestamp.UTC(),
		Hostname:   payload.Hostname,
		AssetInfo:  buildAssetInfo(payload.AssetInfo),
		MetricData: buildMetricData(payload.Metrics),
	}
}

func buildAssetInfo(payload *protocol.AssetInfoPayload) *models.AssetInfo {
	asset := &models.AssetInfo{
		Hostname: payload.Hostname,
		OS: &models.OSInfo{
			PrettyName:    payload.OS.PrettyName,
			KernelVersion: payload.OS.KernelVersion,
		},
		System: &models.SystemInfo{
			Manufacturer:        payload.System.Manufacturer,
			ProductName:         payload.System.ProductName,
			SerialNumber:        payload.System.SerialNumber,
			BiosVersion:         payload.System.BiosVersion,
			ChassisType:         payload.System.ChassisType,
			UptimeInitial:       payload.System.UptimeInitial,
			LastUpdateCheckTime: normalizeTime(payload.System.LastUpdateCheckTime),
			PendingUpdatesCount: payload.System.PendingUpdatesCount,
		},
		CPU: &models.CPUInfo{
			ModelName:              payload.CPU.ModelName,
			VendorID:               payload.CPU.VendorID,
			TotalLogicalCPUs:       payload.CPU.TotalLogicalCPUs,
			PhysicalCoresPerSocket: payload.CPU.PhysicalCoresPerSocket,
			Architecture:           payload.CPU.Architecture,
		},
		Memory: &models.MemoryInfo{
			TotalMB:      payload.Memory.TotalMB,
			Speed:        payload.Memory.Speed,
			ModulesCount: payload.Memory.ModulesCount,
		},
		Virtualization: &models.VirtualizationInfo{
			IsVM:       payload.Virtualization.IsVM,
			Hypervisor: payload.Virtualization.Hypervisor,
		},
	}

	// 列表字段缺省时保持空切片，不视为错误
	asset.Disks = make([]models.DiskInfo, 0, len(payload.Disks))
	for _, disk := range payload.Disks {
		asset.Disks = append(asset.Disks, models.DiskInfo{
			Name:   disk.Name,
			Size:   disk.Size,
			Model:  disk.Model,
			Serial: disk.Serial,
		})
	}

	asset.NetworkInterfaces = make([]models.NetworkInterfaceInfo, 0, len(payload.NetworkInterfaces))
	for _, iface := range payload.NetworkInterfaces {
		asset.NetworkInterfaces = append(asset.NetworkInterfaces, models.NetworkInterfaceInfo{
			Name:        iface.Name,
			MACAddress:  iface.MACAddress,
			IPv4Address: iface.IPv4Address,
			IPv6Address: iface.IPv6Address,
		})
	}

	asset.WindowsUpdates = make([]models.WindowsUpdate, 0, len(payload.WindowsUpdates))
	for _, update := range payload.WindowsUpdates {
		asset.WindowsUpdates = append(asset.WindowsUpdates, models.WindowsUpdate{
			KBID:        update.KBID,
			Title:       update.Title,
			InstalledOn: update.InstalledOn.UTC(),
			Status:      update.Status,
		})
	}

	return asset
}

func buildMetricData(payload *protocol.MetricsPayload) *models.MetricData {
	data := &models.MetricData{
		MemoryUsage: &models.MemoryUsageMetric{
			TotalMB:        payload.MemoryUsage.TotalMB,
			UsedMB:         payload.MemoryUsage.UsedMB,
			FreeMB:         payload.MemoryUsage.FreeMB,
			AvailableMB:    payload.MemoryUsage.AvailableMB,
			PercentageUsed: protocol.Round2(payload.MemoryUsage.PercentageUsed),
		},
		CPULoad: &models.CPULoadMetric{
			Load1Min:  protocol.Round2(payload.CPULoad.Load1Min),
			Load5Min:  protocol.Round2(payload.CPULoad.Load5Min),
			Load15Min: protocol.Round2(payload.CPULoad.Load15Min),
		},
		NetworkUsage: &models.NetworkUsageMetric{
			ReceivedBps:    protocol.Round2(payload.NetworkUsage.ReceivedBps),
			TransmittedBps: protocol.Round2(payload.NetworkUsage.TransmittedBps),
		},
		TopProcesses: buildTopProcesses(payload.TopProcesses),
	}

	data.DiskUsage = make([]models.DiskUsageMetric, 0, len(payload.DiskUsage))
	for _, usage := range payload.DiskUsage {
		data.DiskUsage = append(data.DiskUsage, models.DiskUsageMetric{
			Filesystem:     usage.Filesystem,
			PercentageUsed: protocol.Round2(usage.PercentageUsed),
			TotalSize:      usage.TotalSize,
			UsedSize:       usage.UsedSize,
			AvailableSize:  usage.AvailableSize,
		})
	}

	data.TopDiskConsumers = make([]models.TopDiskConsumerMetric, 0, len(payload.TopDiskConsumers))
	for _, consumer := range payload.TopDiskConsumers {
		data.TopDiskConsumers = append(data.TopDiskConsumers, models.TopDiskConsumerMetric{
			Size: consumer.Size,
			Path: consumer.Path,
		})
	}

	return data
}

// buildTopProcesses 把 by_cpu/by_memory 两个上报列表展开成带归类标记的明细行。
// process_type 只会是 cpu 或 memory，不接受上报数据直接指定
func buildTopProcesses(payload *protocol.TopProcessesPayload) *models.TopProcessesMetric {
	metric := &models.TopProcessesMetric{
		Processes: make([]models.ProcessDetail, 0, len(payload.ByCPU)+len(payload.ByMemory)),
	}
	for _, process := range payload.ByCPU {
		metric.Processes = append(metric.Processes, buildProcessDetail(models.ProcessTypeCPU, process))
	}
	for _, process := range payload.ByMemory {
		metric.Processes = append(metric.Processes, buildProcessDetail(models.ProcessTypeMemory, process))
	}
	return metric
}

func buildProcessDetail(processType string, payload protocol.ProcessPayload) models.ProcessDetail {
	return models.ProcessDetail{
		ProcessType: processType,
		PID:         payload.PID,
		User:        payload.User,
		CPUPercent:  protocol.Round2(payload.CPUPercent),
		MemPercent:  protocol.Round2(payload.MemPercent),
		Command:     payload.Command,
	}
}

func normalizeTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
