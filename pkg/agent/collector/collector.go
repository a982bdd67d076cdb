package collector

import (
	"time"

	"github.com/dushixiang/marmot/internal/protocol"
)

// Collector 快照采集器，一次 Collect 产出一份完整的上报数据
type Collector struct {
	hostname string // 主机名覆盖，为空时使用系统主机名
	topN     int    // 进程榜单条数
}

func New(hostname string, topN int) *Collector {
	if topN <= 0 {
		topN = 5
	}
	return &Collector{
		hostname: hostname,
		topN:     topN,
	}
}

// Collect 采集一份完整快照。资产信息尽力而为，采不到的字段留空，
// 指标部分任何一项失败则整次采集失败
func (c *Collector) Collect() (*protocol.SnapshotPayload, error) {
	asset, err := collectAssetInfo()
	if err != nil {
		return nil, err
	}

	metrics, err := collectMetrics(c.topN)
	if err != nil {
		return nil, err
	}

	hostname := c.hostname
	if hostname == "" {
		hostname = asset.Hostname
	}

	return &protocol.SnapshotPayload{
		Timestamp: time.Now().UTC(),
		Hostname:  hostname,
		AssetInfo: asset,
		Metrics:   metrics,
	}, nil
}
