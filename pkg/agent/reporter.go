package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dushixiang/marmot/pkg/agent/collector"
	"github.com/jpillora/backoff"
	"github.com/robfig/cron/v3"
)

const (
	reportPath  = "/api/snapshots"
	maxAttempts = 3
)

// Reporter 周期性采集快照并上报服务端
type Reporter struct {
	serverURL string
	interval  int // 秒
	collector *collector.Collector
	client    *http.Client
	cron      *cron.Cron
}

func NewReporter(serverURL string, interval int, c *collector.Collector) *Reporter {
	return &Reporter{
		serverURL: strings.TrimRight(serverURL, "/"),
		interval:  interval,
		collector: c,
		client:    &http.Client{Timeout: 30 * time.Second},
		cron:      cron.New(cron.WithSeconds()),
	}
}

// Run 启动上报循环，直到 ctx 取消。启动后先立即上报一次
func (r *Reporter) Run(ctx context.Context) error {
	r.reportOnce(ctx)

	spec := fmt.Sprintf("@every %ds", r.interval)
	if _, err := r.cron.AddFunc(spec, func() {
		r.reportOnce(ctx)
	}); err != nil {
		return err
	}

	slog.Info("探针启动", "server", r.serverURL, "interval", r.interval)
	r.cron.Start()

	<-ctx.Done()
	stopCtx := r.cron.Stop()
	<-stopCtx.Done()
	slog.Info("探针退出")
	return nil
}

// reportOnce 采集并上报一次，可重试的失败按指数退避最多尝试 maxAttempts 次
func (r *Reporter) reportOnce(ctx context.Context) {
	payload, err := r.collector.Collect()
	if err != nil {
		slog.Error("采集快照失败", "error", err)
		return
	}

	b := &backoff.Backoff{
		Min:    time.Second,
		Max:    30 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retryable, err := r.post(ctx, payload)
		if err == nil {
			slog.Info("快照上报成功", "hostname", payload.Hostname)
			return
		}
		if !retryable {
			slog.Error("快照被服务端拒绝，放弃重试", "error", err)
			return
		}

		slog.Warn("快照上报失败", "attempt", attempt, "error", err)
		if attempt == maxAttempts {
			return
		}

		select {
		case <-time.After(b.Duration()):
		case <-ctx.Done():
			return
		}
	}
}

// post 上报一份快照。服务端返回 4xx 说明数据本身有问题，重试无意义
func (r *Reporter) post(ctx context.Context, payload interface{}) (retryable bool, err error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.serverURL+reportPath, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated {
		return false, nil
	}

	message, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	err = fmt.Errorf("服务端返回 %d: %s", resp.StatusCode, string(message))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return false, err
	}
	return true, err
}
