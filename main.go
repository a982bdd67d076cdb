package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dushixiang/marmot/internal/config"
	"github.com/dushixiang/marmot/internal/server"
	"github.com/dushixiang/marmot/internal/xlog"
	"github.com/dushixiang/marmot/pkg/agent"
	"github.com/dushixiang/marmot/pkg/agent/collector"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "marmot",
		Short:         "服务器快照采集平台",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "配置文件路径")

	root.AddCommand(serveCommand(), agentCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动服务端，接收探针上报并提供查询接口",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logger := xlog.New(cfg.Log)
			defer func() { _ = logger.Sync() }()

			srv, err := server.New(logger, cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
}

func agentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "agent",
		Short: "启动探针，定期采集本机快照并上报",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			agent.InitLogger(&agent.LogConfig{
				Level:      cfg.Log.Level,
				File:       cfg.Log.File,
				MaxSize:    cfg.Log.MaxSize,
				MaxBackups: cfg.Log.MaxBackups,
				MaxAge:     cfg.Log.MaxAge,
				Compress:   cfg.Log.Compress,
			})

			reporter := agent.NewReporter(
				cfg.Agent.ServerURL,
				cfg.Agent.Interval,
				collector.New(cfg.Agent.Hostname, cfg.Agent.TopN),
			)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return reporter.Run(ctx)
		},
	}
}
