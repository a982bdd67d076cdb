package config

import (
	"os"

	"github.com/go-errors/errors"
	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Agent    AgentConfig    `yaml:"agent"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Addr string `yaml:"addr"` // 监听地址，如 :8080
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite 或 postgres
	DSN  string `yaml:"dsn"`  // 连接串
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`      // debug/info/warn/error
	File       string `yaml:"file"`       // 日志文件路径，为空时输出到标准输出
	MaxSize    int    `yaml:"maxSize"`    // 单文件大小上限(MB)
	MaxBackups int    `yaml:"maxBackups"` // 保留的旧日志文件数
	MaxAge     int    `yaml:"maxAge"`     // 保留天数
	Compress   bool   `yaml:"compress"`   // 是否压缩旧日志
}

// AgentConfig 探针配置
type AgentConfig struct {
	ServerURL string `yaml:"serverUrl"` // 服务端地址，如 http://127.0.0.1:8080
	Interval  int    `yaml:"interval"`  // 上报间隔（秒）
	Hostname  string `yaml:"hostname"`  // 主机名覆盖，为空时使用系统主机名
	TopN      int    `yaml:"topN"`      // 进程榜单条数
}

// Load 读取并解析配置文件，同时填充缺省值
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapPrefix(err, "读取配置文件失败", 0)
	}

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, errors.WrapPrefix(err, "解析配置文件失败", 0)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.DSN == "" {
		c.Database.DSN = "marmot.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = 100
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAge == 0 {
		c.Log.MaxAge = 30
	}
	if c.Agent.ServerURL == "" {
		c.Agent.ServerURL = "http://127.0.0.1:8080"
	}
	if c.Agent.Interval <= 0 {
		c.Agent.Interval = 60
	}
	if c.Agent.TopN <= 0 {
		c.Agent.TopN = 5
	}
}
