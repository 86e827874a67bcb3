// Package config 加载服务与引擎的部署配置（YAML）。
// 注意：算法版本与权重表是编译期常量，不在配置里；这里只放部署参数。
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config 是 matchd 的配置结构。
type Config struct {
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	Engine EngineConfig `yaml:"engine"`
	Feast  FeastConfig  `yaml:"feast"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"` // 监听地址，例如 ":8080"
}

type RedisConfig struct {
	// Addr 为空时回退到内存存储（开发/单测）
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

type EngineConfig struct {
	PoolSize          int      `yaml:"pool_size"`           // 候选池上限，0 取默认
	CacheTTLSeconds   int      `yaml:"cache_ttl_seconds"`   // 结果缓存 TTL，0 取默认
	DecisionWindowSec int      `yaml:"decision_window_sec"` // 决策回看窗口，0 取默认（7 天）
	LookupTimeoutMS   int      `yaml:"lookup_timeout_ms"`   // 每路排除查询超时，0 跟随请求
	Rules             []string `yaml:"rules"`               // CEL 准入规则
}

type FeastConfig struct {
	// Host 为空时不接特征服务
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Project string `yaml:"project"`
	Feature string `yaml:"feature"` // 活跃时间特征全名
}

// Load 从 YAML 文件加载配置。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default 返回零依赖可跑的默认配置。
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}
