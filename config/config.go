package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/trackit/core"
	"github.com/rushteam/trackit/registry"
	"github.com/rushteam/trackit/store"
)

// Config 是服务入口的完整配置（YAML）。
//
// 示例：
//
//	source:
//	  type: fs
//	  root: ./artifacts
//	variants:
//	  - name: naive_features
//	    bundle: naive_features.json
//	  - name: pca_features
//	    bundle: pca_features.json
//	engine:
//	  cluster_fallback_min: 0
//	  default_count: 10
//	  default_strategy: global
//	  filter: ""
type Config struct {
	Source struct {
		Type  string `yaml:"type"` // fs / redis
		Root  string `yaml:"root"` // fs 工件根目录
		Redis struct {
			Addr string `yaml:"addr"`
			DB   int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"source"`

	Variants []VariantConfig `yaml:"variants"`

	Engine struct {
		ClusterFallbackMin int    `yaml:"cluster_fallback_min"`
		DefaultCount       int    `yaml:"default_count"`
		DefaultStrategy    string `yaml:"default_strategy"`
		Filter             string `yaml:"filter"`
	} `yaml:"engine"`
}

// VariantConfig 是单个变体的清单条目。
type VariantConfig struct {
	Name   string `yaml:"name"`
	Bundle string `yaml:"bundle"`
}

// Load 从 YAML 文件加载并校验配置。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置：至少一个变体、变体名不重复、策略合法、来源类型已知。
func (c *Config) Validate() error {
	if len(c.Variants) == 0 {
		return fmt.Errorf("config: at least one variant is required")
	}
	seen := make(map[string]struct{}, len(c.Variants))
	for _, v := range c.Variants {
		if v.Name == "" || v.Bundle == "" {
			return fmt.Errorf("config: variant name and bundle are required")
		}
		if _, dup := seen[v.Name]; dup {
			return fmt.Errorf("config: duplicate variant %q", v.Name)
		}
		seen[v.Name] = struct{}{}
	}

	switch c.Source.Type {
	case "", "fs", "redis":
	default:
		return fmt.Errorf("config: unknown source type %q (supported: fs, redis)", c.Source.Type)
	}

	if c.Engine.DefaultStrategy != "" {
		if _, err := core.ParseStrategy(c.Engine.DefaultStrategy); err != nil {
			return err
		}
	}
	return nil
}

// BuildSource 根据配置创建工件源。默认 fs。
func (c *Config) BuildSource() (store.BundleSource, error) {
	switch c.Source.Type {
	case "redis":
		return store.NewRedisSource(c.Source.Redis.Addr, c.Source.Redis.DB)
	default:
		return store.NewFSSource(c.Source.Root), nil
	}
}

// VariantRefs 把清单转换为 Registry 的加载输入（保持配置顺序，
// 第一个加载成功的变体会成为初始活跃变体）。
func (c *Config) VariantRefs() []registry.VariantRef {
	refs := make([]registry.VariantRef, 0, len(c.Variants))
	for _, v := range c.Variants {
		refs = append(refs, registry.VariantRef{Name: v.Name, Location: v.Bundle})
	}
	return refs
}

// DefaultStrategy 返回解析后的默认策略（未配置时为 global）。
func (c *Config) DefaultStrategy() core.Strategy {
	if c.Engine.DefaultStrategy == "" {
		return core.StrategyGlobal
	}
	return core.Strategy(c.Engine.DefaultStrategy)
}
