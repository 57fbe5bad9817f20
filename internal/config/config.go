// Package config 提供应用配置管理。
//
// 配置加载优先级 (从低到高)：
//  1. 默认值 - DefaultConfig() 函数中定义
//  2. 配置文件 - config.yaml / config/config.yaml / ~/.envgen.yaml / /etc/envgen/config.yaml
//  3. 环境变量 - ENVGEN_ 前缀
//  4. CLI flags - 最高优先级
package config

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/260831-go-pkg-envgen/pkg/cfgm"
	"github.com/lwmacct/260831-go-pkg-envgen/pkg/envfile"
)

// Config 应用配置
type Config struct {
	Generate GenerateConfig `koanf:"generate" desc:"生成配置"`
	Resolver ResolverConfig `koanf:"resolver" desc:"命令求值配置"`
}

// GenerateConfig 生成配置
type GenerateConfig struct {
	Template string `koanf:"template" desc:"模板文件路径"`
	Output   string `koanf:"output" desc:"输出文件路径"`
	Marker   string `koanf:"marker" desc:"标记文件路径: 存在则截断输出, 不存在则追加; 为空时总是截断"`
}

// ResolverConfig 命令求值配置
type ResolverConfig struct {
	Prefixes []string      `koanf:"prefixes" desc:"识别为命令的前缀 token"`
	Shell    string        `koanf:"shell" desc:"执行命令使用的 shell"`
	Timeout  time.Duration `koanf:"timeout" desc:"单条命令超时时间"`
	OnError  string        `koanf:"on_error" desc:"命令失败策略: abort | empty | skip"`
}

// DefaultConfig 返回默认配置
// 注意：internal/command/command.go 中的 Defaults 变量引用此函数以实现单一配置来源。
func DefaultConfig() Config {
	return Config{
		Generate: GenerateConfig{
			Template: ".env.example",
			Output:   ".env",
			Marker:   "",
		},
		Resolver: ResolverConfig{
			Prefixes: []string{"kubectl", "aws"},
			Shell:    "sh",
			Timeout:  30 * time.Second,
			OnError:  string(envfile.OnErrorAbort),
		},
	}
}

func Load(cmd *cli.Command, appName string, opts ...cfgm.Option) (*Config, error) {
	return cfgm.Load(
		DefaultConfig(),
		append([]cfgm.Option{
			cfgm.WithCommand(cmd),
			cfgm.WithConfigPaths(cfgm.DefaultPaths(appName)...),
			cfgm.WithEnvPrefix("ENVGEN_"),
			// on_error 含下划线，前缀规则无法映射，单独绑定
			cfgm.WithEnvBinding("ENVGEN_ON_ERROR", "resolver.on_error"),
		}, opts...)...,
	)
}

// NewResolver 根据 Resolver 配置构建 envfile.Resolver。
func (c *Config) NewResolver() (*envfile.Resolver, error) {
	policy, err := envfile.ParseErrorPolicy(c.Resolver.OnError)
	if err != nil {
		return nil, fmt.Errorf("invalid resolver config: %w", err)
	}

	return &envfile.Resolver{
		Prefixes: c.Resolver.Prefixes,
		Shell:    c.Resolver.Shell,
		Timeout:  c.Resolver.Timeout,
		OnError:  policy,
	}, nil
}
