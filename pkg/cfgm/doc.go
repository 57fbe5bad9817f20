// Package cfgm 提供通用的配置加载功能，可被外部项目复用。
//
// # 特性
//
// 使用泛型支持任意配置结构体类型，配置加载优先级 (从低到高)：
//  1. 默认值 - 通过 defaultConfig 参数传入
//  2. 配置文件 - 通过 [WithConfigPaths] 选项设置（或 [WithConfigBytes] 直接注入）
//  3. 环境变量(前缀) - 通过 [WithEnvPrefix] 选项启用
//  4. 环境变量(绑定) - 通过 [WithEnvBinding] 设置
//  5. CLI flags - 通过 [WithCommand] 选项设置，最高优先级
//
// # 快速开始
//
// 定义配置结构体，使用 koanf 和 desc 标签：
//
//	type Config struct {
//	    Name    string        `koanf:"name"    desc:"应用名称"`
//	    Timeout time.Duration `koanf:"timeout" desc:"超时时间"`
//	}
//
// 加载配置：
//
//	cfg, err := cfgm.Load(DefaultConfig(),
//	    cfgm.WithCommand(cmd),
//	    cfgm.WithConfigPaths(cfgm.DefaultPaths("myapp")...),
//	    cfgm.WithEnvPrefix("MYAPP_"),
//	)
//
// # 环境变量(前缀)
//
// 命名规则：前缀 + 大写的 koanf key，点号 (.) 转为下划线 (_)。
// 示例 (前缀为 "MYAPP_")：
//   - MYAPP_RESOLVER_SHELL → resolver.shell
//   - MYAPP_GENERATE_OUTPUT → generate.output
//
// koanf key 本身包含下划线时（如 resolver.on_error）无法通过前缀规则
// 映射，应使用 [WithEnvBinding] 直接绑定。
//
// # CLI Flag 映射
//
// koanf key 转为 kebab-case：点号与下划线都转为 "-"。
// 示例：resolver.on_error → --resolver-on-error。
// 仅当用户明确指定 flag 时才覆盖配置（cmd.IsSet 判定）。
//
// # 生成配置示例
//
// 使用 [ExampleYAML] 根据配置结构体生成带 desc 注释的 YAML 示例，
// 配合 [ConfigTestHelper] 在测试中落盘并校验配置键。
package cfgm
