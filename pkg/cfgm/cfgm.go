// Author: lwmacct (https://github.com/lwmacct)
package cfgm

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"
)

// Option 配置加载选项。
type Option func(*loader)

type loader struct {
	cmd         *cli.Command
	configPaths []string
	configBytes []byte
	envPrefix   string
	envEnabled  bool
	envBindings map[string]string
}

// WithCommand 设置 CLI 命令，用户明确指定的 flags 具有最高优先级。
func WithCommand(cmd *cli.Command) Option {
	return func(l *loader) { l.cmd = cmd }
}

// WithConfigPaths 设置配置文件搜索路径，按顺序搜索，找到第一个即停止。
func WithConfigPaths(paths ...string) Option {
	return func(l *loader) { l.configPaths = append(l.configPaths, paths...) }
}

// WithConfigBytes 直接注入配置内容（YAML），优先级与配置文件相同。
// 主要用于测试和嵌入式场景。
func WithConfigBytes(data []byte) Option {
	return func(l *loader) { l.configBytes = data }
}

// WithEnvPrefix 启用环境变量加载，只处理带指定前缀的变量。
func WithEnvPrefix(prefix string) Option {
	return func(l *loader) {
		l.envPrefix = prefix
		l.envEnabled = true
	}
}

// WithEnvBinding 将单个环境变量直接绑定到 koanf key，
// 用于前缀规则无法映射的 key（如包含下划线的 key）。
func WithEnvBinding(envName, koanfKey string) Option {
	return func(l *loader) {
		if l.envBindings == nil {
			l.envBindings = make(map[string]string)
		}
		l.envBindings[envName] = koanfKey
	}
}

// DefaultPaths 返回默认配置文件搜索路径。
// appName 可选，若提供则包含用户主目录和系统配置目录。
func DefaultPaths(appName ...string) []string {
	paths := []string{
		"config.yaml",
		"config/config.yaml",
	}

	if len(appName) > 0 && appName[0] != "" {
		name := appName[0]
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths, filepath.Join(home, "."+name+".yaml"))
		}
		paths = append(paths, "/etc/"+name+"/config.yaml")
	}

	return paths
}

// Load 按优先级合并各配置来源并解析到结构体。
//
// 泛型参数 T 为配置结构体类型，必须使用 koanf tag 标记字段。
func Load[T any](defaultConfig T, opts ...Option) (*T, error) {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}

	k := koanf.New(".")

	// 1️⃣ 默认值 (最低优先级)
	if err := k.Load(structs.Provider(defaultConfig, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	// 2️⃣ 配置文件 (按顺序搜索，找到第一个即停止)
	configLoaded := false
	for _, path := range l.configPaths {
		if err := k.Load(file.Provider(path), parserForPath(path)); err == nil {
			slog.Debug("Loaded config from file", "path", path)
			configLoaded = true
			break
		}
	}
	if !configLoaded && len(l.configPaths) > 0 {
		slog.Debug("No config file found, using defaults")
	}
	if l.configBytes != nil {
		if err := k.Load(rawbytes.Provider(l.configBytes), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config bytes: %w", err)
		}
	}

	// 3️⃣ 环境变量(前缀)
	if l.envEnabled {
		if err := loadEnv(k, l.envPrefix); err != nil {
			return nil, fmt.Errorf("failed to load env vars: %w", err)
		}
	}

	// 4️⃣ 环境变量(绑定)，优先级高于前缀规则
	for envName, key := range l.envBindings {
		if val, ok := os.LookupEnv(envName); ok {
			_ = k.Set(key, val)
		}
	}

	// 5️⃣ CLI flags (最高优先级，仅当用户明确指定时)
	if l.cmd != nil {
		applyCLIFlags(l.cmd, k, defaultConfig)
	}

	var cfg T
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// parserForPath 根据扩展名选择解析器，默认 YAML。
func parserForPath(path string) koanf.Parser {
	if strings.HasSuffix(path, ".json") {
		return json.Parser()
	}
	return yaml.Parser()
}

// loadEnv 将带前缀的环境变量解码为 koanf key 并载入。
// 只覆盖默认配置中已存在的 key，避免无关环境变量污染配置。
func loadEnv(k *koanf.Koanf, prefix string) error {
	decoder := envKeyDecoder(prefix)
	vars := make(map[string]interface{})
	for _, e := range os.Environ() {
		name, value, ok := strings.Cut(e, "=")
		if !ok || (prefix != "" && !strings.HasPrefix(name, prefix)) {
			continue
		}
		if key := decoder(name); key != "" && k.Exists(key) {
			vars[key] = value
		}
	}
	if len(vars) == 0 {
		return nil
	}

	return k.Load(confmap.Provider(vars, "."), nil)
}

// envKeyDecoder 返回环境变量名到 koanf key 的解码器。
// 规则：去掉前缀、转小写、下划线转点号。
func envKeyDecoder(prefix string) func(string) string {
	return func(name string) string {
		key := strings.TrimPrefix(name, prefix)
		return strings.ReplaceAll(strings.ToLower(key), "_", ".")
	}
}

// cliFlagName 将 koanf key 转换为 CLI flag 名称 (kebab-case)。
func cliFlagName(koanfKey string) string {
	flag := strings.ReplaceAll(koanfKey, ".", "-")
	return strings.ReplaceAll(flag, "_", "-")
}

// applyCLIFlags 通过反射将用户明确指定的 CLI flags 应用到 koanf 实例。
// 根据配置结构体的 koanf 标签自动映射 flag 名称，支持嵌套结构体。
func applyCLIFlags[T any](cmd *cli.Command, k *koanf.Koanf, defaultConfig T) {
	applyFlagsRecursive(cmd, k, reflect.TypeOf(defaultConfig), "")
}

func applyFlagsRecursive(cmd *cli.Command, k *koanf.Koanf, typ reflect.Type, prefix string) {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		koanfKey := field.Tag.Get("koanf")
		if koanfKey == "" {
			continue
		}
		fullKey := koanfKey
		if prefix != "" {
			fullKey = prefix + "." + koanfKey
		}

		// 嵌套结构体递归处理
		if field.Type.Kind() == reflect.Struct &&
			field.Type != reflect.TypeFor[time.Duration]() &&
			field.Type != reflect.TypeFor[time.Time]() {
			applyFlagsRecursive(cmd, k, field.Type, fullKey)
			continue
		}

		flag := cliFlagName(fullKey)
		if !cmd.IsSet(flag) {
			continue
		}
		setFlagValue(cmd, k, fullKey, flag, field.Type)
	}
}

// setFlagValue 根据字段类型从 CLI 获取值并设置到 koanf。
func setFlagValue(cmd *cli.Command, k *koanf.Koanf, koanfKey, flag string, fieldType reflect.Type) {
	if fieldType == reflect.TypeFor[time.Duration]() {
		_ = k.Set(koanfKey, cmd.Duration(flag))
		return
	}

	switch fieldType.Kind() {
	case reflect.String:
		_ = k.Set(koanfKey, cmd.String(flag))
	case reflect.Bool:
		_ = k.Set(koanfKey, cmd.Bool(flag))
	case reflect.Int, reflect.Int32:
		_ = k.Set(koanfKey, cmd.Int(flag))
	case reflect.Int64:
		_ = k.Set(koanfKey, cmd.Int64(flag))
	case reflect.Uint, reflect.Uint32:
		_ = k.Set(koanfKey, cmd.Uint(flag))
	case reflect.Uint64:
		_ = k.Set(koanfKey, cmd.Uint64(flag))
	case reflect.Float64:
		_ = k.Set(koanfKey, cmd.Float64(flag))
	case reflect.Slice:
		if fieldType.Elem().Kind() == reflect.String {
			_ = k.Set(koanfKey, cmd.StringSlice(flag))
		}
	case reflect.Map:
		if fieldType.Key().Kind() == reflect.String && fieldType.Elem().Kind() == reflect.String {
			_ = k.Set(koanfKey, cmd.StringMap(flag))
		}
	}
}
