package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Configuration 配置接口
type Configuration interface {
	// Get 获取配置值（不存在时返回空字符串）
	Get(key string) string
	// GetWithDefault 获取配置值，如果不存在则返回默认值
	GetWithDefault(key, defaultValue string) string
	// GetInt 获取整数配置值
	GetInt(key string) (int, error)
	// GetBool 获取布尔配置值
	GetBool(key string) (bool, error)
	// Has 报告键是否存在
	Has(key string) bool
	// Bind 绑定配置节到结构体
	Bind(key string, target any) error
	// Flatten 以点分路径展开全部叶子键值
	Flatten() map[string]any
}

// ConfigurationSource 配置源接口
type ConfigurationSource interface {
	Load() (map[string]any, error)
	Name() string
}

// ConfigurationBuilder 配置构建器
type ConfigurationBuilder struct {
	sources []ConfigurationSource
	mu      sync.Mutex
}

// NewConfigurationBuilder 创建配置构建器
func NewConfigurationBuilder() *ConfigurationBuilder {
	return &ConfigurationBuilder{
		sources: make([]ConfigurationSource, 0),
	}
}

// Add 添加配置源
func (b *ConfigurationBuilder) Add(source ConfigurationSource) *ConfigurationBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sources = append(b.sources, source)
	return b
}

// AddYamlFile 添加 YAML 文件配置源（JSON 兼容）
func (b *ConfigurationBuilder) AddYamlFile(path string, optional ...bool) *ConfigurationBuilder {
	isOptional := len(optional) > 0 && optional[0]
	return b.Add(&YamlFileSource{Path: path, Optional: isOptional})
}

// AddEnvironmentVariables 添加环境变量配置源
// 前缀会被剥离，双下划线映射为层级分隔（APP__WEB__PORT -> web.port）
func (b *ConfigurationBuilder) AddEnvironmentVariables(prefix string) *ConfigurationBuilder {
	return b.Add(&EnvironmentVariableSource{Prefix: prefix})
}

// AddInMemory 添加内存配置源
func (b *ConfigurationBuilder) AddInMemory(data map[string]any) *ConfigurationBuilder {
	return b.Add(&InMemorySource{Data: data})
}

// AddEtcd 添加 etcd 配置源
func (b *ConfigurationBuilder) AddEtcd(opts EtcdOptions) *ConfigurationBuilder {
	return b.Add(NewEtcdSource(opts))
}

// Build 构建配置
// 按顺序加载所有配置源，后面的源覆盖前面的同名键。
func (b *ConfigurationBuilder) Build() (Configuration, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data := make(map[string]any)
	for _, source := range b.sources {
		loaded, err := source.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config source %s: %w", source.Name(), err)
		}
		mergeMaps(data, loaded)
	}

	return &configuration{data: data}, nil
}

// configuration 配置实现
// 构建后数据不可变，读取无需加锁。
type configuration struct {
	data map[string]any
}

// Get 获取配置值
func (c *configuration) Get(key string) string {
	value := c.lookup(key)
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// GetWithDefault 获取配置值，如果不存在则返回默认值
func (c *configuration) GetWithDefault(key, defaultValue string) string {
	if !c.Has(key) {
		return defaultValue
	}
	return c.Get(key)
}

// GetInt 获取整数配置值
func (c *configuration) GetInt(key string) (int, error) {
	value := c.lookup(key)
	if value == nil {
		return 0, fmt.Errorf("config: key %s not found", key)
	}

	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("config: cannot convert %v to int", value)
	}
}

// GetBool 获取布尔配置值
func (c *configuration) GetBool(key string) (bool, error) {
	value := c.lookup(key)
	if value == nil {
		return false, fmt.Errorf("config: key %s not found", key)
	}

	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	default:
		return false, fmt.Errorf("config: cannot convert %v to bool", value)
	}
}

// Has 报告键是否存在
func (c *configuration) Has(key string) bool {
	return c.lookup(key) != nil
}

// Bind 绑定配置节到结构体
// 通过 YAML 往返实现，复用字段标签语义。
func (c *configuration) Bind(key string, target any) error {
	var section any = c.data
	if key != "" {
		section = c.lookup(key)
		if section == nil {
			return fmt.Errorf("config: section %s not found", key)
		}
	}

	raw, err := yaml.Marshal(section)
	if err != nil {
		return fmt.Errorf("config: failed to encode section %s: %w", key, err)
	}
	if err := yaml.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("config: failed to bind section %s: %w", key, err)
	}
	return nil
}

// Flatten 以点分路径展开全部叶子键值
func (c *configuration) Flatten() map[string]any {
	out := make(map[string]any)
	flattenInto(out, "", c.data)
	return out
}

// lookup 按点分路径逐层查找
func (c *configuration) lookup(key string) any {
	if key == "" {
		return nil
	}

	parts := strings.Split(key, ".")
	var current any = c.data
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[part]
		if !ok {
			return nil
		}
	}
	return current
}

// mergeMaps 深度合并（src 覆盖 dst 的同名键）
func mergeMaps(dst, src map[string]any) {
	for key, srcVal := range src {
		if dstMap, ok := dst[key].(map[string]any); ok {
			if srcMap, ok := srcVal.(map[string]any); ok {
				mergeMaps(dstMap, srcMap)
				continue
			}
		}
		dst[key] = srcVal
	}
}

// flattenInto 递归展开嵌套 map 为点分路径
func flattenInto(out map[string]any, prefix string, value any) {
	m, ok := value.(map[string]any)
	if !ok {
		out[prefix] = value
		return
	}
	for key, child := range m {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		flattenInto(out, path, child)
	}
}

// Bind 加载并绑定指定节的配置到结构体 T（泛型辅助函数）
func Bind[T any](cfg Configuration, section string) (T, error) {
	var t T
	err := cfg.Bind(section, &t)
	return t, err
}
