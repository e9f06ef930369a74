package config

import (
	"fmt"

	"github.com/gocrud/inject/di"
)

// Export 将配置导出到注册表
// 整棵配置以名称 "config" 注册，每个叶子键额外注册为 "config:<点分路径>"，
// 处理函数可以按名称直接注入单个配置值。
func Export(cfg Configuration, registry *di.Registry) error {
	if err := registry.Register("config", cfg); err != nil {
		return err
	}

	for key, value := range cfg.Flatten() {
		if err := registry.Register("config:"+key, value); err != nil {
			return fmt.Errorf("config: failed to export key %s: %w", key, err)
		}
	}
	return nil
}

// LoadOptions 配置加载选项
type LoadOptions struct {
	EnvPrefix string
	Optional  bool
	Etcd      *EtcdOptions
}

// LoadOption 配置加载选项函数
type LoadOption func(*LoadOptions)

// WithEnvPrefix 叠加环境变量源（指定前缀）
func WithEnvPrefix(prefix string) LoadOption {
	return func(o *LoadOptions) {
		o.EnvPrefix = prefix
	}
}

// WithOptionalFile 配置文件不存在时不报错
func WithOptionalFile() LoadOption {
	return func(o *LoadOptions) {
		o.Optional = true
	}
}

// WithEtcd 叠加 etcd 配置源
func WithEtcd(opts EtcdOptions) LoadOption {
	return func(o *LoadOptions) {
		etcd := opts
		o.Etcd = &etcd
	}
}

// LoadFile 从配置文件构建配置
// 支持 YAML 与 JSON (通过 YAML 解析器兼容)。
// 源的覆盖顺序: 文件 < etcd < 环境变量。
func LoadFile(path string, opts ...LoadOption) (Configuration, error) {
	options := &LoadOptions{}
	for _, opt := range opts {
		opt(options)
	}

	builder := NewConfigurationBuilder()
	builder.AddYamlFile(path, options.Optional)
	if options.Etcd != nil {
		builder.AddEtcd(*options.Etcd)
	}
	if options.EnvPrefix != "" {
		builder.AddEnvironmentVariables(options.EnvPrefix)
	}

	return builder.Build()
}
