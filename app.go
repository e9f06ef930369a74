package inject

import (
	"github.com/gocrud/inject/config"
	"github.com/gocrud/inject/core"
)

// NewApplicationBuilder 创建应用程序构建器
// 这是创建应用程序的入口点
func NewApplicationBuilder() *core.ApplicationBuilder {
	return core.NewApplicationBuilder()
}

// LoadConfig 加载配置文件并导出到名称注册表
// 整棵配置注册为 "config"，每个叶子键注册为 "config:<点分路径>"。
func LoadConfig(path string, opts ...config.LoadOption) core.Option {
	return func(rt *core.Runtime) error {
		cfg, err := config.LoadFile(path, opts...)
		if err != nil {
			return err
		}
		if err := config.Export(cfg, rt.Registry); err != nil {
			return err
		}
		rt.Features.Set(cfg)
		return nil
	}
}
