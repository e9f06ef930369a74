package web

import (
	"fmt"
	"reflect"

	"github.com/gocrud/inject/core"
	"github.com/gocrud/inject/di"
	"github.com/gocrud/inject/logging"
)

// BuilderOption 用于配置 Web Builder
type BuilderOption func(*Builder)

// WithPort 设置端口
func WithPort(port int) BuilderOption {
	return func(b *Builder) {
		b.UsePort(port)
	}
}

// WithController 以名称添加控制器
func WithController(name string, target any) BuilderOption {
	return func(b *Builder) {
		b.AddController(name, target)
	}
}

// New 启用 Web 能力
// 控制器按名称注册到注册表，Host 以 "webHost" 注册为托管服务。
func New(opts ...BuilderOption) core.Option {
	return func(rt *core.Runtime) error {
		builder := NewBuilder()

		if logger, err := di.Resolve[logging.Logger](rt.Registry, "logger"); err == nil {
			builder.UseLogger(logger)
		}

		for _, opt := range opts {
			opt(builder)
		}

		// 注册为 Feature，允许后续选项继续定制路由
		rt.Features.Set(builder)

		// 控制器注册：构造函数经注入器构造，实例直接登记
		for _, ctrl := range builder.controllers {
			var err error
			if reflect.ValueOf(ctrl.target).Kind() == reflect.Func {
				err = rt.Provide(ctrl.name, ctrl.target)
			} else {
				err = rt.Register(ctrl.name, ctrl.target)
			}
			if err != nil {
				return fmt.Errorf("web: failed to register controller %q: %w", ctrl.name, err)
			}
		}

		// Host 延迟创建，注册为托管服务统一管理生命周期
		hostFactory := func() *Host {
			host := builder.Build(rt.Registry)
			rt.Features.Set(host)
			return host
		}

		return core.WithHostedService("webHost", hostFactory)(rt)
	}
}
