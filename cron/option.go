package cron

import (
	"context"

	"github.com/gocrud/inject/core"
	"github.com/gocrud/inject/di"
	"github.com/gocrud/inject/logging"
)

// BuilderOption 用于配置 Cron Builder
type BuilderOption func(*Builder)

// WithSeconds 启用秒级精度
func WithSeconds() BuilderOption {
	return func(b *Builder) {
		b.WithSeconds()
	}
}

// WithLocation 设置时区
func WithLocation(location string) BuilderOption {
	return func(b *Builder) {
		b.WithLocation(location)
	}
}

// EnableCronLogger 启用 cron 库的内部调度日志
func EnableCronLogger() BuilderOption {
	return func(b *Builder) {
		b.EnableCronLogger()
	}
}

// AddJob 添加任务
// handler 为 func() 时直接注册，否则依赖在每次触发时按名称解析
func AddJob(spec, name string, handler any) BuilderOption {
	return func(b *Builder) {
		b.AddJobWithDeps(spec, name, handler)
	}
}

// New 启用 Cron 能力
// 调度器以 "cronService" 注册到名称注册表，并挂接生命周期钩子。
func New(opts ...BuilderOption) core.Option {
	return func(rt *core.Runtime) error {
		builder := NewBuilder()
		for _, opt := range opts {
			opt(builder)
		}

		logger, err := di.Resolve[logging.Logger](rt.Registry, "logger")
		if err != nil {
			logger = logging.NewLogger()
		}

		svc := builder.build(logger)
		svc.Inject(rt.Injector, logger)

		if err := rt.Register("cronService", svc); err != nil {
			return err
		}

		rt.Lifecycle.OnStart(func(ctx context.Context) error {
			return svc.Start(ctx)
		})
		rt.Lifecycle.OnStop(func(ctx context.Context) error {
			return svc.Stop(ctx)
		})

		rt.Features.Set(svc)
		return nil
	}
}
