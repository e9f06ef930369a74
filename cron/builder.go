package cron

import (
	"github.com/gocrud/inject/logging"
)

// Builder Cron 配置构建器
type Builder struct {
	enableSeconds    bool
	enableCronLogger bool
	location         string
	jobs             []jobDefinition
}

// NewBuilder 创建 Cron 构建器
func NewBuilder() *Builder {
	return &Builder{
		enableSeconds:    false,
		enableCronLogger: false,
		location:         "UTC",
		jobs:             make([]jobDefinition, 0),
	}
}

// WithSeconds 启用秒级精度
func (b *Builder) WithSeconds() *Builder {
	b.enableSeconds = true
	return b
}

// WithLocation 设置时区
func (b *Builder) WithLocation(location string) *Builder {
	b.location = location
	return b
}

// EnableCronLogger 启用 cron 库的内部调度日志
func (b *Builder) EnableCronLogger() *Builder {
	b.enableCronLogger = true
	return b
}

// AddJob 添加简单任务（无依赖注入）
func (b *Builder) AddJob(spec, name string, handler func()) *Builder {
	b.jobs = append(b.jobs, jobDefinition{
		spec:    spec,
		name:    name,
		handler: handler,
	})
	return b
}

// AddJobWithDeps 添加带依赖注入的任务
// handler 的依赖在每次触发时按名称解析，声明方式与 Injector.Invoke 相同
// （参数结构体字段，inject 标签可重命名）。
//
// 示例：
//
//	builder.AddJobWithDeps("0 */5 * * * *", "sync-data", func(deps struct {
//	    Sync   *DataService   `inject:"dataService"`
//	    Logger logging.Logger `inject:"logger"`
//	}) {
//	    deps.Sync.Run()
//	})
func (b *Builder) AddJobWithDeps(spec, name string, handler any) *Builder {
	b.jobs = append(b.jobs, jobDefinition{
		spec:    spec,
		name:    name,
		handler: handler,
	})
	return b
}

// build 构建 Cron 服务（任务定义暂存，注册发生在 Start 时）
func (b *Builder) build(logger logging.Logger) *Service {
	svc := newService(logger, func(opts *options) {
		opts.EnableSeconds = b.enableSeconds
		opts.EnableCronLogger = b.enableCronLogger
		opts.Location = b.location
		opts.Logger = logger
	})
	svc.jobDefs = b.jobs
	return svc
}
