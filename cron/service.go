package cron

import (
	"context"
	"fmt"
	"sync"

	"github.com/gocrud/inject/di"
	"github.com/gocrud/inject/logging"
	"github.com/robfig/cron/v3"
)

// jobDefinition 任务定义
type jobDefinition struct {
	spec    string
	name    string
	handler any
}

// Service Cron 定时任务托管服务
// 实现 HostedService 接口，与框架无缝集成
type Service struct {
	cron     *cron.Cron
	logger   logging.Logger
	mu       sync.RWMutex
	jobs     map[string]cron.EntryID // 任务名称到任务ID的映射
	jobDefs  []jobDefinition         // 暂存任务定义
	injector *di.Injector            // 名称注入器，用于带依赖的任务
}

// options Cron 服务配置选项
type options struct {
	// Location 时区设置，默认 UTC
	Location string
	// EnableSeconds 是否启用秒级精度（默认分钟级）
	EnableSeconds bool
	// Logger 自定义日志记录器
	Logger logging.Logger
	// EnableCronLogger 是否启用 cron 库的内部调度日志（默认 false）
	EnableCronLogger bool
}

// newService 创建 Cron 托管服务
func newService(logger logging.Logger, opts ...func(*options)) *Service {
	opt := &options{
		Location:         "UTC",
		EnableSeconds:    false,
		Logger:           logger,
		EnableCronLogger: false,
	}

	for _, o := range opts {
		o(opt)
	}

	cronOpts := []cron.Option{}

	if opt.EnableCronLogger {
		cronOpts = append(cronOpts, cron.WithLogger(newCronLogger(opt.Logger)))
	}

	cronOpts = append(cronOpts, cron.WithChain(
		cron.Recover(newCronLogger(opt.Logger)),
	))

	if opt.EnableSeconds {
		cronOpts = append(cronOpts, cron.WithSeconds())
	}

	return &Service{
		cron:   cron.New(cronOpts...),
		logger: opt.Logger,
		jobs:   make(map[string]cron.EntryID),
	}
}

// addJob 添加定时任务
// spec: cron 表达式，如 "0 */5 * * * *" (每5分钟) 或 "0 0 2 * * *" (每天凌晨2点)
// name: 任务名称（用于管理和日志）
// job: 任务函数
func (s *Service) addJob(spec, name string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(spec, func() {
		s.logger.Debug("Cron job started", logging.Field{Key: "job", Value: name})
		defer s.logger.Debug("Cron job completed", logging.Field{Key: "job", Value: name})
		job()
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job '%s': %w", name, err)
	}

	s.jobs[name] = entryID
	s.logger.Info("Cron job registered",
		logging.Field{Key: "job", Value: name},
		logging.Field{Key: "spec", Value: spec})
	return nil
}

// removeJob 移除定时任务
func (s *Service) removeJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
		s.logger.Info("Cron job removed", logging.Field{Key: "job", Value: name})
	}
}

// Inject 注入名称注入器与日志记录器
// 必须在 Start 之前调用，带依赖的任务经由注入器解析参数。
func (s *Service) Inject(injector *di.Injector, logger logging.Logger) {
	s.injector = injector
	if logger != nil {
		s.logger = logger
	}
}

// Start 实现 HostedService.Start
// 注册所有暂存任务后启动调度器。带依赖的任务在这里包装为零参闭包，
// 依赖在每次触发时按名称解析。
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Cron service starting",
		logging.Field{Key: "jobs", Value: len(s.jobDefs)})

	for _, job := range s.jobDefs {
		handlerFunc, err := s.wrapHandler(job)
		if err != nil {
			return err
		}
		if err := s.addJob(job.spec, job.name, handlerFunc); err != nil {
			return err
		}
	}

	// 清空定义以释放内存
	s.jobDefs = nil

	s.cron.Start()
	return nil
}

// wrapHandler 将任务处理器包装为零参函数
func (s *Service) wrapHandler(job jobDefinition) (func(), error) {
	switch h := job.handler.(type) {
	case func():
		return h, nil
	default:
		if s.injector == nil {
			return nil, fmt.Errorf("cron: injector not set but job '%s' requires dependency injection", job.name)
		}

		decorated := s.injector.Decorate(h)

		name := job.name
		return func() {
			if _, err := decorated(); err != nil {
				s.logger.Error("Cron job failed",
					logging.Field{Key: "job", Value: name}, logging.Err(err))
			}
		}, nil
	}
}

// Stop 实现 HostedService.Stop
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("Cron service stopping")

	stopCtx := s.cron.Stop()

	// 等待运行中的任务完成或 ctx 超时
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger 适配器：将框架日志接口适配到 cron 的日志接口
type cronLogger struct {
	logger logging.Logger
}

func newCronLogger(logger logging.Logger) cron.Logger {
	return &cronLogger{logger: logger}
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, convertToFields(keysAndValues)...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := convertToFields(keysAndValues)
	fields = append(fields, logging.Err(err))
	l.logger.Error(msg, fields...)
}

func convertToFields(keysAndValues []interface{}) []logging.Field {
	fields := make([]logging.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, logging.Field{
			Key:   fmt.Sprintf("%v", keysAndValues[i]),
			Value: keysAndValues[i+1],
		})
	}
	return fields
}
