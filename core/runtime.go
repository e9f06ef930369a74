package core

import (
	"context"
	"fmt"

	"github.com/gocrud/inject/di"
	"github.com/gocrud/inject/hosting"
	"github.com/gocrud/inject/logging"
)

// Runtime 是框架的状态容器，作为组合根持有注册表与注入器
type Runtime struct {
	// Registry 基于名称的依赖注册表
	Registry *di.Registry

	// Injector 名称注入器，负责签名派生与调用
	Injector *di.Injector

	// Lifecycle 生命周期管理
	Lifecycle *LifecycleEvents

	// Features 存放构建时特性 (WebBuilder 等)
	Features FeatureCollection

	// Hosted 托管服务管理器
	// WithHostedService / WithWorker 注册的服务统一经由它启动与停止
	Hosted *hosting.HostedServiceManager

	// hostedCancel 取消托管服务的运行上下文
	hostedCancel context.CancelFunc

	// shutdownCh 用于通知应用退出
	shutdownCh chan struct{}

	// ErrorHandler 用于记录运行时产生的严重错误
	// 外部可以通过设置此字段来接管错误日志
	ErrorHandler func(err error)
}

// NewRuntime 创建一个新的运行时实例
// 注册表在此创建为空，生命周期与注入器一致（组合根拥有注册表，
// 避免进程级可变全局状态）。
func NewRuntime() *Runtime {
	registry := di.NewRegistry()
	// 默认静默：ApplicationBuilder 在 Build 时换成配置好的 Logger
	hostedLogger := logging.NewLoggingBuilder().Build().CreateLogger("HostedServices")
	return &Runtime{
		Registry:   registry,
		Injector:   di.NewInjector(registry),
		Lifecycle:  NewLifecycle(),
		Hosted:     hosting.NewHostedServiceManager(hostedLogger),
		shutdownCh: make(chan struct{}),
		ErrorHandler: func(err error) {
			// 默认输出到标准输出
			fmt.Printf("[Runtime Error] %v\n", err)
		},
	}
}

// Start 执行启动钩子，然后启动全部托管服务
// 托管服务的失败会经由 ErrorHandler 记录并触发应用退出
func (rt *Runtime) Start(ctx context.Context) error {
	if err := rt.Lifecycle.Start(ctx); err != nil {
		return err
	}

	// 服务上下文独立于启动上下文，Stop 时才取消
	serviceCtx, cancel := context.WithCancel(context.Background())
	rt.hostedCancel = cancel

	errCh := rt.Hosted.StartAll(serviceCtx)
	go func() {
		for err := range errCh {
			if rt.ErrorHandler != nil {
				rt.ErrorHandler(fmt.Errorf("hosted service failed: %w", err))
			}
			rt.Shutdown()
		}
	}()

	return nil
}

// Stop 先停止全部托管服务，再倒序执行停止钩子
func (rt *Runtime) Stop(ctx context.Context, onError func(error)) error {
	if rt.hostedCancel != nil {
		rt.hostedCancel()
		rt.hostedCancel = nil
	}

	if err := rt.Hosted.StopAll(ctx); err != nil && onError != nil {
		onError(err)
	}
	return rt.Lifecycle.Stop(ctx, onError)
}

// Shutdown 请求应用退出
// 调用此方法会触发应用关闭流程
func (rt *Runtime) Shutdown() {
	select {
	case <-rt.shutdownCh:
		// 已经关闭，无需操作
	default:
		close(rt.shutdownCh)
	}
}

// Done 返回一个通道，当应用需要退出时该通道会关闭
func (rt *Runtime) Done() <-chan struct{} {
	return rt.shutdownCh
}

// Register 以名称注册提供者 (语法糖)
func (rt *Runtime) Register(name string, target any, opts ...di.Option) error {
	return rt.Registry.Register(name, target, opts...)
}

// Provide 注册经由注入器构造的提供者 (语法糖)
func (rt *Runtime) Provide(name string, ctor any, opts ...di.Option) error {
	return rt.Injector.Provide(name, ctor, opts...)
}

// Invoke 调用函数并按名称注入依赖 (语法糖)
func (rt *Runtime) Invoke(function any) (any, error) {
	return rt.Injector.Invoke(function)
}

// Apply 应用多个 Option
func (rt *Runtime) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(rt); err != nil {
			return err
		}
	}
	return nil
}
