package core

import (
	"context"
	"fmt"

	"github.com/gocrud/inject/di"
	"github.com/gocrud/inject/hosting"
)

// WithHostedService 以名称注册一个托管服务
// ctor 的依赖经由注入器解析，构造结果必须实现 hosting.HostedService。
// 服务实例在 OnStart 阶段解析并加入托管服务管理器，
// 由 Runtime.Start / Runtime.Stop 统一启动与停止。
func WithHostedService(name string, ctor any) Option {
	return func(rt *Runtime) error {
		// 注册服务（单例：启动与停止必须操作同一个实例）
		if err := rt.Provide(name, ctor); err != nil {
			return fmt.Errorf("WithHostedService: failed to provide %q: %w", name, err)
		}

		rt.Lifecycle.OnStart(func(ctx context.Context) error {
			svc, err := di.Resolve[hosting.HostedService](rt.Registry, name)
			if err != nil {
				return fmt.Errorf("failed to resolve hosted service %q: %w", name, err)
			}
			rt.Hosted.Add(name, svc)
			return nil
		})

		return nil
	}
}

// WorkerFunc 定义简单的后台任务函数
// 这是一个阻塞函数，通过 ctx.Done() 判断退出。
type WorkerFunc func(ctx context.Context) error

// workerService 把 WorkerFunc 适配为托管服务
// Start 的 context 取消即停止，无额外清理动作。
type workerService struct {
	fn WorkerFunc
}

func (s *workerService) Start(ctx context.Context) error {
	return s.fn(ctx)
}

func (s *workerService) Stop(ctx context.Context) error {
	return nil
}

// WithWorker 将一个阻塞的函数注册为后台服务
// 任务加入托管服务管理器，失败时触发应用退出
func WithWorker(fn WorkerFunc) Option {
	return func(rt *Runtime) error {
		rt.Lifecycle.OnStart(func(ctx context.Context) error {
			rt.Hosted.Add("worker", &workerService{fn: fn})
			return nil
		})
		return nil
	}
}
