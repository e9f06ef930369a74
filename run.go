package inject

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gocrud/inject/core"
)

// Run 启动应用程序
// 这是基于微内核架构的轻量入口：应用所有选项、启动生命周期、
// 阻塞等待退出信号后优雅关闭。
func Run(opts ...core.Option) error {
	rt := core.NewRuntime()

	// 1. Bootstrap (应用所有选项)
	// 这一步会注册提供者、添加生命周期钩子等
	if err := rt.Apply(opts...); err != nil {
		return err
	}

	// 2. 启动生命周期与托管服务
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rt.Start(ctx); err != nil {
		return err
	}

	// 3. 阻塞并监听退出信号
	// 支持 OS 信号 (Ctrl+C, kill) 和 Runtime 内部触发的退出 (rt.Shutdown)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		// 收到系统信号
	case <-rt.Done():
		// 运行时内部请求退出 (例如关键服务崩溃)
	}

	// 4. 优雅关闭，给定 5 秒超时时间用于清理
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	return rt.Stop(shutdownCtx, rt.ErrorHandler)
}
