package hosting

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gocrud/inject/logging"
)

// HostedService 托管服务接口（类似于 .NET Core IHostedService）
// 框架会自动在 goroutine 中调用 Start，用户无需自己启动 goroutine
type HostedService interface {
	// Start 启动服务。该方法应阻塞执行，直到 context 被取消或发生错误。
	// 框架会在独立的 goroutine 中调用此方法。
	Start(ctx context.Context) error

	// Stop 执行优雅关闭逻辑。
	// 注意：当 Start 的 context 被取消时，服务应自动停止。
	// Stop 方法用于执行额外的清理工作（可选）。
	Stop(ctx context.Context) error
}

// namedService 记录服务及其注册名称，日志按名称输出
type namedService struct {
	name    string
	service HostedService
}

// HostedServiceManager 托管服务管理器
type HostedServiceManager struct {
	services []namedService
	logger   logging.Logger
	mu       sync.RWMutex
	wg       sync.WaitGroup
}

// NewHostedServiceManager 创建托管服务管理器
func NewHostedServiceManager(logger logging.Logger) *HostedServiceManager {
	return &HostedServiceManager{
		services: make([]namedService, 0),
		logger:   logger,
	}
}

// SetLogger 替换管理器使用的日志记录器
func (m *HostedServiceManager) SetLogger(logger logging.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// Add 添加托管服务
func (m *HostedServiceManager) Add(name string, service HostedService) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services = append(m.services, namedService{name: name, service: service})
}

// StartAll 启动所有托管服务
// 每个服务在独立的 goroutine 中启动，失败的服务把错误写入返回的通道
func (m *HostedServiceManager) StartAll(ctx context.Context) <-chan error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	errCh := make(chan error, len(m.services))

	m.logger.Info("Starting hosted services", logging.Field{Key: "count", Value: len(m.services)})

	for _, entry := range m.services {
		m.wg.Add(1)
		go func(entry namedService) {
			defer m.wg.Done()

			m.logger.Debug("Starting hosted service", logging.Field{Key: "service", Value: entry.name})

			if err := entry.service.Start(ctx); err != nil {
				// 区分正常的 context 取消和真正的错误
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					m.logger.Debug("Hosted service stopped (context done)",
						logging.Field{Key: "service", Value: entry.name})
					return
				}
				m.logger.Error("Hosted service error",
					logging.Field{Key: "service", Value: entry.name}, logging.Err(err))
				// 通道缓冲区大小等于服务数量，写入不会阻塞
				errCh <- err
				return
			}

			m.logger.Info("Hosted service completed", logging.Field{Key: "service", Value: entry.name})
		}(entry)
	}

	// 全部服务退出后关闭通道，监听方可以 range 读取
	go func() {
		m.wg.Wait()
		close(errCh)
	}()

	return errCh
}

// StopAll 停止所有托管服务
// 反向并发停止，单个服务的停止失败不影响其余服务
func (m *HostedServiceManager) StopAll(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	m.logger.Info("Stopping hosted services", logging.Field{Key: "count", Value: len(m.services)})

	var wg sync.WaitGroup
	for i := len(m.services) - 1; i >= 0; i-- {
		entry := m.services[i]

		wg.Add(1)
		go func(entry namedService) {
			defer wg.Done()

			if err := entry.service.Stop(ctx); err != nil {
				m.logger.Error("Failed to stop hosted service",
					logging.Field{Key: "service", Value: entry.name}, logging.Err(err))
				return
			}
			m.logger.Debug("Hosted service stopped", logging.Field{Key: "service", Value: entry.name})
		}(entry)
	}

	wg.Wait()
	m.logger.Info("All hosted services stopped")
	return nil
}

// Wait 等待所有服务完成
func (m *HostedServiceManager) Wait() {
	m.wg.Wait()
}

// BackgroundService 后台服务基类
type BackgroundService struct {
	name   string
	logger logging.Logger
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewBackgroundService 创建后台服务
func NewBackgroundService(name string, logger logging.Logger) *BackgroundService {
	return &BackgroundService{
		name:   name,
		logger: logger.WithFields(logging.Field{Key: "service", Value: name}),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start 启动后台服务
func (s *BackgroundService) Start(ctx context.Context) error {
	s.logger.Info("Background service starting")

	// 阻塞直到停止信号或上下文取消
	select {
	case <-s.stopCh:
		s.logger.Info("Background service stopped by signal")
	case <-ctx.Done():
		s.logger.Info("Background service context cancelled")
	}

	s.Done()
	return nil
}

// Stop 停止后台服务
func (s *BackgroundService) Stop(ctx context.Context) error {
	select {
	case <-s.stopCh:
		// 已经请求停止
	default:
		close(s.stopCh)
	}

	// 等待服务停止或超时
	select {
	case <-s.doneCh:
		s.logger.Info("Background service stopped gracefully")
	case <-ctx.Done():
		s.logger.Warn("Background service stop timeout")
		return ctx.Err()
	}

	return nil
}

// ShouldStop 检查是否应该停止
func (s *BackgroundService) ShouldStop() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

// StopChan 返回停止通道，用于在 select 中监听
func (s *BackgroundService) StopChan() <-chan struct{} {
	return s.stopCh
}

// Done 标记服务完成
func (s *BackgroundService) Done() {
	select {
	case <-s.doneCh:
		return
	default:
		close(s.doneCh)
	}
}

// TimedHostedService 定时托管服务
type TimedHostedService struct {
	*BackgroundService
	interval time.Duration
	task     func(ctx context.Context) error
}

// NewTimedHostedService 创建定时托管服务
func NewTimedHostedService(name string, interval time.Duration, task func(ctx context.Context) error, logger logging.Logger) *TimedHostedService {
	return &TimedHostedService{
		BackgroundService: NewBackgroundService(name, logger),
		interval:          interval,
		task:              task,
	}
}

// Start 启动定时服务
func (s *TimedHostedService) Start(ctx context.Context) error {
	s.logger.Info("Timed service running", logging.Field{Key: "interval", Value: s.interval.String()})
	return s.run(ctx)
}

func (s *TimedHostedService) run(ctx context.Context) error {
	defer s.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.task(ctx); err != nil {
				s.logger.Error("Timed task failed", logging.Err(err))
			}
		case <-s.stopCh:
			s.logger.Info("Timed service stopped")
			return nil
		case <-ctx.Done():
			s.logger.Info("Timed service context cancelled")
			return ctx.Err()
		}
	}
}
