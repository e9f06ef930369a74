package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gocrud/inject/config"
	"github.com/gocrud/inject/di"
	"github.com/gocrud/inject/logging"
)

// Application 应用程序接口
type Application interface {
	Run() error
	RunAsync(ctx context.Context) error
	Stop()
	Runtime() *Runtime
	Configuration() config.Configuration
	Logger() logging.Logger
	Environment() Environment
}

// ApplicationBuilder 应用程序构建器
// 组装配置、日志与名称注册表，Build 之后得到可运行的应用。
type ApplicationBuilder struct {
	environment     string
	configBuilder   *config.ConfigurationBuilder
	loggingBuilder  *logging.LoggingBuilder
	options         []Option
	shutdownTimeout time.Duration
	mu              sync.Mutex
}

// NewApplicationBuilder 创建应用程序构建器
func NewApplicationBuilder() *ApplicationBuilder {
	return &ApplicationBuilder{
		environment:     "development",
		configBuilder:   config.NewConfigurationBuilder(),
		loggingBuilder:  logging.NewLoggingBuilder(),
		options:         make([]Option, 0),
		shutdownTimeout: 30 * time.Second,
	}
}

// UseEnvironment 设置环境
func (b *ApplicationBuilder) UseEnvironment(env string) *ApplicationBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.environment = env
	return b
}

// ConfigureConfiguration 配置配置系统
func (b *ApplicationBuilder) ConfigureConfiguration(configure func(*config.ConfigurationBuilder)) *ApplicationBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if configure != nil {
		configure(b.configBuilder)
	}
	return b
}

// ConfigureLogging 配置日志系统
func (b *ApplicationBuilder) ConfigureLogging(configure func(*logging.LoggingBuilder)) *ApplicationBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if configure != nil {
		configure(b.loggingBuilder)
	}
	return b
}

// Configure 追加运行时选项
func (b *ApplicationBuilder) Configure(opts ...Option) *ApplicationBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.options = append(b.options, opts...)
	return b
}

// Register 以名称注册提供者
func (b *ApplicationBuilder) Register(name string, target any, opts ...di.Option) *ApplicationBuilder {
	return b.Configure(func(rt *Runtime) error {
		return rt.Register(name, target, opts...)
	})
}

// Provide 以名称注册经构造函数注入的提供者
func (b *ApplicationBuilder) Provide(name string, ctor any, opts ...di.Option) *ApplicationBuilder {
	return b.Configure(func(rt *Runtime) error {
		return rt.Provide(name, ctor, opts...)
	})
}

// AddHostedService 以名称添加托管服务
// ctor 的依赖经由注入器解析，构造结果必须实现 hosting.HostedService。
func (b *ApplicationBuilder) AddHostedService(name string, ctor any) *ApplicationBuilder {
	return b.Configure(WithHostedService(name, ctor))
}

// AddTask 添加一个简单的后台任务
func (b *ApplicationBuilder) AddTask(task WorkerFunc) *ApplicationBuilder {
	return b.Configure(WithWorker(task))
}

// UseShutdownTimeout 设置关闭超时
func (b *ApplicationBuilder) UseShutdownTimeout(timeout time.Duration) *ApplicationBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shutdownTimeout = timeout
	return b
}

// Build 构建应用程序
// 构建配置与日志工厂，把核心服务按名称注册进注册表
// (config, config:<key>, logger, loggerFactory, environment)，
// 然后应用全部选项。
func (b *ApplicationBuilder) Build() (Application, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cfg, err := b.configBuilder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build configuration: %w", err)
	}

	loggerFactory := b.loggingBuilder.Build()
	logger := loggerFactory.CreateLogger("Application")
	env := NewEnvironment(b.environment)

	logger.Info("Building application",
		logging.Field{Key: "environment", Value: env.Name()})

	rt := NewRuntime()
	rt.ErrorHandler = func(err error) {
		logger.Error("Runtime error", logging.Err(err))
	}
	rt.Hosted.SetLogger(loggerFactory.CreateLogger("HostedServices"))

	if err := config.Export(cfg, rt.Registry); err != nil {
		return nil, err
	}
	if err := rt.Register("loggerFactory", loggerFactory); err != nil {
		return nil, err
	}
	if err := rt.Register("logger", logging.Logger(logger)); err != nil {
		return nil, err
	}
	if err := rt.Register("environment", env); err != nil {
		return nil, err
	}
	rt.Features.Set(loggerFactory)

	for _, opt := range b.options {
		if err := opt(rt); err != nil {
			return nil, err
		}
	}

	return &application{
		rt:              rt,
		configuration:   cfg,
		logger:          logger,
		environment:     env,
		shutdownTimeout: b.shutdownTimeout,
	}, nil
}

// application 应用程序实现
type application struct {
	rt              *Runtime
	configuration   config.Configuration
	logger          logging.Logger
	environment     Environment
	shutdownTimeout time.Duration
	running         bool
	mu              sync.Mutex
}

// Run 运行应用程序（阻塞直到收到退出信号）
func (a *application) Run() error {
	return a.RunAsync(context.Background())
}

// RunAsync 运行应用程序，ctx 取消时触发关闭
func (a *application) RunAsync(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return errors.New("application is already running")
	}
	a.running = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.logger.Info("Starting application",
		logging.Field{Key: "environment", Value: a.environment.Name()})

	if err := a.rt.Start(runCtx); err != nil {
		return err
	}

	a.logger.Info("Application started successfully")

	// 等待退出信号：OS 信号、内部 Shutdown 或外部 ctx 取消
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.logger.Info("Received shutdown signal",
			logging.Field{Key: "signal", Value: sig.String()})
	case <-a.rt.Done():
		a.logger.Info("Application stop requested")
	case <-ctx.Done():
		a.logger.Info("Context cancelled")
	}

	a.logger.Info("Shutting down application",
		logging.Field{Key: "timeout", Value: a.shutdownTimeout.String()})

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer shutdownCancel()

	a.rt.Stop(shutdownCtx, func(err error) {
		a.logger.Error("Shutdown hook failed", logging.Err(err))
	})

	a.logger.Info("Application stopped")
	return nil
}

// Stop 请求应用退出
func (a *application) Stop() {
	a.rt.Shutdown()
}

// Runtime 返回底层运行时
func (a *application) Runtime() *Runtime {
	return a.rt
}

// Configuration 返回应用配置
func (a *application) Configuration() config.Configuration {
	return a.configuration
}

// Logger 返回应用日志记录器
func (a *application) Logger() logging.Logger {
	return a.logger
}

// Environment 返回运行环境
func (a *application) Environment() Environment {
	return a.environment
}

// Environment 运行环境
type Environment interface {
	Name() string
	IsDevelopment() bool
	IsProduction() bool
	IsStaging() bool
}

type environment struct {
	name string
}

// NewEnvironment 创建运行环境
func NewEnvironment(name string) Environment {
	return &environment{name: name}
}

func (e *environment) Name() string {
	return e.name
}

func (e *environment) IsDevelopment() bool {
	return e.name == "development"
}

func (e *environment) IsProduction() bool {
	return e.name == "production"
}

func (e *environment) IsStaging() bool {
	return e.name == "staging"
}
