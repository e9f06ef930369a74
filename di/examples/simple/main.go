package main

import "github.com/gocrud/inject/di"

// 定义接口
type Logger interface {
	Log(msg string)
}

type Database interface {
	Connect() error
}

// 实现
type ConsoleLogger struct {
	Prefix string
}

func (c *ConsoleLogger) Log(msg string) {
	println(c.Prefix + ": " + msg)
}

type MySQLDatabase struct {
	Host string
	Port int
}

func (m *MySQLDatabase) Connect() error {
	println("Connecting to MySQL at", m.Host, ":", m.Port)
	return nil
}

// 服务
type UserService struct {
	logger Logger
	db     Database
}

func (s *UserService) Hello() {
	s.logger.Log("UserService ready")
	s.db.Connect()
}

func main() {
	registry := di.NewRegistry()
	injector := di.NewInjector(registry)

	// 以名称注册提供者
	registry.Register("logger", Logger(&ConsoleLogger{Prefix: "APP"}))
	registry.Register("database", Database(&MySQLDatabase{Host: "localhost", Port: 3306}))

	// 构造函数注入：参数结构体字段名即依赖名称
	injector.Provide("userService", func(deps struct {
		Logger   Logger
		Database Database
	}) *UserService {
		return &UserService{logger: deps.Logger, db: deps.Database}
	})

	// 方式1: 泛型 Resolve
	println("=== 方式1: 泛型 Resolve ===")
	svc := di.MustResolve[*UserService](registry, "userService")
	svc.Hello()

	// 方式2: Invoke，依赖按名称解析后调用
	println("\n=== 方式2: Invoke ===")
	_, err := injector.Invoke(func(deps struct {
		UserService *UserService
	}) {
		deps.UserService.Hello()
	})
	if err != nil {
		println("invoke failed:", err.Error())
	}

	// 工厂模式：每次解析都得到新值
	counter := 0
	registry.Register("requestId", func() int {
		counter++
		return counter
	}, di.WithFactory())

	println("\n=== 工厂模式 ===")
	first := di.MustResolve[int](registry, "requestId")
	second := di.MustResolve[int](registry, "requestId")
	println("requestId:", first, second)
}
