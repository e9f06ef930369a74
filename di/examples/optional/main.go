package main

import "github.com/gocrud/inject/di"

type Logger interface {
	Log(msg string)
}

type Cache interface {
	Get(key string) string
}

type ConsoleLogger struct{}

func (l *ConsoleLogger) Log(msg string) { println("APP: " + msg) }

type MemoryCache struct{}

func (c *MemoryCache) Get(key string) string { return "" }

// userDeps 演示可选依赖：Cache 未注册时保持零值
type userDeps struct {
	Logger Logger `inject:"logger"`
	Cache  Cache  `inject:"cache,optional"`
}

func getUser(deps userDeps, id string) {
	deps.Logger.Log("Getting user: " + id)
	if deps.Cache != nil {
		deps.Cache.Get(id)
		deps.Logger.Log("Cache available")
	} else {
		deps.Logger.Log("Cache not available")
	}
}

func main() {
	registry := di.NewRegistry()
	injector := di.NewInjector(registry)

	// 场景 1: 只注册必需的依赖
	println("=== 场景 1: 最小依赖 ===")
	registry.Register("logger", Logger(&ConsoleLogger{}))

	injector.Invoke(func(deps userDeps) {
		getUser(deps, "user123")
	})

	// 场景 2: 补上可选依赖
	println("\n=== 场景 2: 完整依赖 ===")
	registry.Register("cache", Cache(&MemoryCache{}))

	injector.Invoke(func(deps userDeps) {
		getUser(deps, "user456")
	})

	// 场景 3: 必需依赖缺失时 Invoke 返回错误，函数不会执行
	println("\n=== 场景 3: 缺失必需依赖 ===")
	_, err := injector.Invoke(func(deps struct {
		Metrics any `inject:"metrics"`
	}) {
		println("should not run")
	})
	if err != nil {
		println("expected error:", err.Error())
	}
}
