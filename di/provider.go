package di

import (
	"fmt"
	"reflect"
	"sync"
)

// Mode 定义了提供者的解析模式。
type Mode int

const (
	// ModeSingleton 单例模式（默认）
	// 首次解析时惰性计算，成功后缓存，此后每次解析返回同一个值。
	ModeSingleton Mode = iota

	// ModeFactory 工厂模式
	// 每次解析都重新调用工厂函数，产生相互独立的值。
	ModeFactory
)

// String 返回模式的字符串表示。
func (m Mode) String() string {
	switch m {
	case ModeSingleton:
		return "singleton"
	case ModeFactory:
		return "factory"
	default:
		return "unknown"
	}
}

// provider 是注册表中的一个条目。
// 一旦注册，模式在条目的生命周期内固定不变（重新注册必须先 Unregister）。
type provider struct {
	name    string
	mode    Mode
	isValue bool
	value   any           // 静态值（isValue 为 true 时使用）
	factory reflect.Value // 工厂函数（零参，返回值或值+error）

	// 单例模式的记忆化状态。
	// 不能用 sync.Once：工厂失败不应污染条目，后续解析需要重试，
	// 因此只在成功时置位 resolved。锁同时保证并发解析最多执行一次工厂。
	mu       sync.Mutex
	resolved bool
	cached   any
}

// newProvider 根据注册目标构造 provider。
// target 为函数时作为工厂使用，否则作为静态单例值。
func newProvider(name string, target any, mode Mode) (*provider, error) {
	p := &provider{name: name, mode: mode}

	targetVal := reflect.ValueOf(target)
	if target != nil && targetVal.Kind() == reflect.Func {
		if err := validateFactory(targetVal.Type()); err != nil {
			return nil, err
		}
		p.factory = targetVal
		return p, nil
	}

	// 静态值只能是单例
	if mode == ModeFactory {
		return nil, fmt.Errorf("di: factory mode for %q requires a function, got %T", name, target)
	}
	p.isValue = true
	p.value = target
	return p, nil
}

// validateFactory 校验工厂函数签名：func() T 或 func() (T, error)。
func validateFactory(fnType reflect.Type) error {
	if fnType.NumIn() != 0 {
		return fmt.Errorf("di: factory function must take no arguments, got %d (use Injector.Provide for constructor injection)", fnType.NumIn())
	}
	if fnType.NumOut() == 0 {
		return fmt.Errorf("di: factory function must return at least one value")
	}
	if fnType.NumOut() > 2 {
		return fmt.Errorf("di: factory function must return (value) or (value, error)")
	}
	if fnType.NumOut() == 2 && !fnType.Out(1).Implements(errorType) {
		return fmt.Errorf("di: factory function's second return value must be error, got %v", fnType.Out(1))
	}
	return nil
}

// resolve 按条目模式解析出一个值。
func (p *provider) resolve() (any, error) {
	if p.isValue {
		return p.value, nil
	}

	if p.mode == ModeFactory {
		return callFunction(p.factory, nil)
	}

	// 单例：持锁双重检查，并发调用者阻塞直到第一次计算完成。
	// 失败不缓存，下一次解析重试工厂。
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.resolved {
		return p.cached, nil
	}

	val, err := callFunction(p.factory, nil)
	if err != nil {
		return nil, err
	}

	p.cached = val
	p.resolved = true
	return val, nil
}
