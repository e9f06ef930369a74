// Package di 提供基于名称的依赖注入能力。
//
// 核心由两部分组成：
//
//   - Registry: 名称到提供者（单例值或工厂函数）的注册表。
//   - Injector: 从可调用对象的声明中派生依赖名称签名（Signature），
//     逐个解析后按位置注入并调用。
//
// 与按类型解析的容器不同，这里的依赖以字符串名称为键，
// 大小写敏感，一个名称唯一对应至多一个提供者。
// 注册表只能通过显式的 Register / Unregister 修改，解析失败
// 永远以错误的形式上抛，不会静默返回占位值。
package di

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry 是名称到提供者的注册表。
// 可安全地被多个 goroutine 并发使用：
// 注册表本身由读写锁保护，单例的记忆化由条目级锁保护。
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*provider
}

// NewRegistry 创建一个空的注册表。
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*provider),
	}
}

// Register 以指定名称注册提供者。
//
// target 可以是：
//   - 零参工厂函数 func() T 或 func() (T, error)
//   - 任意静态值（始终按单例处理）
//
// 模式默认为单例（惰性计算，成功后缓存）；
// 使用 WithFactory() 可以让每次解析都重新调用工厂。
// 名称已存在时返回 DuplicateRegistrationError，不会覆盖。
func (r *Registry) Register(name string, target any, opts ...Option) error {
	if !validName(name) {
		return InvalidNameError{Name: name}
	}

	settings := applyOptions(opts)
	p, err := newProvider(name, target, settings.mode)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return DuplicateRegistrationError{Name: name}
	}

	r.entries[name] = p
	return nil
}

// Unregister 移除一个已注册的名称。
// 名称不存在时返回 UnknownDependencyError。
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; !exists {
		return UnknownDependencyError{Name: name}
	}

	delete(r.entries, name)
	return nil
}

// Resolve 解析名称对应的值。
//
// 单例模式：首次解析时调用工厂并缓存，此后返回同一个值；
// 工厂失败不会污染条目，后续解析会重试。
// 工厂模式：每次调用工厂产生新值。
// 名称未注册时返回 UnknownDependencyError。
func (r *Registry) Resolve(name string) (any, error) {
	// 在读锁内取出条目指针，保证单次解析看到的是一致的注册表快照。
	// 解析本身在锁外进行，避免用户工厂阻塞整个注册表。
	r.mu.RLock()
	p, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, UnknownDependencyError{Name: name}
	}

	return p.resolve()
}

// Has 报告名称是否已注册。
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Mode 返回名称对应条目的解析模式。
// 名称未注册时返回 UnknownDependencyError。
func (r *Registry) Mode(name string) (Mode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.entries[name]
	if !ok {
		return 0, UnknownDependencyError{Name: name}
	}
	return p.mode, nil
}

// Names 返回当前已注册的所有名称（无顺序语义）。
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}

// Resolve 泛型辅助函数，解析并断言为类型 T。
// 类型不匹配时返回 WrongTypeError。
func Resolve[T any](r *Registry, name string) (T, error) {
	var zero T

	raw, err := r.Resolve(name)
	if err != nil {
		return zero, err
	}

	val, ok := raw.(T)
	if !ok {
		return zero, WrongTypeError{Name: name, GotType: fmt.Sprintf("%T", raw)}
	}
	return val, nil
}

// MustResolve 解析并断言为类型 T，失败时 panic。
// 适用于组合根中缺失依赖应当快速失败的场景。
func MustResolve[T any](r *Registry, name string) T {
	val, err := Resolve[T](r, name)
	if err != nil {
		panic(err)
	}
	return val
}

// validName 校验依赖名称。
// 名称必须以字母或下划线开头；后续字符允许字母、数字、下划线，
// 以及作为命名空间分隔符的 . : - （例如 "db:default", "config:app.name"）。
func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c >= '0' && c <= '9', c == '.', c == ':', c == '-':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()
