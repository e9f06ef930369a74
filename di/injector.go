package di

import (
	"reflect"
	"sync"
)

// Injector 基于名称解析并调用可调用对象。
//
// 它持有一个 Registry，并缓存每个可调用对象派生出的签名元数据，
// 避免在每次调用时重复反射（重复派生被明确视为无谓开销）。
type Injector struct {
	registry *Registry

	mu      sync.RWMutex
	schemas map[reflect.Type]*schema
}

// NewInjector 创建使用指定注册表的注入器。
// registry 为 nil 时会创建一个新的空注册表。
func NewInjector(registry *Registry) *Injector {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Injector{
		registry: registry,
		schemas:  make(map[reflect.Type]*schema),
	}
}

// Registry 返回注入器持有的注册表。
func (inj *Injector) Registry() *Registry {
	return inj.registry
}

// DeriveSignature 派生可调用对象声明的依赖名称序列。
//
// 派生规则：
//   - 零参函数 -> 空签名
//   - 单个（指针）结构体参数 -> 按字段声明顺序派生，
//     名称取 `inject` 标签或小驼峰字段名，"-" 排除，",optional" 可选
//   - 其余位置参数形式 -> Go 反射拿不到参数名，派生返回空签名
//     且 Invoke 会要求通过 InvokeWith 提供显式签名
//
// 对同一个可调用对象重复调用返回同一个缓存的派生结果。
func (inj *Injector) DeriveSignature(fn any) (Signature, error) {
	s, err := inj.schemaFor(fn)
	if err != nil {
		return nil, err
	}
	return s.names, nil
}

// Invoke 解析可调用对象的全部依赖并调用它。
//
// 名称按声明顺序逐个解析（工厂副作用因此有确定的顺序），
// 任一非可选名称无法解析时返回 UnknownDependencyError，
// 此时底层函数不会被执行。
// 末位 error 返回值被拆出，其余返回第一个返回值。
func (inj *Injector) Invoke(fn any) (any, error) {
	s, err := inj.schemaFor(fn)
	if err != nil {
		return nil, err
	}

	fnVal := reflect.ValueOf(fn)

	switch s.kind {
	case schemaZero:
		return callFunction(fnVal, nil)

	case schemaStruct:
		arg, err := inj.buildStructArg(s)
		if err != nil {
			return nil, err
		}
		return callFunction(fnVal, []reflect.Value{arg})

	default:
		// 位置参数形式必须提供显式签名
		return nil, UnderivableSignatureError{NumIn: s.fnType.NumIn()}
	}
}

// InvokeWith 使用显式签名按位置注入并调用。
// 这是位置参数函数的注入入口：Go 反射拿不到参数名，
// 名称清单由调用方声明（相当于显式注册清单）。
// 签名长度与参数数量不一致时返回 ArityMismatchError。
func (inj *Injector) InvokeWith(fn any, sig Signature) (any, error) {
	fnType, err := funcTypeOf(fn)
	if err != nil {
		return nil, err
	}
	fnVal := reflect.ValueOf(fn)

	if len(sig) != fnType.NumIn() {
		return nil, ArityMismatchError{Expected: fnType.NumIn(), Got: len(sig)}
	}

	args := make([]reflect.Value, len(sig))
	for i, name := range sig {
		raw, err := inj.registry.Resolve(name)
		if err != nil {
			return nil, err
		}
		val, err := argValue(raw, fnType.In(i))
		if err != nil {
			return nil, err
		}
		args[i] = val
	}

	return callFunction(fnVal, args)
}

// Provide 注册一个经由注入器完成构造的提供者（构造函数注入）。
//
// ctor 的依赖在每次工厂执行时通过本注入器解析，
// Registry 本身保持无依赖。模式语义与 Registry.Register 相同。
func (inj *Injector) Provide(name string, ctor any, opts ...Option) error {
	if _, err := funcTypeOf(ctor); err != nil {
		return err
	}

	factory := func() (any, error) {
		return inj.Invoke(ctor)
	}
	return inj.registry.Register(name, factory, opts...)
}

// buildStructArg 构造参数结构体并注入各字段。
// 可选字段解析失败时保持字段的零值（即声明时的默认值）。
func (inj *Injector) buildStructArg(s *schema) (reflect.Value, error) {
	ptr := reflect.New(s.structArg)
	elem := ptr.Elem()

	for _, field := range s.fields {
		raw, err := inj.registry.Resolve(field.name)
		if err != nil {
			if field.optional && isUnknownDependency(err) {
				continue
			}
			return reflect.Value{}, err
		}

		target := elem.Field(field.index)
		val, err := argValue(raw, target.Type())
		if err != nil {
			return reflect.Value{}, err
		}
		target.Set(val)
	}

	if s.ptrArg {
		return ptr, nil
	}
	return elem, nil
}

// schemaFor 返回可调用对象的注入元数据，必要时派生并缓存。
// 缓存以函数类型为键：签名完全由声明决定，同类型函数共享派生结果。
func (inj *Injector) schemaFor(fn any) (*schema, error) {
	fnType, err := funcTypeOf(fn)
	if err != nil {
		return nil, err
	}

	inj.mu.RLock()
	s, ok := inj.schemas[fnType]
	inj.mu.RUnlock()
	if ok {
		return s, nil
	}

	s, err = deriveSchema(fnType)
	if err != nil {
		return nil, err
	}

	inj.mu.Lock()
	// 双重检查：并发派生时保留先写入的结果，保证返回同一个对象
	if existing, ok := inj.schemas[fnType]; ok {
		s = existing
	} else {
		inj.schemas[fnType] = s
	}
	inj.mu.Unlock()

	return s, nil
}

// funcTypeOf 校验可调用对象并返回其函数类型。
// nil 与非函数统一返回 NotFunctionError，各入口不再自行判断。
func funcTypeOf(fn any) (reflect.Type, error) {
	t := reflect.TypeOf(fn)
	if t == nil {
		return nil, NotFunctionError{GotType: "nil"}
	}
	if t.Kind() != reflect.Func {
		return nil, NotFunctionError{GotType: t.String()}
	}
	return t, nil
}

// isUnknownDependency 判断错误是否为未知依赖错误。
func isUnknownDependency(err error) bool {
	_, ok := err.(UnknownDependencyError)
	return ok
}
