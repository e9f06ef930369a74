package di

// Decorated 是 Decorate 的返回形态：零参调用即触发解析并执行原函数。
type Decorated func() (any, error)

// Decorate 将可调用对象包装为零参形态。
//
// 调用包装结果时，注入器先解析原函数声明的全部依赖，
// 再以解析结果调用原函数，返回值语义与 Invoke 一致。
//
// 包装通过闭包组合实现，不会改写任何共享的名称绑定，
// 因此可以安全地层层叠加：已经是零参形态的包装会被原样返回，
// Decorate(Decorate(f)) 与 Decorate(f) 行为完全相同，
// 不会产生第二次解析或重复的工厂副作用。
func (inj *Injector) Decorate(fn any) Decorated {
	switch wrapped := fn.(type) {
	case Decorated:
		return wrapped
	case func() (any, error):
		return wrapped
	}

	return func() (any, error) {
		return inj.Invoke(fn)
	}
}

// DecorateWith 以显式签名包装位置参数函数为零参形态。
// 语义与 InvokeWith 相同，签名在包装时即被捕获。
func (inj *Injector) DecorateWith(fn any, sig Signature) Decorated {
	switch wrapped := fn.(type) {
	case Decorated:
		return wrapped
	case func() (any, error):
		return wrapped
	}

	return func() (any, error) {
		return inj.InvokeWith(fn, sig)
	}
}
