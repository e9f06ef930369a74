package di

import (
	"fmt"
	"reflect"
)

// callFunction 通过反射调用函数并整理返回值。
// 封装了反射调用的细节：末位 error 返回值会被拆出，
// 其余情况下返回第一个返回值（没有返回值时为 nil）。
func callFunction(fn reflect.Value, args []reflect.Value) (any, error) {
	results := fn.Call(args)

	if len(results) == 0 {
		return nil, nil
	}

	// 检查末位 error
	last := results[len(results)-1]
	if last.Type().Implements(errorType) {
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
		if len(results) == 1 {
			// 只有一个 error 返回值
			return nil, nil
		}
	}

	return results[0].Interface(), nil
}

// argValue 将解析出的依赖值转换为目标参数类型的 reflect.Value。
// nil 值映射为目标类型的零值（例如解析出 nil 接口时）。
func argValue(raw any, targetType reflect.Type) (reflect.Value, error) {
	if raw == nil {
		return reflect.Zero(targetType), nil
	}

	val := reflect.ValueOf(raw)
	if !val.Type().AssignableTo(targetType) {
		return reflect.Value{}, fmt.Errorf("di: resolved value of type %v is not assignable to %v", val.Type(), targetType)
	}
	return val, nil
}
