package di

import "strconv"

// DuplicateRegistrationError 重复注册错误。
// 当一个名称已经被注册时再次 Register 会返回此错误，不会静默覆盖。
type DuplicateRegistrationError struct {
	// Name 冲突的依赖名称
	Name string
}

// Error 实现 error 接口。
func (e DuplicateRegistrationError) Error() string {
	// 示例: di: dependency "db" already registered
	return "di: dependency " + strconv.Quote(e.Name) + " already registered"
}

// UnknownDependencyError 未知依赖错误。
// 解析或注销一个未注册的名称时返回，绝不会返回 nil 占位值。
type UnknownDependencyError struct {
	// Name 未找到的依赖名称
	Name string
}

// Error 实现 error 接口。
func (e UnknownDependencyError) Error() string {
	// 示例: di: dependency "db" not registered
	return "di: dependency " + strconv.Quote(e.Name) + " not registered"
}

// ArityMismatchError 注入参数数量不匹配错误。
// 当显式签名的名称数量与函数的参数数量不一致时返回。
type ArityMismatchError struct {
	// Expected 函数声明的参数数量
	Expected int
	// Got 签名提供的名称数量
	Got int
}

// Error 实现 error 接口。
func (e ArityMismatchError) Error() string {
	return "di: signature has " + strconv.Itoa(e.Got) +
		" names but callable expects " + strconv.Itoa(e.Expected) + " arguments"
}

// UnderivableSignatureError 无法派生签名错误。
// 多参数位置形式的函数在反射层拿不到参数名，
// 此类函数必须通过 InvokeWith / DecorateWith 提供显式签名。
type UnderivableSignatureError struct {
	// NumIn 函数声明的参数数量
	NumIn int
}

// Error 实现 error 接口。
func (e UnderivableSignatureError) Error() string {
	return "di: cannot derive dependency names for a " + strconv.Itoa(e.NumIn) +
		"-parameter function, provide an explicit signature via InvokeWith"
}

// WrongTypeError 类型不匹配错误。
// 依赖存在但其值不是请求的类型时由泛型 Resolve[T] 返回。
type WrongTypeError struct {
	// Name 请求的依赖名称
	Name string
	// GotType 实际存储值的类型字符串
	GotType string
}

// Error 实现 error 接口。
func (e WrongTypeError) Error() string {
	return "di: dependency " + strconv.Quote(e.Name) + " has wrong type (" + e.GotType + ")"
}

// NotFunctionError 非函数错误。
// Invoke/DeriveSignature/Decorate 要求传入函数时返回。
type NotFunctionError struct {
	// GotType 实际传入值的类型字符串
	GotType string
}

// Error 实现 error 接口。
func (e NotFunctionError) Error() string {
	return "di: callable must be a function, got " + e.GotType
}

// InvalidNameError 非法名称错误。
// 依赖名称必须是合法的标识符（允许 . : - 作为命名空间分隔符）。
type InvalidNameError struct {
	// Name 非法的名称
	Name string
}

// Error 实现 error 接口。
func (e InvalidNameError) Error() string {
	return "di: invalid dependency name " + strconv.Quote(e.Name)
}
