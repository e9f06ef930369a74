package di

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Signature 是从可调用对象声明中派生出的依赖名称序列，
// 按声明顺序从左到右排列。一旦派生即不可变。
type Signature []string

// schemaKind 区分可调用对象的注入形态。
type schemaKind int

const (
	// schemaZero 零参函数，签名为空
	schemaZero schemaKind = iota
	// schemaStruct 单个参数结构体，按字段派生名称
	schemaStruct
	// schemaPositional 多位置参数，Go 反射无法取到参数名，
	// 必须通过 InvokeWith 提供显式签名
	schemaPositional
)

// paramField 记录参数结构体中一个待注入字段的元数据。
type paramField struct {
	index    int
	name     string
	optional bool
}

// schema 是针对某个可调用对象预计算好的注入元数据。
// 每个可调用对象只派生一次，缓存在 Injector 中复用。
type schema struct {
	kind      schemaKind
	fnType    reflect.Type
	structArg reflect.Type // 参数结构体类型（指针已解开）
	ptrArg    bool         // 参数是否为结构体指针
	fields    []paramField
	names     Signature
}

// deriveSchema 通过反射检查函数声明，派生注入元数据。
// 仅使用结构化的反射信息，绝不解析反汇编或字符串化的表示。
func deriveSchema(fnType reflect.Type) (*schema, error) {
	if fnType.Kind() != reflect.Func {
		return nil, NotFunctionError{GotType: fnType.String()}
	}

	s := &schema{fnType: fnType}

	if fnType.NumIn() == 0 {
		s.kind = schemaZero
		s.names = Signature{}
		return s, nil
	}

	if fnType.NumIn() == 1 {
		argType := fnType.In(0)
		structType := argType
		if structType.Kind() == reflect.Ptr {
			structType = structType.Elem()
			s.ptrArg = true
		}
		if structType.Kind() == reflect.Struct {
			s.kind = schemaStruct
			s.structArg = structType
			if err := deriveStructFields(s); err != nil {
				return nil, err
			}
			return s, nil
		}
	}

	s.kind = schemaPositional
	return s, nil
}

// deriveStructFields 按声明顺序提取参数结构体的可注入字段。
// 标签格式: `inject:"name,optional"`，"-" 表示排除该字段；
// 未加标签的导出字段以小驼峰字段名作为依赖名称。
func deriveStructFields(s *schema) error {
	names := make(Signature, 0, s.structArg.NumField())

	for i := 0; i < s.structArg.NumField(); i++ {
		field := s.structArg.Field(i)

		// 非导出字段无法通过反射赋值，视为不可注入
		if field.PkgPath != "" {
			continue
		}

		name := lowerCamel(field.Name)
		optional := false

		if tagValue, hasTag := field.Tag.Lookup("inject"); hasTag {
			parts := strings.Split(tagValue, ",")
			tagName := strings.TrimSpace(parts[0])

			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
			for _, part := range parts[1:] {
				if strings.TrimSpace(part) == "optional" {
					optional = true
				}
			}
		}

		if !validName(name) {
			return fmt.Errorf("di: field %s of %v derives invalid dependency name %q", field.Name, s.structArg, name)
		}

		s.fields = append(s.fields, paramField{
			index:    i,
			name:     name,
			optional: optional,
		})
		names = append(names, name)
	}

	s.names = names
	return nil
}

// lowerCamel 将导出字段名转换为小驼峰形式（Greeter -> greeter）。
func lowerCamel(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToLower(r)) + name[size:]
}
