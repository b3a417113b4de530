package parse

import (
	"errors"
	"fmt"

	"github.com/dszqbsm/jobcrawler/value"
)

var ErrSpec = errors.New("invalid field spec")

// 字段规格树中的一个条目：要么是叶子查询，要么是先重定位到Base再递归Fields的子树
type Field struct {
	Key    string
	Query  string
	Base   string
	Fields FieldSpec
}

func (f Field) IsRebase() bool {
	return f.Base != ""
}

// 有序的字段规格树，输出按声明顺序排列
type FieldSpec []Field

/*
输入一个配置映射，输出字段规格树和一个错误

映射的值为字符串时是叶子查询；为{base, fields}映射时是重定位节点，两者缺一不可；其他形态返回ErrSpec
*/
func NewFieldSpec(m *value.Map) (FieldSpec, error) {
	spec := make(FieldSpec, 0, m.Len())
	var err error
	m.Range(func(key string, v value.Value) bool {
		var f Field
		f, err = newField(key, v)
		if err != nil {
			return false
		}
		spec = append(spec, f)
		return true
	})
	if err != nil {
		return nil, err
	}
	return spec, nil
}

func newField(key string, v value.Value) (Field, error) {
	switch x := v.(type) {
	case value.String:
		if x == "" {
			return Field{}, fmt.Errorf("%w: empty query for %q", ErrSpec, key)
		}
		return Field{Key: key, Query: string(x)}, nil
	case *value.Map:
		base, ok := x.GetString("base")
		if !ok || base == "" {
			return Field{}, fmt.Errorf("%w: %q needs a base query", ErrSpec, key)
		}
		sub, ok := x.GetMap("fields")
		if !ok {
			return Field{}, fmt.Errorf("%w: %q needs a fields mapping", ErrSpec, key)
		}
		fields, err := NewFieldSpec(sub)
		if err != nil {
			return Field{}, err
		}
		return Field{Key: key, Base: base, Fields: fields}, nil
	}
	return Field{}, fmt.Errorf("%w: %q must be a query or {base, fields}, got %s", ErrSpec, key, v.Kind())
}
