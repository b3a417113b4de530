package value

// 上下文与提取结果共用的值树：标量字符串、有序列表、有序映射三种形态

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type Kind int

const (
	StringKind Kind = iota
	ListKind
	MapKind
)

func (k Kind) String() string {
	switch k {
	case StringKind:
		return "string"
	case ListKind:
		return "list"
	case MapKind:
		return "map"
	}
	return "unknown"
}

// 值树节点，只有String、List、*Map三种实现
type Value interface {
	Kind() Kind
}

type String string

func (String) Kind() Kind { return StringKind }

func (s String) String() string { return string(s) }

type List []Value

func (List) Kind() Kind { return ListKind }

// 按插入顺序保存键的映射，重复Set会覆盖原值但保持原有位置
type Map struct {
	om *orderedmap.OrderedMap[string, Value]
}

func NewMap() *Map {
	return &Map{om: orderedmap.New[string, Value]()}
}

func (m *Map) Kind() Kind { return MapKind }

func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	return m.om.Get(key)
}

func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

func (m *Map) Set(key string, v Value) {
	m.om.Set(key, v)
}

// 链式Set，便于构造字面量
func (m *Map) With(key string, v Value) *Map {
	m.Set(key, v)
	return m
}

func (m *Map) Delete(key string) {
	m.om.Delete(key)
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return m.om.Len()
}

func (m *Map) Keys() []string {
	keys := make([]string, 0, m.Len())
	m.Range(func(k string, _ Value) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// 按插入顺序遍历，fn返回false时停止
func (m *Map) Range(fn func(key string, v Value) bool) {
	if m == nil {
		return
	}
	for pair := m.om.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// 浅拷贝
func (m *Map) Clone() *Map {
	c := NewMap()
	m.Range(func(k string, v Value) bool {
		c.Set(k, v)
		return true
	})
	return c
}

func (m *Map) GetString(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(String)
	return string(s), ok
}

func (m *Map) GetMap(key string) (*Map, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	sub, ok := v.(*Map)
	return sub, ok
}

func (m *Map) GetList(key string) (List, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	l, ok := v.(List)
	return l, ok
}

// 按插入顺序输出，字符串中的<、>、&原样保留
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := appendJSON(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (l List) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := appendJSON(&buf, l); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func appendJSON(buf *bytes.Buffer, v Value) error {
	switch x := v.(type) {
	case String:
		return appendString(buf, string(x))
	case List:
		buf.WriteByte('[')
		for i, item := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case *Map:
		if x == nil {
			buf.WriteString("null")
			return nil
		}
		buf.WriteByte('{')
		var err error
		first := true
		x.Range(func(k string, item Value) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err = appendString(buf, k); err != nil {
				return false
			}
			buf.WriteByte(':')
			err = appendJSON(buf, item)
			return err == nil
		})
		if err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil
	case nil:
		buf.WriteString("null")
		return nil
	}
	return fmt.Errorf("unsupported value %T", v)
}

func appendString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode会追加换行
	buf.Truncate(buf.Len() - 1)
	return nil
}

func (m *Map) Equal(o *Map) bool {
	return Equal(m, o)
}

func Equal(a, b Value) bool {
	switch x := a.(type) {
	case String:
		y, ok := b.(String)
		return ok && x == y
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Map:
		y, ok := b.(*Map)
		if !ok || x.Len() != y.Len() {
			return false
		}
		equal := true
		x.Range(func(k string, v Value) bool {
			w, found := y.Get(k)
			equal = found && Equal(v, w)
			return equal
		})
		return equal
	case nil:
		return b == nil
	}
	return false
}

/*
输入一个值树，输出由string、[]any、map[string]any组成的原生结构

该方法用于把值树交给模板引擎、JSONPath等只认识原生类型的组件，映射的键顺序在转换后丢失
*/
func Native(v Value) any {
	switch x := v.(type) {
	case String:
		return string(x)
	case List:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Native(e)
		}
		return out
	case *Map:
		out := make(map[string]any, x.Len())
		x.Range(func(k string, e Value) bool {
			out[k] = Native(e)
			return true
		})
		return out
	}
	return nil
}

/*
输入一个原生结构，输出值树

非字符串标量通过json编码成字符串，map按键名排序以保证输出稳定，nil转为空字符串
*/
func FromNative(v any) Value {
	switch x := v.(type) {
	case nil:
		return String("")
	case string:
		return String(x)
	case []any:
		out := make(List, len(x))
		for i, e := range x {
			out[i] = FromNative(e)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			m.Set(k, FromNative(x[k]))
		}
		return m
	case Value:
		return x
	}
	b, err := json.Marshal(v)
	if err != nil {
		return String("")
	}
	return String(b)
}
