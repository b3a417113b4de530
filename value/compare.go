package value

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

/*
输入两个值，输出-1、0、1

比较规则：能解析为数字的标量排在其余标量之前，数字之间按数值比较，其余标量按字节序比较；不同形态之间 标量 < 列表 < 映射；
列表和映射先比较长度，再逐个元素比较（映射按插入顺序比较键和值）
*/
func Compare(a, b Value) int {
	if a.Kind() != b.Kind() {
		return cmpInt(int(a.Kind()), int(b.Kind()))
	}
	switch x := a.(type) {
	case String:
		return compareScalar(string(x), string(b.(String)))
	case List:
		y := b.(List)
		if c := cmpInt(len(x), len(y)); c != 0 {
			return c
		}
		for i := range x {
			if c := Compare(x[i], y[i]); c != 0 {
				return c
			}
		}
		return 0
	case *Map:
		y := b.(*Map)
		if c := cmpInt(x.Len(), y.Len()); c != 0 {
			return c
		}
		xk, yk := x.Keys(), y.Keys()
		for i := range xk {
			if c := strings.Compare(xk[i], yk[i]); c != 0 {
				return c
			}
			xv, _ := x.Get(xk[i])
			yv, _ := y.Get(yk[i])
			if c := Compare(xv, yv); c != 0 {
				return c
			}
		}
	}
	return 0
}

// 数字与非数字分成两组，保证比较满足传递性
func compareScalar(a, b string) int {
	fa, numA := number(a)
	fb, numB := number(b)
	switch {
	case numA && numB:
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return strings.Compare(a, b)
	case numA:
		return -1
	case numB:
		return 1
	}
	return strings.Compare(a, b)
}

func number(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// 返回升序排列后的新列表，原列表不变
func Sorted(l List) List {
	out := make(List, len(l))
	copy(out, l)
	sort.SliceStable(out, func(i, j int) bool {
		return Compare(out[i], out[j]) < 0
	})
	return out
}
