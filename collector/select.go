package collector

import (
	"fmt"
	"strings"

	"github.com/dszqbsm/jobcrawler/value"
	"github.com/ohler55/ojg/jp"
)

/*
输入上下文和数据源名称，输出数据源的值、是否存在和一个错误

from以"$"开头时作为JSONPath在整个上下文上求值，结果总是列表（结果中映射的键按名称排序）；否则直接取上下文中的同名键
*/
func Select(ctx *value.Map, from string) (value.Value, bool, error) {
	if !strings.HasPrefix(from, "$") {
		v, ok := ctx.Get(from)
		return v, ok, nil
	}
	x, err := jp.ParseString(from)
	if err != nil {
		return nil, false, fmt.Errorf("invalid jsonpath '%s': %w", from, err)
	}
	results := x.Get(value.Native(ctx))
	out := make(value.List, 0, len(results))
	for _, r := range results {
		out = append(out, value.FromNative(r))
	}
	return out, true, nil
}
