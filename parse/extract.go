package parse

import (
	"fmt"

	"github.com/dszqbsm/jobcrawler/value"
	"golang.org/x/net/html"
)

// 结构化字段提取器，OnMissing在叶子查询没有匹配时被调用，提取继续进行
type Extractor struct {
	OnMissing func(key, query string)
}

/*
输入一个根节点和字段规格树，输出与规格树同形的值树和一个错误

输出是标量还是列表完全由匹配数量决定，规格中没有显式的"重复"标记：
  - 叶子查询：0个匹配得到空字符串并调用OnMissing；1个匹配得到该节点的文本；N个匹配得到按文档顺序排列的文本列表
  - 重定位节点：0个匹配返回ErrExtraction；1个匹配得到以该节点为根递归提取的子树；N个匹配得到子树列表

缺失的叶子可以容忍而缺失的重定位锚点不行，这一不对称是有意保留的
*/
func (x *Extractor) Extract(root *html.Node, spec FieldSpec) (*value.Map, error) {
	out := value.NewMap()
	for _, f := range spec {
		var (
			v   value.Value
			err error
		)
		if f.IsRebase() {
			v, err = x.rebase(root, f)
		} else {
			v, err = x.leaf(root, f)
		}
		if err != nil {
			return nil, err
		}
		out.Set(f.Key, v)
	}
	return out, nil
}

func (x *Extractor) leaf(root *html.Node, f Field) (value.Value, error) {
	nodes, err := Query(root, f.Query)
	if err != nil {
		return nil, err
	}
	switch len(nodes) {
	case 0:
		if x.OnMissing != nil {
			x.OnMissing(f.Key, f.Query)
		}
		return value.String(""), nil
	case 1:
		return value.String(Text(nodes[0])), nil
	}
	list := make(value.List, 0, len(nodes))
	for _, n := range nodes {
		list = append(list, value.String(Text(n)))
	}
	return list, nil
}

func (x *Extractor) rebase(root *html.Node, f Field) (value.Value, error) {
	nodes, err := Query(root, f.Base)
	if err != nil {
		return nil, err
	}
	switch len(nodes) {
	case 0:
		return nil, fmt.Errorf("%w: could not rebase to %s for '%s'", ErrExtraction, f.Base, f.Key)
	case 1:
		return x.Extract(nodes[0], f.Fields)
	}
	list := make(value.List, 0, len(nodes))
	for _, n := range nodes {
		sub, err := x.Extract(n, f.Fields)
		if err != nil {
			return nil, err
		}
		list = append(list, sub)
	}
	return list, nil
}

// 以文档根节点为起点解析HTML并提取
func (x *Extractor) ExtractHTML(doc string, spec FieldSpec) (*value.Map, error) {
	root, err := LoadHTML(doc)
	if err != nil {
		return nil, err
	}
	return x.Extract(root, spec)
}
