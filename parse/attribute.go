package parse

import (
	"fmt"

	"github.com/antchfx/htmlquery"
	"github.com/dszqbsm/jobcrawler/value"
)

/*
输入HTML文本、XPath查询、属性名和描述，输出所有匹配节点的属性值列表和一个错误

允许0到N个匹配；任何一个匹配节点缺少该属性都返回ErrAttribute
*/
func Attributes(doc, query, attr, what string) (value.List, error) {
	root, err := LoadHTML(doc)
	if err != nil {
		return nil, err
	}
	nodes, err := Query(root, query)
	if err != nil {
		return nil, err
	}
	out := make(value.List, 0, len(nodes))
	for _, n := range nodes {
		if !hasAttribute(n, attr) {
			return nil, fmt.Errorf("%w: could not retrieve %s - element has no %s attribute", ErrAttribute, what, attr)
		}
		out = append(out, value.String(htmlquery.SelectAttr(n, attr)))
	}
	return out, nil
}

/*
输入同Attributes，输出唯一匹配节点的属性值和一个错误

必须恰好匹配一个节点，0个或多个都返回ErrExtraction
*/
func Attribute(doc, query, attr, what string) (value.String, error) {
	list, err := Attributes(doc, query, attr, what)
	if err != nil {
		return "", err
	}
	switch len(list) {
	case 0:
		return "", fmt.Errorf("%w: could not retrieve %s - not found", ErrExtraction, what)
	case 1:
		return list[0].(value.String), nil
	}
	return "", fmt.Errorf("%w: could not retrieve %s - not single valued", ErrExtraction, what)
}
