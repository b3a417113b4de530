package parse

// 基于XPath的页面解析：构建DOM树、执行路径查询、按字段规格树提取结构化数据

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

var (
	ErrExtraction = errors.New("extraction failed")
	ErrAttribute  = errors.New("attribute missing")
)

// 已编译的XPath表达式缓存，同一个查询在循环中会被反复执行
var (
	exprCache     = map[string]*xpath.Expr{}
	exprCacheLock sync.Mutex
)

/*
输入一段HTML文本，输出文档根节点和一个错误

不完整或不规范的HTML由html解析器自动补全，不会因此报错
*/
func LoadHTML(s string) (*html.Node, error) {
	doc, err := htmlquery.Parse(strings.NewReader(s))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

/*
输入一个根节点和一个XPath查询，输出按文档顺序排列的匹配节点和一个错误

查询以root为上下文节点求值，"./td"这样的相对路径只在root子树内匹配，"//h1"这样的绝对路径仍然搜索整个文档；
XPath语法错误返回ErrExtraction
*/
func Query(root *html.Node, query string) ([]*html.Node, error) {
	expr, err := compile(query)
	if err != nil {
		return nil, err
	}
	return htmlquery.QuerySelectorAll(root, expr), nil
}

func compile(query string) (*xpath.Expr, error) {
	exprCacheLock.Lock()
	defer exprCacheLock.Unlock()
	if expr, ok := exprCache[query]; ok {
		return expr, nil
	}
	expr, err := xpath.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid xpath %q: %v", ErrExtraction, query, err)
	}
	exprCache[query] = expr
	return expr, nil
}

// 节点的文本内容，包含所有后代文本节点
func Text(n *html.Node) string {
	return htmlquery.InnerText(n)
}

func hasAttribute(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}
