package engine

import (
	"fmt"
	"strconv"

	"github.com/dszqbsm/jobcrawler/value"
	"github.com/jedib0t/go-pretty/v6/list"
)

// 以缩进树的形式把整个上下文写到状态输出，上下文不变
func (c *Crawler) dump(vars *value.Map) error {
	_, err := fmt.Fprintln(c.Status, DumpTree(vars))
	return err
}

func DumpTree(v value.Value) string {
	l := list.NewWriter()
	l.SetStyle(list.StyleConnectedRounded)
	appendTree(l, v)
	if l.Length() == 0 {
		return "(empty)"
	}
	return l.Render()
}

func appendTree(l list.Writer, v value.Value) {
	switch x := v.(type) {
	case *value.Map:
		x.Range(func(k string, child value.Value) bool {
			appendNode(l, k, child)
			return true
		})
	case value.List:
		for i, child := range x {
			appendNode(l, "["+strconv.Itoa(i)+"]", child)
		}
	default:
		l.AppendItem(fmt.Sprint(x))
	}
}

func appendNode(l list.Writer, label string, v value.Value) {
	if s, ok := v.(value.String); ok {
		l.AppendItem(label + ": " + string(s))
		return
	}
	l.AppendItem(label)
	l.Indent()
	appendTree(l, v)
	l.UnIndent()
}
