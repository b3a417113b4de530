package collector

// 最终结果的输出：CSV、JSON序列化，以及供存储引擎使用的数据单元

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dszqbsm/jobcrawler/value"
)

// 数据单元，Data是已经展平的一行
type DataCell struct {
	Table string
	Data  *value.Map
}

func (d *DataCell) GetTableName() string {
	return d.Table
}

// 定义了存储引擎的统一规范
type Storage interface {
	Save(datas ...*DataCell) error
	Flush() error
}

/*
输入一行数据，输出展平后的一行

嵌套映射和列表的键以"父键-子键"拼接，列表的子键为下标，例如{"a": {"b": 1}}展平为{"a-b": 1}；已经是平的映射原样返回
*/
func Flatten(row *value.Map) *value.Map {
	out := value.NewMap()
	row.Range(func(k string, v value.Value) bool {
		switch x := v.(type) {
		case *value.Map:
			Flatten(x).Range(func(sub string, sv value.Value) bool {
				out.Set(k+"-"+sub, sv)
				return true
			})
		case value.List:
			Flatten(listAsMap(x)).Range(func(sub string, sv value.Value) bool {
				out.Set(k+"-"+sub, sv)
				return true
			})
		default:
			out.Set(k, v)
		}
		return true
	})
	return out
}

func listAsMap(l value.List) *value.Map {
	m := value.NewMap()
	for i, v := range l {
		m.Set(strconv.Itoa(i), v)
	}
	return m
}

/*
输入一个值，输出CSV的行列表和一个错误

值必须是列表，每个元素是一行：映射和列表会被展平，标量视为只有value一列的行
*/
func Rows(v value.Value) ([]*value.Map, error) {
	list, ok := v.(value.List)
	if !ok {
		return nil, fmt.Errorf("csv output needs a list of rows, got %s", v.Kind())
	}
	rows := make([]*value.Map, 0, len(list))
	for _, item := range list {
		switch x := item.(type) {
		case *value.Map:
			rows = append(rows, Flatten(x))
		case value.List:
			rows = append(rows, Flatten(listAsMap(x)))
		default:
			rows = append(rows, value.NewMap().With("value", x))
		}
	}
	return rows, nil
}

/*
输入一个写入目标和一个值，输出一个错误

第一行展平后的键作为表头，之后每行按自身的顺序写出各列的值
*/
func WriteCSV(w io.Writer, v value.Value) error {
	rows, err := Rows(v)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	for i, row := range rows {
		if i == 0 {
			if err := cw.Write(row.Keys()); err != nil {
				return err
			}
		}
		record := make([]string, 0, row.Len())
		row.Range(func(_ string, v value.Value) bool {
			record = append(record, cell(v))
			return true
		})
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// 展平后的值只剩标量
func cell(v value.Value) string {
	if s, ok := v.(value.String); ok {
		return string(s)
	}
	if m, ok := v.(json.Marshaler); ok {
		b, _ := m.MarshalJSON()
		return string(b)
	}
	return ""
}

// 缩进四个空格的JSON，<、>、&不转义
func WriteJSON(w io.Writer, v value.Value) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

/*
输入一个输出目标，输出可写入的io.WriteCloser和一个错误

目标为空或"-"时写到stdout，否则创建（或截断）同名文件
*/
func Open(dest string, stdout io.Writer) (io.WriteCloser, error) {
	if dest == "" || dest == "-" {
		return nopCloser{stdout}, nil
	}
	f, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", dest, err)
	}
	return f, nil
}
