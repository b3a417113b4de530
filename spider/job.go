package spider

import (
	"fmt"

	"github.com/dszqbsm/jobcrawler/value"
)

// 任务支持的操作
const (
	OpDump       = "dump"
	OpMessage    = "message"
	OpSort       = "sort"
	OpOutput     = "output"
	OpStore      = "store"
	OpAttribute  = "attribute"
	OpAttributes = "attributes"
	OpItems      = "items"
)

// 迭代层级：把数据源Key中的每个元素依次绑定到上下文变量Name
type Level struct {
	Name string
	Key  string
}

// 一个声明式任务，加载后不再修改
type Job struct {
	fields *value.Map
	levels []Level
}

/*
输入任务的配置映射，输出任务实例和一个错误

operation必须是字符串；keys存在时必须是由{name, key}映射组成的列表；data存在时必须是映射
*/
func NewJob(fields *value.Map) (*Job, error) {
	op, ok := fields.GetString("operation")
	if !ok || op == "" {
		return nil, fmt.Errorf("%w: job without operation", ErrConfig)
	}
	j := &Job{fields: fields}

	if raw, ok := fields.Get("keys"); ok {
		list, ok := raw.(value.List)
		if !ok {
			return nil, fmt.Errorf("%w: keys of job %s must be a list", ErrConfig, j.Name())
		}
		for i, item := range list {
			m, ok := item.(*value.Map)
			if !ok {
				return nil, fmt.Errorf("%w: keys[%d] of job %s must be a mapping", ErrConfig, i, j.Name())
			}
			name, okName := m.GetString("name")
			key, okKey := m.GetString("key")
			if !okName || !okKey || name == "" || key == "" {
				return nil, fmt.Errorf("%w: keys[%d] of job %s needs name and key", ErrConfig, i, j.Name())
			}
			j.levels = append(j.levels, Level{Name: name, Key: key})
		}
	}

	if raw, ok := fields.Get("data"); ok {
		if _, ok := raw.(*value.Map); !ok {
			return nil, fmt.Errorf("%w: data of job %s must be a mapping", ErrConfig, j.Name())
		}
	}
	return j, nil
}

func (j *Job) Operation() string {
	op, _ := j.fields.GetString("operation")
	return op
}

// 任务名，未配置时用操作名代替，仅用于日志和诊断信息
func (j *Job) Name() string {
	if name, ok := j.fields.GetString("name"); ok && name != "" {
		return name
	}
	return j.Operation()
}

// 任务自身的全部字段
func (j *Job) Fields() *value.Map {
	return j.fields
}

// 按声明顺序返回迭代层级的副本
func (j *Job) Keys() []Level {
	out := make([]Level, len(j.levels))
	copy(out, j.levels)
	return out
}

func (j *Job) HasKeys() bool {
	return len(j.levels) > 0
}

// 任务本地数据源，未配置时为nil
func (j *Job) Data() *value.Map {
	m, _ := j.fields.GetMap("data")
	return m
}

func (j *Job) String(key string) (string, bool) {
	return j.fields.GetString(key)
}

// 抓取类操作的extract配置
func (j *Job) Extract() (*value.Map, error) {
	m, ok := j.fields.GetMap("extract")
	if !ok {
		return nil, fmt.Errorf("%w: job %s needs an extract mapping", ErrConfig, j.Name())
	}
	return m, nil
}

// 读取必填的字符串字段
func Require(m *value.Map, key, where string) (string, error) {
	s, ok := m.GetString(key)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %s needs %s", ErrConfig, where, key)
	}
	return s, nil
}
