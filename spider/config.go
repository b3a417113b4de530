package spider

// 运行配置：从YAML加载，整个配置映射同时作为初始上下文

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dszqbsm/jobcrawler/value"
	"gopkg.in/yaml.v3"
)

var ErrConfig = errors.New("configuration error")

const (
	FormatCSV  = "csv"
	FormatJSON = "json"

	DefaultTimeout = 30 * time.Second
)

// 运行级配置键
const (
	KeyFormat  = "format"
	KeyOutput  = "output"
	KeyNetwork = "network"
	KeyDebug   = "debug"
	KeyJobs    = "jobs"
	KeyLocal   = "local"
	KeySQLURL  = "sql_url"
	KeyProxy   = "proxy"
	KeyTimeout = "timeout"
	KeyFetcher = "fetcher"
)

type Config struct {
	Context *value.Map
	Jobs    []*Job
}

/*
输入一个YAML文件路径，输出运行配置和一个错误

该方法读取文件后交给ParseConfig解析，此时还没有合并命令行参数，也没有校验format
*/
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return ParseConfig(b)
}

/*
输入YAML文本，输出运行配置和一个错误

顶层必须是映射；映射的键顺序被保留；所有标量都保存为字符串，null保存为空字符串，
因此只写了键名的network:、debug:也算"存在"
*/
func ParseConfig(b []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	ctx := value.NewMap()
	if len(doc.Content) > 0 {
		v, err := fromNode(doc.Content[0])
		if err != nil {
			return nil, err
		}
		m, ok := v.(*value.Map)
		if !ok {
			return nil, fmt.Errorf("%w: top level must be a mapping", ErrConfig)
		}
		ctx = m
	}
	cfg := &Config{Context: ctx}
	if err := cfg.loadJobs(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadJobs() error {
	raw, ok := c.Context.Get(KeyJobs)
	if !ok {
		return nil
	}
	list, ok := raw.(value.List)
	if !ok {
		return fmt.Errorf("%w: jobs must be a list", ErrConfig)
	}
	for i, item := range list {
		m, ok := item.(*value.Map)
		if !ok {
			return fmt.Errorf("%w: jobs[%d] must be a mapping", ErrConfig, i)
		}
		job, err := NewJob(m)
		if err != nil {
			return fmt.Errorf("jobs[%d]: %w", i, err)
		}
		c.Jobs = append(c.Jobs, job)
	}
	return nil
}

func fromNode(n *yaml.Node) (value.Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return value.String(""), nil
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return value.String(""), nil
		}
		return value.String(n.Value), nil
	case yaml.SequenceNode:
		list := make(value.List, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.MappingNode:
		m := value.NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: line %d: mapping keys must be scalars", ErrConfig, k.Line)
			}
			if m.Has(k.Value) {
				return nil, fmt.Errorf("%w: line %d: duplicate key %q", ErrConfig, k.Line, k.Value)
			}
			val, err := fromNode(v)
			if err != nil {
				return nil, err
			}
			m.Set(k.Value, val)
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: line %d: unsupported yaml node", ErrConfig, n.Line)
}

// 用命令行参数覆盖配置中的同名键
func (c *Config) Override(key, val string) {
	c.Context.Set(key, value.String(val))
}

// 校验运行级format
func (c *Config) Validate() error {
	if f, ok := c.Context.GetString(KeyFormat); ok && !ValidFormat(f) {
		return fmt.Errorf("%w: invalid output format %s", ErrConfig, f)
	}
	return nil
}

func ValidFormat(f string) bool {
	return f == FormatCSV || f == FormatJSON
}

func (c *Config) Debug() bool {
	return c.Context.Has(KeyDebug)
}

// network存在或local为y时不访问网络，改为读取file指定的本地文件
func Offline(ctx *value.Map) bool {
	if ctx.Has(KeyNetwork) {
		return true
	}
	local, _ := ctx.GetString(KeyLocal)
	return local == "y"
}

func (c *Config) Offline() bool {
	return Offline(c.Context)
}

func (c *Config) SQLURL() string {
	s, _ := c.Context.GetString(KeySQLURL)
	return s
}

// proxy既可以是单个地址也可以是地址列表
func (c *Config) Proxies() []string {
	raw, ok := c.Context.Get(KeyProxy)
	if !ok {
		return nil
	}
	switch x := raw.(type) {
	case value.String:
		if x == "" {
			return nil
		}
		return []string{string(x)}
	case value.List:
		out := make([]string, 0, len(x))
		for _, v := range x {
			if s, ok := v.(value.String); ok && s != "" {
				out = append(out, string(s))
			}
		}
		return out
	}
	return nil
}

// 抓取超时，单位毫秒
func (c *Config) Timeout() time.Duration {
	s, ok := c.Context.GetString(KeyTimeout)
	if !ok {
		return DefaultTimeout
	}
	ms, err := strconv.Atoi(s)
	if err != nil || ms <= 0 {
		return DefaultTimeout
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Config) Fetcher() string {
	s, _ := c.Context.GetString(KeyFetcher)
	return s
}
