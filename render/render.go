package render

// 模板展开：反复渲染字符串直到不再包含表达式标记，用于展开任务中引用上下文变量的字段

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dszqbsm/jobcrawler/value"
	"go.uber.org/zap"
)

var ErrTemplateExpansion = errors.New("template expansion failed")

const (
	OpenMarker  = "{{"
	CloseMarker = "}}"

	DefaultMaxPasses = 32
)

// 模板渲染器统一规范，渲染期间上下文只读
type Renderer interface {
	Render(tpl string, vars *value.Map) (string, error)
}

// 一次展开期间的渲染会话
type Session interface {
	Render(tpl string) (string, error)
}

// 可选接口：渲染器实现Bind时，一次展开的各轮共用同一个会话
type Binder interface {
	Bind(vars *value.Map) Session
}

type Expander struct {
	renderer  Renderer
	maxPasses int
	logger    *zap.Logger
}

type Option func(e *Expander)

func WithRenderer(r Renderer) Option {
	return func(e *Expander) {
		e.renderer = r
	}
}

func WithMaxPasses(n int) Option {
	return func(e *Expander) {
		e.maxPasses = n
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Expander) {
		e.logger = logger
	}
}

func NewExpander(opts ...Option) *Expander {
	e := &Expander{
		maxPasses: DefaultMaxPasses,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.renderer == nil {
		e.renderer = NewOttoRenderer(e.logger)
	}
	return e
}

/*
输入一个模板字符串和上下文，输出展开后的字符串和一个错误

每一轮把整个字符串交给渲染器，渲染结果若仍包含"{{"则继续下一轮，这样上下文中本身是模板的变量也能被展开；
超过maxPasses轮仍有标记时返回ErrTemplateExpansion，避免自引用的变量导致死循环。
不含标记的字符串不会触发渲染器
*/
func (e *Expander) Expand(tpl string, vars *value.Map) (string, error) {
	s := tpl
	var session Session
	for pass := 0; strings.Contains(s, OpenMarker); pass++ {
		if pass >= e.maxPasses {
			return "", fmt.Errorf("%w: %q still unresolved after %d passes", ErrTemplateExpansion, tpl, e.maxPasses)
		}
		if session == nil {
			session = e.bind(vars)
		}
		out, err := session.Render(s)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrTemplateExpansion, s, err)
		}
		e.logger.Debug("template pass", zap.Int("pass", pass), zap.String("in", s), zap.String("out", out))
		s = out
	}
	return s, nil
}

func (e *Expander) bind(vars *value.Map) Session {
	if b, ok := e.renderer.(Binder); ok {
		return b.Bind(vars)
	}
	return sessionFunc(func(tpl string) (string, error) {
		return e.renderer.Render(tpl, vars)
	})
}

type sessionFunc func(tpl string) (string, error)

func (f sessionFunc) Render(tpl string) (string, error) {
	return f(tpl)
}

/*
输入一个键名、一个字段映射和上下文，输出展开后的字符串、是否存在以及错误

字段不存在时ok为false；字段存在但不是标量视为配置错误
*/
func (e *Expander) Field(key string, fields *value.Map, vars *value.Map) (string, bool, error) {
	v, ok := fields.Get(key)
	if !ok {
		return "", false, nil
	}
	s, isStr := v.(value.String)
	if !isStr {
		return "", true, fmt.Errorf("%w: field %q must be a string, got %s", ErrTemplateExpansion, key, v.Kind())
	}
	out, err := e.Expand(string(s), vars)
	return out, true, err
}
