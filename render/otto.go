package render

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dszqbsm/jobcrawler/value"
	"github.com/robertkrimen/otto"
	"go.uber.org/zap"
)

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// 基于otto的渲染器：{{ }}之间的内容作为JavaScript表达式求值，上下文的键注入为全局变量
type OttoRenderer struct {
	logger *zap.Logger
}

func NewOttoRenderer(logger *zap.Logger) *OttoRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OttoRenderer{logger: logger}
}

// 单轮渲染，每次调用都新建一个虚拟机
func (r *OttoRenderer) Render(tpl string, vars *value.Map) (string, error) {
	return r.Bind(vars).Render(tpl)
}

// 绑定上下文，返回的会话在多轮渲染之间复用同一个虚拟机
func (r *OttoRenderer) Bind(vars *value.Map) Session {
	return &ottoSession{
		vars:     vars,
		logger:   r.logger,
		injected: make(map[string]bool),
	}
}

type ottoSession struct {
	vm       *otto.Otto
	vars     *value.Map
	logger   *zap.Logger
	injected map[string]bool
}

/*
输入一个模板字符串，输出单轮渲染结果和一个错误

标记之外的文本原样保留；引用未定义变量或访问未定义属性的表达式渲染为空字符串，undefined和null同样渲染为空字符串；
只渲染一轮，渲染结果中新出现的标记留给Expander的下一轮处理
*/
func (s *ottoSession) Render(tpl string) (string, error) {
	if s.vm == nil {
		s.vm = otto.New()
	}
	if err := s.inject(tpl); err != nil {
		return "", err
	}

	var sb strings.Builder
	rest := tpl
	for {
		start := strings.Index(rest, OpenMarker)
		if start < 0 {
			sb.WriteString(rest)
			break
		}
		end := strings.Index(rest[start+len(OpenMarker):], CloseMarker)
		if end < 0 {
			return "", fmt.Errorf("unterminated %s in %q", OpenMarker, tpl)
		}
		sb.WriteString(rest[:start])
		expr := strings.TrimSpace(rest[start+len(OpenMarker) : start+len(OpenMarker)+end])
		out, err := s.eval(expr)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
		rest = rest[start+len(OpenMarker)+end+len(CloseMarker):]
	}
	return sb.String(), nil
}

// 只注入模板文本中出现过且尚未注入的键
func (s *ottoSession) inject(tpl string) error {
	var err error
	s.vars.Range(func(k string, v value.Value) bool {
		if s.injected[k] || !identRe.MatchString(k) || !strings.Contains(tpl, k) {
			return true
		}
		if err = s.vm.Set(k, jsValue(v)); err != nil {
			return false
		}
		s.injected[k] = true
		return true
	})
	return err
}

func (s *ottoSession) eval(expr string) (string, error) {
	if expr == "" {
		return "", nil
	}
	v, err := s.vm.Run("(" + expr + ")")
	if err != nil {
		msg := err.Error()
		switch {
		case strings.HasPrefix(msg, "ReferenceError"):
			s.logger.Warn("undefined name in template", zap.String("expr", expr), zap.Error(err))
			return "", nil
		case strings.HasPrefix(msg, "TypeError"):
			s.logger.Debug("undefined member in template", zap.String("expr", expr), zap.Error(err))
			return "", nil
		}
		return "", fmt.Errorf("evaluate %q: %w", expr, err)
	}
	if v.IsUndefined() || v.IsNull() {
		return "", nil
	}
	return v.String(), nil
}

/*
输入一个值，输出注入虚拟机的Go值

标量能无损地在数字与文本之间往返时注入为数字，例如"1"、"2.5"；"007"、"1e3"、"0x10"等保持字符串
*/
func jsValue(v value.Value) any {
	switch x := v.(type) {
	case value.String:
		s := string(x)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || strconv.FormatFloat(f, 'f', -1, 64) != s {
			return s
		}
		return f
	case value.List:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = jsValue(e)
		}
		return out
	case *value.Map:
		out := make(map[string]any, x.Len())
		x.Range(func(k string, e value.Value) bool {
			out[k] = jsValue(e)
			return true
		})
		return out
	}
	return nil
}
