package engine

import (
	"context"
	"fmt"

	"github.com/dszqbsm/jobcrawler/spider"
	"github.com/dszqbsm/jobcrawler/value"
	"go.uber.org/zap"
)

/*
输入当前元素、任务、上下文和剩余的迭代层级，输出一个错误

每次调用消耗一个层级：按 上下文 -> 当前元素 -> 任务data -> 任务自身字段 的顺序查找数据源，
依次把每个元素绑定到上下文的name上，然后
  - 还有剩余层级且元素是列表或映射：以该元素为当前元素进入下一层
  - 元素是上下文中已有的键名：以上下文中该键的值为当前元素，用同样的剩余层级再遍历一次
  - 否则执行一次任务的操作
绑定对后续迭代、上层和之后的任务都可见
*/
func (c *Crawler) walk(ctx context.Context, item value.Value, job *spider.Job, vars *value.Map, levels []spider.Level) error {
	if len(levels) == 0 {
		return fmt.Errorf("%w: no iteration level left in %s", spider.ErrConfig, job.Name())
	}
	level, rest := levels[0], levels[1:]
	c.Logger.Debug("walk level",
		zap.String("job", job.Name()),
		zap.String("name", level.Name),
		zap.String("key", level.Key),
		zap.Int("remaining", len(rest)),
		zap.Any("item", item))

	from, err := source(level, item, job, vars)
	if err != nil {
		return err
	}
	elems, err := elements(from)
	if err != nil {
		return fmt.Errorf("%w: data source %s for %s in %s: %v", spider.ErrConfig, level.Key, level.Name, job.Name(), err)
	}

	for _, elem := range elems {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.Logger.Debug("bind", zap.String("name", level.Name), zap.Any("value", elem))
		vars.Set(level.Name, elem)

		if len(rest) > 0 && elem.Kind() != value.StringKind {
			err = c.walk(ctx, elem, job, vars, rest)
		} else if ref, ok := elem.(value.String); ok && vars.Has(string(ref)) {
			next, _ := vars.Get(string(ref))
			err = c.walk(ctx, next, job, vars, rest)
		} else {
			err = c.dispatch(ctx, job, vars)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// 数据源查找，先找到的优先
func source(level spider.Level, item value.Value, job *spider.Job, vars *value.Map) (value.Value, error) {
	if v, ok := vars.Get(level.Key); ok {
		return v, nil
	}
	if m, ok := item.(*value.Map); ok {
		if v, ok := m.Get(level.Key); ok {
			return v, nil
		}
	}
	if v, ok := job.Data().Get(level.Key); ok {
		return v, nil
	}
	if v, ok := job.Fields().Get(level.Key); ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: unable to find data source %s for %s in %s", spider.ErrConfig, level.Key, level.Name, job.Name())
}

// 迭代的是数据源的快照，迭代过程中对上下文的修改不影响本轮的元素
func elements(v value.Value) ([]value.Value, error) {
	switch x := v.(type) {
	case value.List:
		out := make([]value.Value, len(x))
		copy(out, x)
		return out, nil
	case *value.Map:
		out := make([]value.Value, 0, x.Len())
		x.Range(func(_ string, v value.Value) bool {
			out = append(out, v)
			return true
		})
		return out, nil
	}
	return nil, fmt.Errorf("not iterable: %s", v.Kind())
}
