package engine

import (
	"context"
	"fmt"

	"github.com/dszqbsm/jobcrawler/collect"
	"github.com/dszqbsm/jobcrawler/collector"
	"github.com/dszqbsm/jobcrawler/parse"
	"github.com/dszqbsm/jobcrawler/spider"
	"github.com/dszqbsm/jobcrawler/value"
	"go.uber.org/zap"
)

/*
输入一个上下文、任务和共享上下文，输出一个错误

按任务的operation执行一次，结果直接写入vars；需要抓取页面的操作在抓取前先校验操作名
*/
func (c *Crawler) dispatch(ctx context.Context, job *spider.Job, vars *value.Map) error {
	op := job.Operation()
	c.Logger.Debug("operation", zap.String("job", job.Name()), zap.String("operation", op))

	switch op {
	case spider.OpDump:
		return c.dump(vars)
	case spider.OpMessage:
		return c.message(job, vars)
	case spider.OpSort:
		sortInto(job, vars)
		return nil
	case spider.OpOutput:
		return c.output(job, vars)
	case spider.OpStore:
		return c.store(job, vars)
	case spider.OpAttribute, spider.OpAttributes, spider.OpItems:
		return c.scrape(ctx, job, vars)
	}
	return fmt.Errorf("%w: unknown operation %s", spider.ErrConfig, op)
}

func (c *Crawler) message(job *spider.Job, vars *value.Map) error {
	msg, _, err := c.Expander.Field("message", job.Fields(), vars)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.Status, msg)
	return nil
}

// into不存在或不是列表时什么也不做
func sortInto(job *spider.Job, vars *value.Map) {
	into, ok := job.String("into")
	if !ok {
		return
	}
	if list, ok := vars.GetList(into); ok {
		vars.Set(into, value.Sorted(list))
	}
}

/*
输入任务和上下文，输出一个错误

目标和格式的优先级都是 运行级配置 > 任务 > 默认（标准输出、csv）
*/
func (c *Crawler) output(job *spider.Job, vars *value.Map) error {
	c.Logger.Debug("output", zap.Any("context", vars))

	dest, ok, err := c.Expander.Field(spider.KeyOutput, vars, vars)
	if err != nil {
		return err
	}
	if !ok {
		if dest, _, err = c.Expander.Field(spider.KeyOutput, job.Fields(), vars); err != nil {
			return err
		}
	}

	format := spider.FormatCSV
	if f, ok := vars.GetString(spider.KeyFormat); ok {
		format = f
	} else if f, ok := job.String(spider.KeyFormat); ok {
		format = f
	}
	if !spider.ValidFormat(format) {
		return fmt.Errorf("%w: invalid output format %s", spider.ErrConfig, format)
	}

	data, err := c.selectFrom(job, vars)
	if err != nil {
		return err
	}

	w, err := collector.Open(dest, c.Stdout)
	if err != nil {
		return err
	}
	if format == spider.FormatJSON {
		err = collector.WriteJSON(w, data)
	} else {
		err = collector.WriteCSV(w, data)
	}
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}

/*
输入任务和上下文，输出一个错误

每一行按CSV的规则展平后交给存储引擎，table支持模板
*/
func (c *Crawler) store(job *spider.Job, vars *value.Map) error {
	if c.Storage == nil {
		return fmt.Errorf("%w: store in %s needs %s", spider.ErrConfig, job.Name(), spider.KeySQLURL)
	}
	table, ok, err := c.Expander.Field("table", job.Fields(), vars)
	if err != nil {
		return err
	}
	if !ok || table == "" {
		return fmt.Errorf("%w: store in %s needs table", spider.ErrConfig, job.Name())
	}
	data, err := c.selectFrom(job, vars)
	if err != nil {
		return err
	}
	rows, err := collector.Rows(data)
	if err != nil {
		return err
	}
	cells := make([]*collector.DataCell, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, &collector.DataCell{Table: table, Data: row})
	}
	return c.Storage.Save(cells...)
}

func (c *Crawler) selectFrom(job *spider.Job, vars *value.Map) (value.Value, error) {
	from, err := spider.Require(job.Fields(), "from", job.Name())
	if err != nil {
		return nil, err
	}
	data, ok, err := collector.Select(vars, from)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", spider.ErrConfig, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: nothing to write, %s is not set", spider.ErrConfig, from)
	}
	return data, nil
}

/*
输入一个上下文、任务和共享上下文，输出一个错误

attribute要求恰好一个匹配，写入标量；attributes把所有匹配的属性追加到列表；items把整棵提取结果追加到列表
*/
func (c *Crawler) scrape(ctx context.Context, job *spider.Job, vars *value.Map) error {
	extract, err := job.Extract()
	if err != nil {
		return err
	}
	into, err := spider.Require(extract, "into", job.Name()+" extract")
	if err != nil {
		return err
	}

	html, err := c.fetch(ctx, job, vars)
	if err != nil {
		return err
	}

	switch job.Operation() {
	case spider.OpAttribute, spider.OpAttributes:
		query, err := spider.Require(extract, "xpath", job.Name()+" extract")
		if err != nil {
			return err
		}
		attr, err := spider.Require(extract, "attribute", job.Name()+" extract")
		if err != nil {
			return err
		}
		what, _, err := c.Expander.Field("what", extract, vars)
		if err != nil {
			return err
		}
		if job.Operation() == spider.OpAttribute {
			v, err := parse.Attribute(html, query, attr, what)
			if err != nil {
				return err
			}
			vars.Set(into, v)
			return nil
		}
		values, err := parse.Attributes(html, query, attr, what)
		if err != nil {
			return err
		}
		return appendTo(vars, into, values...)

	default:
		items, ok := extract.GetMap("items")
		if !ok {
			return fmt.Errorf("%w: %s extract needs an items mapping", spider.ErrConfig, job.Name())
		}
		spec, err := parse.NewFieldSpec(items)
		if err != nil {
			return err
		}
		tree, err := c.extractor.ExtractHTML(html, spec)
		if err != nil {
			return err
		}
		return appendTo(vars, into, tree)
	}
}

// 追加到上下文中的列表，不存在时先创建
func appendTo(vars *value.Map, into string, items ...value.Value) error {
	cur, ok := vars.Get(into)
	if !ok {
		cur = value.List{}
	}
	list, ok := cur.(value.List)
	if !ok {
		return fmt.Errorf("%w: cannot append to %s, it holds a %s", spider.ErrConfig, into, cur.Kind())
	}
	next := make(value.List, 0, len(list)+len(items))
	next = append(next, list...)
	vars.Set(into, append(next, items...))
	return nil
}

/*
输入一个上下文、任务和共享上下文，输出页面HTML和一个错误

url、ready、file、what都先做模板展开；离线模式读取file，否则通过网络采集器获取并在设置了what时输出状态行
*/
func (c *Crawler) fetch(ctx context.Context, job *spider.Job, vars *value.Map) (string, error) {
	req := &collect.Request{}
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"url", &req.URL},
		{"ready", &req.Ready},
		{"file", &req.File},
		{"what", &req.What},
	} {
		s, _, err := c.Expander.Field(f.key, job.Fields(), vars)
		if err != nil {
			return "", err
		}
		*f.dst = s
	}

	if spider.Offline(vars) {
		if req.File == "" {
			return "", fmt.Errorf("%w: %s runs offline but has no file", spider.ErrConfig, job.Name())
		}
		c.Logger.Debug("read local file", zap.String("file", req.File))
		return c.LocalFetcher.Get(ctx, req)
	}

	if req.URL == "" {
		return "", fmt.Errorf("%w: %s needs url", spider.ErrConfig, job.Name())
	}
	if c.Fetcher == nil {
		return "", fmt.Errorf("%w: no fetcher for %s", spider.ErrConfig, job.Name())
	}
	if req.What != "" {
		dest := ""
		if req.File != "" {
			dest = " to " + req.File
		}
		fmt.Fprintf(c.Status, "Fetching %s from %s%s\n", req.What, req.URL, dest)
	}
	html, err := c.Fetcher.Get(ctx, req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", req.URL, err)
	}
	return html, nil
}
