package engine

// 解释器入口：按声明顺序执行任务，上下文在所有任务之间共享

import (
	"context"
	"fmt"
	"io"

	"github.com/dszqbsm/jobcrawler/collect"
	"github.com/dszqbsm/jobcrawler/parse"
	"github.com/dszqbsm/jobcrawler/render"
	"github.com/dszqbsm/jobcrawler/spider"
	"github.com/dszqbsm/jobcrawler/value"
	"go.uber.org/zap"
)

type Crawler struct {
	extractor parse.Extractor
	options
}

func NewEngine(opts ...Option) *Crawler {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.Expander == nil {
		options.Expander = render.NewExpander(render.WithLogger(options.Logger))
	}
	if options.LocalFetcher == nil {
		options.LocalFetcher, _ = collect.NewFetchService(collect.FileFetchType)
	}
	c := &Crawler{options: options}
	c.extractor.OnMissing = func(key, query string) {
		fmt.Fprintf(c.Status, "Could not extract '%s' - inserting blank field\n", key)
		c.Logger.Debug("field not found", zap.String("field", key), zap.String("xpath", query))
	}
	return c
}

/*
输入一个上下文和运行配置，输出最终的上下文和一个错误

声明了keys的任务交给数据遍历器，其余任务直接执行一次；遇到第一个错误立即停止，
已经写出的输出不会回滚。结束时刷新存储引擎并关闭采集器
*/
func (c *Crawler) Run(ctx context.Context, cfg *spider.Config) (*value.Map, error) {
	vars := cfg.Context
	defer c.closeFetcher()

	for _, job := range cfg.Jobs {
		if err := ctx.Err(); err != nil {
			return vars, err
		}
		var err error
		if job.HasKeys() {
			err = c.walk(ctx, job.Data(), job, vars, job.Keys())
		} else {
			err = c.dispatch(ctx, job, vars)
		}
		if err != nil {
			return vars, fmt.Errorf("job %s: %w", job.Name(), err)
		}
	}

	if c.Storage != nil {
		if err := c.Storage.Flush(); err != nil {
			return vars, fmt.Errorf("flush storage: %w", err)
		}
	}
	return vars, nil
}

func (c *Crawler) closeFetcher() {
	closer, ok := c.Fetcher.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		c.Logger.Warn("close fetcher failed", zap.Error(err))
	}
}
