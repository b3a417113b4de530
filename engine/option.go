package engine

import (
	"io"
	"os"

	"github.com/dszqbsm/jobcrawler/collect"
	"github.com/dszqbsm/jobcrawler/collector"
	"github.com/dszqbsm/jobcrawler/render"
	"go.uber.org/zap"
)

type Option func(opts *options)

// 解释器配置选项
type options struct {
	Fetcher      collect.Fetcher   // 网络采集器
	LocalFetcher collect.Fetcher   // 离线模式下读取本地文件的采集器
	Storage      collector.Storage // store操作使用的存储引擎，可以为空
	Expander     *render.Expander  // 模板展开
	Logger       *zap.Logger       // 日志
	Status       io.Writer         // 面向用户的状态输出：message、Fetching、警告、dump
	Stdout       io.Writer         // output未指定目标时写入的位置
}

var defaultOptions = options{
	Logger: zap.NewNop(),
	Status: os.Stdout,
	Stdout: os.Stdout,
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.Logger = logger
	}
}

func WithFetcher(fetcher collect.Fetcher) Option {
	return func(opts *options) {
		opts.Fetcher = fetcher
	}
}

func WithLocalFetcher(fetcher collect.Fetcher) Option {
	return func(opts *options) {
		opts.LocalFetcher = fetcher
	}
}

func WithStorage(storage collector.Storage) Option {
	return func(opts *options) {
		opts.Storage = storage
	}
}

func WithExpander(expander *render.Expander) Option {
	return func(opts *options) {
		opts.Expander = expander
	}
}

func WithStatus(w io.Writer) Option {
	return func(opts *options) {
		opts.Status = w
	}
}

func WithStdout(w io.Writer) Option {
	return func(opts *options) {
		opts.Stdout = w
	}
}
