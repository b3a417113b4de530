package collect

// 页面采集：浏览器渲染、普通HTTP请求、读取本地文件三种方式统一在Fetcher接口之后

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dszqbsm/jobcrawler/proxy"
	"go.uber.org/zap"
)

type FetchType int

const (
	BrowserFetchType FetchType = iota
	BaseFetchType
	FileFetchType
)

var ErrNoFile = errors.New("no file to read")

// 一次页面采集请求，各字段均已完成模板展开
type Request struct {
	URL   string // 页面地址
	Ready string // 可选，XPath，等待该元素出现后再取HTML
	File  string // 可选，网络采集时保存原始HTML，离线时从该文件读取
	What  string // 可选，状态输出中使用的描述
}

type Fetcher interface {
	/*
	   输入一个上下文和一个采集请求，输出页面HTML和一个错误

	   该方法阻塞直到页面加载完成（以及Ready元素出现），超时或导航失败时返回错误
	*/
	Get(ctx context.Context, req *Request) (string, error)
}

type options struct {
	timeout time.Duration
	proxy   proxy.ProxyFunc
	proxies []string
	browser Browser
	logger  *zap.Logger
}

var defaultOptions = options{
	timeout: 30 * time.Second,
	logger:  zap.NewNop(),
}

type Option func(opts *options)

func WithTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		opts.timeout = timeout
	}
}

// 代理地址列表，HTTP采集轮询使用，浏览器采集使用第一个
func WithProxies(urls ...string) Option {
	return func(opts *options) {
		opts.proxies = urls
	}
}

// 指定浏览器实现，未指定时首次采集才启动chrome
func WithBrowser(b Browser) Option {
	return func(opts *options) {
		opts.browser = b
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

/*
输入一个FetchType和若干配置，输出对应的Fetcher实例和一个错误

代理地址无法解析时返回错误
*/
func NewFetchService(typ FetchType, opts ...Option) (Fetcher, error) {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.proxies) > 0 {
		p, err := proxy.RoundRobinProxySwitcher(o.proxies...)
		if err != nil {
			return nil, err
		}
		o.proxy = p
	}
	switch typ {
	case BaseFetchType:
		return &baseFetch{options: o}, nil
	case FileFetchType:
		return &fileFetch{}, nil
	default:
		return &browserFetch{options: o}, nil
	}
}

type fileFetch struct{}

func (*fileFetch) Get(ctx context.Context, req *Request) (string, error) {
	if req.File == "" {
		return "", ErrNoFile
	}
	b, err := os.ReadFile(req.File)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", req.File, err)
	}
	return string(b), nil
}

// 网络采集成功后把原始HTML写入req.File
func persist(req *Request, html string) error {
	if req.File == "" {
		return nil
	}
	if err := os.WriteFile(req.File, []byte(html), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", req.File, err)
	}
	return nil
}
