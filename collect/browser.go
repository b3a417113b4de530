package collect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// 浏览器会话的最小接口，整个运行期间只使用一个会话和一个页面
type Browser interface {
	Navigate(url string) error
	WaitForNavigation() error
	// selector为XPath
	WaitUntilContainsElement(selector string) error
	HTML() (string, error)
	ClearCookies() error
	Close() error
}

// 基于chromedp的无头chrome实现
type ChromeBrowser struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

/*
输入超时时间和可选的代理地址，输出ChromeBrowser实例和一个错误

启动无头chrome并打开一个空白页面；timeout作用于之后的每一次浏览器调用
*/
func NewChromeBrowser(timeout time.Duration, proxyURL string) (*ChromeBrowser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if proxyURL != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(proxyURL))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	b := &ChromeBrowser{
		ctx: browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
		timeout: timeout,
	}
	// 首次Run才真正启动浏览器进程
	if err := chromedp.Run(browserCtx); err != nil {
		b.cancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return b, nil
}

func (b *ChromeBrowser) run(actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(b.ctx, b.timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

func (b *ChromeBrowser) Navigate(url string) error {
	return b.run(chromedp.Navigate(url))
}

func (b *ChromeBrowser) WaitForNavigation() error {
	return b.run(chromedp.WaitReady("body", chromedp.ByQuery))
}

func (b *ChromeBrowser) WaitUntilContainsElement(selector string) error {
	return b.run(chromedp.WaitReady(selector, chromedp.BySearch))
}

func (b *ChromeBrowser) HTML() (string, error) {
	var html string
	err := b.run(chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (b *ChromeBrowser) ClearCookies() error {
	return b.run(network.ClearBrowserCookies())
}

func (b *ChromeBrowser) Close() error {
	b.cancel()
	return nil
}

// 浏览器采集：懒启动单个会话，启动时清空cookie
type browserFetch struct {
	options
	once    sync.Once
	initErr error
}

func (f *browserFetch) session() (Browser, error) {
	f.once.Do(func() {
		if f.browser == nil {
			proxyURL := ""
			if len(f.proxies) > 0 {
				proxyURL = f.proxies[0]
			}
			b, err := NewChromeBrowser(f.timeout, proxyURL)
			if err != nil {
				f.initErr = err
				return
			}
			f.browser = b
		}
		if err := f.browser.ClearCookies(); err != nil {
			f.initErr = fmt.Errorf("clear cookies: %w", err)
		}
	})
	return f.browser, f.initErr
}

func (f *browserFetch) Get(ctx context.Context, req *Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := f.session()
	if err != nil {
		return "", err
	}
	if err := b.Navigate(req.URL); err != nil {
		return "", fmt.Errorf("navigate %s: %w", req.URL, err)
	}
	if err := b.WaitForNavigation(); err != nil {
		return "", fmt.Errorf("wait for %s: %w", req.URL, err)
	}
	if req.Ready != "" {
		if err := b.WaitUntilContainsElement(req.Ready); err != nil {
			return "", fmt.Errorf("wait for %s on %s: %w", req.Ready, req.URL, err)
		}
	}
	html, err := b.HTML()
	if err != nil {
		return "", fmt.Errorf("get html of %s: %w", req.URL, err)
	}
	f.logger.Debug("page fetched", zap.String("url", req.URL), zap.Int("length", len(html)))
	return html, persist(req, html)
}

// 关闭浏览器会话，未启动过时什么也不做
func (f *browserFetch) Close() error {
	if f.browser == nil {
		return nil
	}
	return f.browser.Close()
}
