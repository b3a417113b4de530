package collect

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// 不执行JavaScript的HTTP采集，Ready字段被忽略
type baseFetch struct {
	options
}

/*
输入一个上下文和一个采集请求，输出页面HTML和一个错误

该方法用于发送HTTP GET请求并获取响应，若响应状态码不为200，则返回错误，否则将响应体转换为UTF-8编码并保存到req.File
*/
func (f *baseFetch) Get(ctx context.Context, req *Request) (string, error) {
	client := &http.Client{
		Timeout: f.timeout,
	}
	if f.proxy != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = f.proxy
		client.Transport = transport
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return "", fmt.Errorf("get url failed:%w", err)
	}
	if req.Ready != "" {
		f.logger.Debug("ready selector ignored by http fetcher", zap.String("ready", req.Ready))
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("error status code:%d", resp.StatusCode)
	}

	bodyReader := bufio.NewReader(resp.Body)
	e := DeterminEncoding(bodyReader, f.logger)
	b, err := io.ReadAll(transform.NewReader(bodyReader, e.NewDecoder()))
	if err != nil {
		return "", err
	}
	html := string(b)
	return html, persist(req, html)
}

// 根据响应的前1024个字节推断编码，无法推断时按UTF-8处理
func DeterminEncoding(r *bufio.Reader, logger *zap.Logger) encoding.Encoding {
	bytes, err := r.Peek(1024)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		logger.Error("fetch failed", zap.Error(err))
		return unicode.UTF8
	}
	e, _, _ := charset.DetermineEncoding(bytes, "")
	return e
}
