package proxy

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
)

var ErrNoProxy = errors.New("proxy url list is empty")

// 与http.Transport.Proxy签名一致
type ProxyFunc func(*http.Request) (*url.URL, error)

type roundRobin struct {
	urls []*url.URL
	next uint32
}

func (r *roundRobin) pick(*http.Request) (*url.URL, error) {
	i := atomic.AddUint32(&r.next, 1) - 1
	return r.urls[i%uint32(len(r.urls))], nil
}

/*
输入一个或多个代理地址，输出按轮询顺序选择代理的ProxyFunc和一个错误

地址必须带有http、https或socks5协议头和主机名
*/
func RoundRobinProxySwitcher(proxyURLs ...string) (ProxyFunc, error) {
	if len(proxyURLs) == 0 {
		return nil, ErrNoProxy
	}
	urls := make([]*url.URL, len(proxyURLs))
	for i, raw := range proxyURLs {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("proxy %q: %w", raw, err)
		}
		switch u.Scheme {
		case "http", "https", "socks5":
		default:
			return nil, fmt.Errorf("proxy %q: unsupported scheme %q", raw, u.Scheme)
		}
		if u.Host == "" {
			return nil, fmt.Errorf("proxy %q: missing host", raw)
		}
		urls[i] = u
	}
	return (&roundRobin{urls: urls}).pick, nil
}
