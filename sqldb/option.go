package sqldb

import (
	"go.uber.org/zap"
)

type options struct {
	logger  *zap.Logger
	connURL string
	maxConn int
}

var defaultOptions = options{
	logger:  zap.NewNop(),
	maxConn: 4,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// MySQL DSN，例如 user:pass@tcp(127.0.0.1:3306)/crawler?charset=utf8mb4
func WithConnURL(connURL string) Option {
	return func(opts *options) {
		opts.connURL = connURL
	}
}

func WithMaxConn(n int) Option {
	return func(opts *options) {
		opts.maxConn = n
	}
}
