package log

// 日志只写到标准错误和可选的日志文件，标准输出留给状态行和output结果

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Plugin = zapcore.Core

func NewLogger(plugin zapcore.Core, options ...zap.Option) *zap.Logger {
	return zap.New(plugin, append(DefaultOption(), options...)...)
}

func NewPlugin(writer zapcore.WriteSyncer, enabler zapcore.LevelEnabler) Plugin {
	return zapcore.NewCore(DefaultEncoder(), writer, enabler)
}

func NewStderrPlugin(enabler zapcore.LevelEnabler) Plugin {
	return zapcore.NewCore(ConsoleEncoder(), zapcore.Lock(zapcore.AddSync(os.Stderr)), enabler)
}

// lumberjack没有暴露Sync，需要在进程退出前调用返回的closer把内容刷到磁盘
func NewFilePlugin(filePath string, enabler zapcore.LevelEnabler) (Plugin, io.Closer) {
	var writer = DefaultLumberjackLogger()
	writer.Filename = filePath
	return NewPlugin(zapcore.AddSync(writer), enabler), writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

/*
输入是否调试和日志文件路径，输出日志实例和一个closer

总是写标准错误；filePath不为空时同时以JSON写入轮转文件
*/
func Setup(debug bool, filePath string) (*zap.Logger, io.Closer) {
	level := LevelFor(debug)
	plugins := []Plugin{NewStderrPlugin(level)}
	var closer io.Closer = nopCloser{}
	if filePath != "" {
		var file Plugin
		file, closer = NewFilePlugin(filePath, level)
		plugins = append(plugins, file)
	}
	return NewLogger(zapcore.NewTee(plugins...)), closer
}
