package cmd

import (
	"context"
	"fmt"

	"github.com/dszqbsm/jobcrawler/collect"
	"github.com/dszqbsm/jobcrawler/collector/sqlstorage"
	"github.com/dszqbsm/jobcrawler/engine"
	"github.com/dszqbsm/jobcrawler/log"
	"github.com/dszqbsm/jobcrawler/spider"
	"github.com/dszqbsm/jobcrawler/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cmd.go借助cobra定义命令行：根命令读取一个YAML任务文件并执行，version子命令打印版本信息
// 任何致命错误都只打印"Error: ..."，进程仍以0退出

type flags struct {
	debug   bool
	format  string
	network bool
	output  string
	logFile string
	fetcher string
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print version.",
		Long:  "print version.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			version.Printer(cmd.OutOrStdout())
		},
	}
}

func NewRootCmd() *cobra.Command {
	f := &flags{}
	rootCmd := &cobra.Command{
		Use:           "jobcrawler [-d] [-h] [-o <file>] [-f <json|csv>] [-n] <yaml-file>",
		Short:         "run the jobs declared in a YAML file.",
		Long:          "run the jobs declared in a YAML file: fetch pages, extract fields by XPath and write the collected data as CSV or JSON.",
		Version:       version.GetVersion(),
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := run(cmd, args[0], f); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Error: %v\n", err)
			}
			return nil
		},
	}
	rootCmd.Flags().BoolVarP(&f.debug, "debug", "d", false, "debug")
	rootCmd.Flags().StringVarP(&f.format, "format", "f", "", "output as json or csv")
	rootCmd.Flags().BoolVarP(&f.network, "no-network", "n", false, "do not use network, read from files")
	rootCmd.Flags().StringVarP(&f.output, "output", "o", "", "output to file instead of screen")
	rootCmd.Flags().StringVar(&f.logFile, "log-file", "", "also write logs to this file")
	rootCmd.Flags().StringVar(&f.fetcher, "fetcher", "", "browser or http")
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func Execute() {
	NewRootCmd().Execute()
}

/*
输入cobra命令、YAML文件路径和命令行参数，输出一个错误

加载配置后用命令行参数覆盖同名键，再构建日志、采集器和可选的MySQL存储，最后执行所有任务
*/
func run(cmd *cobra.Command, path string, f *flags) error {
	cfg, err := spider.LoadConfig(path)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("format") {
		cfg.Override(spider.KeyFormat, f.format)
	}
	if cmd.Flags().Changed("output") {
		cfg.Override(spider.KeyOutput, f.output)
	}
	if f.network {
		cfg.Override(spider.KeyNetwork, "")
	}
	if f.debug {
		cfg.Override(spider.KeyDebug, "")
	}
	if f.fetcher != "" {
		cfg.Override(spider.KeyFetcher, f.fetcher)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer := log.Setup(cfg.Debug(), f.logFile)
	defer closer.Close()
	defer logger.Sync()
	logger.Debug("config loaded", zap.String("file", path), zap.Any("context", cfg.Context))

	fetchType, err := fetchTypeOf(cfg.Fetcher())
	if err != nil {
		return err
	}
	fetcher, err := collect.NewFetchService(fetchType,
		collect.WithTimeout(cfg.Timeout()),
		collect.WithProxies(cfg.Proxies()...),
		collect.WithLogger(logger.Named("fetch")),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", spider.ErrConfig, err)
	}

	opts := []engine.Option{
		engine.WithLogger(logger.Named("engine")),
		engine.WithFetcher(fetcher),
		engine.WithStatus(cmd.OutOrStdout()),
		engine.WithStdout(cmd.OutOrStdout()),
	}
	if url := cfg.SQLURL(); url != "" {
		storage, err := sqlstorage.New(
			sqlstorage.WithSQLURL(url),
			sqlstorage.WithLogger(logger.Named("sqlDB")),
		)
		if err != nil {
			return fmt.Errorf("create sqlstorage: %w", err)
		}
		opts = append(opts, engine.WithStorage(storage))
	}

	_, err = engine.NewEngine(opts...).Run(context.Background(), cfg)
	return err
}

func fetchTypeOf(name string) (collect.FetchType, error) {
	switch name {
	case "", "browser":
		return collect.BrowserFetchType, nil
	case "http":
		return collect.BaseFetchType, nil
	}
	return 0, fmt.Errorf("%w: unknown fetcher %s", spider.ErrConfig, name)
}
