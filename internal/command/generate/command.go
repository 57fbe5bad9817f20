// Package generate 提供 .env 文件生成命令。
package generate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lwmacct/251207-go-pkg-version/pkg/version"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/260831-go-pkg-envgen/internal/command"
	"github.com/lwmacct/260831-go-pkg-envgen/internal/config"
	"github.com/lwmacct/260831-go-pkg-envgen/pkg/envfile"
)

// Command 生成命令
var Command = &cli.Command{
	Name:   "generate",
	Usage:  "读取模板并生成 .env 文件",
	Action: action,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "generate-template",
			Aliases: []string{"t"},
			Value:   command.Defaults.Generate.Template,
			Usage:   "模板文件路径",
		},
		&cli.StringFlag{
			Name:    "generate-output",
			Aliases: []string{"o"},
			Value:   command.Defaults.Generate.Output,
			Usage:   "输出文件路径",
		},
		&cli.StringFlag{
			Name:  "generate-marker",
			Value: command.Defaults.Generate.Marker,
			Usage: "标记文件路径: 存在则截断输出, 不存在则追加; 为空时总是截断",
		},
		&cli.StringSliceFlag{
			Name:  "resolver-prefixes",
			Value: command.Defaults.Resolver.Prefixes,
			Usage: "识别为命令的前缀 token",
		},
		&cli.StringFlag{
			Name:  "resolver-shell",
			Value: command.Defaults.Resolver.Shell,
			Usage: "执行命令使用的 shell",
		},
		&cli.DurationFlag{
			Name:  "resolver-timeout",
			Value: command.Defaults.Resolver.Timeout,
			Usage: "单条命令超时时间",
		},
		&cli.StringFlag{
			Name:  "resolver-on-error",
			Value: command.Defaults.Resolver.OnError,
			Usage: "命令失败策略: abort | empty | skip",
		},
	},
}

func action(ctx context.Context, cmd *cli.Command) error {
	// 加载配置：默认值 → 配置文件 → 环境变量 → CLI flags
	cfg, err := config.Load(cmd, version.GetAppRawName())
	if err != nil {
		return err
	}

	resolver, err := cfg.NewResolver()
	if err != nil {
		return err
	}

	res, err := envfile.Generate(ctx, envfile.Options{
		TemplateFile: cfg.Generate.Template,
		OutputFile:   cfg.Generate.Output,
		MarkerFile:   cfg.Generate.Marker,
		Resolver:     resolver,
	})
	if err != nil {
		return err
	}

	slog.Info("Env file generated",
		"template", cfg.Generate.Template,
		"output", cfg.Generate.Output,
		"entries", len(res.Entries),
		"commands", res.Commands,
		"skipped", res.Skipped,
		"truncated", res.Truncated,
	)
	fmt.Printf("wrote %s (%d entries)\n", cfg.Generate.Output, len(res.Entries))

	return nil
}
