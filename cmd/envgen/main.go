package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/lwmacct/251207-go-pkg-version/pkg/version"
	"github.com/lwmacct/251219-go-pkg-logm/pkg/logm"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/260831-go-pkg-envgen/internal/command/check"
	"github.com/lwmacct/260831-go-pkg-envgen/internal/command/generate"
)

func main() {
	_ = logm.Init(logm.PresetAuto()...)

	app := &cli.Command{
		Name:  "envgen",
		Usage: "从 .env.example 模板生成 .env 文件, 支持 kubectl/aws 等命令求值",
		Commands: []*cli.Command{
			generate.Command,
			check.Command,
			version.Command,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("应用程序运行失败", "error", err)
		os.Exit(1)
	}
}
