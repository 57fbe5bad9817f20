// Package check 提供模板检查命令（不执行任何外部命令）。
package check

import (
	"context"
	"fmt"

	"github.com/lwmacct/251207-go-pkg-version/pkg/version"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/260831-go-pkg-envgen/internal/command"
	"github.com/lwmacct/260831-go-pkg-envgen/internal/config"
	"github.com/lwmacct/260831-go-pkg-envgen/pkg/envfile"
)

// Command 检查命令
var Command = &cli.Command{
	Name:   "check",
	Usage:  "解析模板并报告每个条目的求值方式, 不执行任何命令",
	Action: action,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "generate-template",
			Aliases: []string{"t"},
			Value:   command.Defaults.Generate.Template,
			Usage:   "模板文件路径",
		},
		&cli.StringSliceFlag{
			Name:  "resolver-prefixes",
			Value: command.Defaults.Resolver.Prefixes,
			Usage: "识别为命令的前缀 token",
		},
	},
}

func action(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd, version.GetAppRawName())
	if err != nil {
		return err
	}

	tpl, err := envfile.ParseFile(cfg.Generate.Template)
	if err != nil {
		return err
	}

	resolver, err := cfg.NewResolver()
	if err != nil {
		return err
	}

	for _, entry := range tpl.Entries {
		if prefix, ok := resolver.IsCommand(entry.Value); ok {
			fmt.Printf("%4d  command  %s (%s)\n", entry.Line, entry.Key, prefix)
		} else {
			fmt.Printf("%4d  literal  %s\n", entry.Line, entry.Key)
		}
	}
	for _, m := range tpl.Malformed {
		fmt.Printf("%4d  invalid  %s: %s\n", m.Line, m.Reason, m.Text)
	}

	if n := len(tpl.Malformed); n > 0 {
		return fmt.Errorf("template %s has %d malformed line(s)", cfg.Generate.Template, n)
	}

	return nil
}
