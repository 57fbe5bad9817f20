package envfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Options Generate 的参数。
type Options struct {
	TemplateFile string    // 模板文件路径（必填）
	OutputFile   string    // 输出文件路径（必填）
	MarkerFile   string    // 标记文件：存在则截断输出，不存在则追加；为空时总是截断
	Resolver     *Resolver // 条目解析器（必填）
}

func (o *Options) defaults() error {
	if o.TemplateFile == "" {
		return fmt.Errorf("TemplateFile is required")
	}
	if o.OutputFile == "" {
		return fmt.Errorf("OutputFile is required")
	}
	if o.Resolver == nil {
		return fmt.Errorf("Resolver is required")
	}
	return nil
}

// Result 一次生成的统计信息。
type Result struct {
	Entries   []Entry // 实际写入的条目（与模板同序）
	Commands  int     // 通过命令执行解析的条目数
	Skipped   int     // 因命令失败被跳过的条目数（on_error=skip）
	Truncated bool    // 输出文件是否被截断重写
}

// Generate 读取模板、逐条解析并一次性写出输出文件。
//
// 条目先在内存中全部累积，最后单次写入，避免失败时留下半写的输出。
// 无法解析的模板行记录告警后跳过，不影响后续条目。
func Generate(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.defaults(); err != nil {
		return nil, err
	}

	tpl, err := ParseFile(opts.TemplateFile)
	if err != nil {
		return nil, err
	}
	for _, m := range tpl.Malformed {
		slog.Warn("Skipping malformed template line",
			"file", opts.TemplateFile, "line", m.Line, "reason", m.Reason)
	}

	resolved, err := opts.Resolver.Resolve(ctx, tpl.Entries)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Entries:   resolved,
		Skipped:   len(tpl.Entries) - len(resolved),
		Truncated: shouldTruncate(opts),
	}
	for _, entry := range tpl.Entries {
		if _, ok := opts.Resolver.IsCommand(entry.Value); ok {
			res.Commands++
		}
	}

	if err := writeFile(opts.OutputFile, resolved, res.Truncated); err != nil {
		return nil, fmt.Errorf("write env file: %w", err)
	}

	return res, nil
}

// shouldTruncate 标记文件存在（或未配置标记文件）时截断输出，否则追加。
func shouldTruncate(opts Options) bool {
	if opts.MarkerFile == "" {
		return true
	}
	_, err := os.Stat(opts.MarkerFile)
	return err == nil
}

// writeFile 单次写入全部条目。
func writeFile(path string, entries []Entry, truncate bool) error {
	var b strings.Builder
	for _, entry := range entries {
		b.WriteString(entry.Key)
		b.WriteByte('=')
		b.WriteString(entry.Value)
		b.WriteByte('\n')
	}

	flags := os.O_WRONLY | os.O_CREATE
	if truncate {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}

	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
