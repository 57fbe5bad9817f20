package envfile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ErrorPolicy 命令执行失败时的处理策略。
type ErrorPolicy string

const (
	OnErrorAbort ErrorPolicy = "abort" // 中止整次生成
	OnErrorEmpty ErrorPolicy = "empty" // 写入空值并告警
	OnErrorSkip  ErrorPolicy = "skip"  // 跳过该条目并告警
)

// ParseErrorPolicy 校验并返回失败策略。
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch p := ErrorPolicy(s); p {
	case OnErrorAbort, OnErrorEmpty, OnErrorSkip:
		return p, nil
	default:
		return "", fmt.Errorf("unknown on_error policy: %q (expect abort, empty or skip)", s)
	}
}

// Resolver 将模板条目解析为最终键值。
//
// 值表达式的第一个空白分隔 token 命中 Prefixes 时，整个表达式交由
// Shell 执行，捕获 stdout（去除首尾空白）作为解析结果；否则原样透传。
type Resolver struct {
	Prefixes []string      // 识别为命令的前缀 token
	Shell    string        // 执行命令的 shell
	Timeout  time.Duration // 单条命令超时，0 表示不限制
	OnError  ErrorPolicy   // 命令失败策略
}

// IsCommand 判断表达式是否会被当作命令执行，返回命中的前缀。
func (r *Resolver) IsCommand(expr string) (string, bool) {
	token := expr
	if i := strings.IndexAny(expr, " \t"); i >= 0 {
		token = expr[:i]
	}
	for _, p := range r.Prefixes {
		if token == p {
			return p, true
		}
	}

	return "", false
}

// Resolve 顺序解析全部条目，返回与输入同序的已解析条目。
//
// 命令逐条同步执行，不并发。失败处理由 OnError 决定：
// abort 返回错误，empty 写入空值，skip 丢弃该条目。
func (r *Resolver) Resolve(ctx context.Context, entries []Entry) ([]Entry, error) {
	resolved := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if _, ok := r.IsCommand(entry.Value); !ok {
			resolved = append(resolved, entry)
			continue
		}

		out, err := r.run(ctx, entry.Value)
		if err != nil {
			switch r.OnError {
			case OnErrorEmpty:
				slog.Warn("Command failed, writing empty value",
					"key", entry.Key, "line", entry.Line, "error", err)
				entry.Value = ""
				resolved = append(resolved, entry)
			case OnErrorSkip:
				slog.Warn("Command failed, skipping entry",
					"key", entry.Key, "line", entry.Line, "error", err)
			default:
				return nil, fmt.Errorf("resolve %s (line %d): %w", entry.Key, entry.Line, err)
			}
			continue
		}

		entry.Value = out
		resolved = append(resolved, entry)
	}

	return resolved, nil
}

// run 通过 shell 执行表达式并捕获 stdout。
func (r *Resolver) run(ctx context.Context, expr string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.Shell, "-c", expr)
	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("command timed out after %s: %w", r.Timeout, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}

		return "", err
	}

	return strings.TrimSpace(string(out)), nil
}
