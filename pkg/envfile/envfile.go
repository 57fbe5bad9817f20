package envfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry 一条模板条目（KEY=VALUE_EXPRESSION）。
type Entry struct {
	Key   string // 变量名
	Value string // 字面值或命令表达式
	Line  int    // 模板中的行号（从 1 开始）
}

// Malformed 无法解析的模板行。
type Malformed struct {
	Line   int    // 行号
	Text   string // 原始内容
	Reason string // 无法解析的原因
}

// Template 解析后的模板，条目按输入顺序保存。
type Template struct {
	Entries   []Entry
	Malformed []Malformed
}

// Parse 逐行解析模板内容。
//
// 空行与 # 注释行被跳过；缺少 = 或键为空的行记录到 Malformed 中，
// 不中断解析。值表达式在第一个 = 处切分，之后的 = 属于值本身。
func Parse(r io.Reader) (*Template, error) {
	tpl := &Template{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			tpl.Malformed = append(tpl.Malformed, Malformed{Line: lineNo, Text: line, Reason: "missing '='"})
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			tpl.Malformed = append(tpl.Malformed, Malformed{Line: lineNo, Text: line, Reason: "empty key"})
			continue
		}

		tpl.Entries = append(tpl.Entries, Entry{
			Key:   key,
			Value: strings.TrimSpace(value),
			Line:  lineNo,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return tpl, nil
}

// ParseFile 读取并解析模板文件。
func ParseFile(path string) (*Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer func() { _ = f.Close() }()

	tpl, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return tpl, nil
}
