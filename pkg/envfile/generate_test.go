package envfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lwmacct/260831-go-pkg-envgen/pkg/envfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ".env.example")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir, "# generated config\nAPP_NAME=myapp\n\nGREETING=echo hello world\nBROKEN LINE\nDB_HOST=localhost\n")
	output := filepath.Join(dir, ".env")

	res, err := envfile.Generate(context.Background(), envfile.Options{
		TemplateFile: template,
		OutputFile:   output,
		Resolver:     newTestResolver(envfile.OnErrorAbort),
	})
	require.NoError(t, err)

	assert.Len(t, res.Entries, 3)
	assert.Equal(t, 1, res.Commands)
	assert.Equal(t, 0, res.Skipped)
	assert.True(t, res.Truncated)

	want := "APP_NAME=myapp\nGREETING=hello world\nDB_HOST=localhost\n"
	assert.Equal(t, want, readOutput(t, output))
}

func TestGenerate_MarkerPresentTruncates(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir, "A=1\nB=2\n")
	output := filepath.Join(dir, ".env")
	marker := filepath.Join(dir, "generated.lock")
	require.NoError(t, os.WriteFile(marker, nil, 0o600))

	opts := envfile.Options{
		TemplateFile: template,
		OutputFile:   output,
		MarkerFile:   marker,
		Resolver:     newTestResolver(envfile.OnErrorAbort),
	}

	// 运行两次：标记文件存在时应截断重写，而不是追加
	_, err := envfile.Generate(context.Background(), opts)
	require.NoError(t, err)
	_, err = envfile.Generate(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, "A=1\nB=2\n", readOutput(t, output))
}

func TestGenerate_MarkerAbsentAppends(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir, "A=1\n")
	output := filepath.Join(dir, ".env")

	opts := envfile.Options{
		TemplateFile: template,
		OutputFile:   output,
		MarkerFile:   filepath.Join(dir, "missing.lock"),
		Resolver:     newTestResolver(envfile.OnErrorAbort),
	}

	res, err := envfile.Generate(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, res.Truncated)
	_, err = envfile.Generate(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, "A=1\nA=1\n", readOutput(t, output))
}

func TestGenerate_NoMarkerAlwaysTruncates(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir, "A=1\n")
	output := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(output, []byte("STALE=old\n"), 0o600))

	_, err := envfile.Generate(context.Background(), envfile.Options{
		TemplateFile: template,
		OutputFile:   output,
		Resolver:     newTestResolver(envfile.OnErrorAbort),
	})
	require.NoError(t, err)

	assert.Equal(t, "A=1\n", readOutput(t, output))
}

func TestGenerate_AbortLeavesOutputUntouched(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir, "A=1\nBAD=false\n")
	output := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(output, []byte("PREVIOUS=kept\n"), 0o600))

	_, err := envfile.Generate(context.Background(), envfile.Options{
		TemplateFile: template,
		OutputFile:   output,
		Resolver:     newTestResolver(envfile.OnErrorAbort),
	})
	require.Error(t, err)

	// 失败在写入之前发生，旧输出保持原样
	assert.Equal(t, "PREVIOUS=kept\n", readOutput(t, output))
}

func TestGenerate_SkippedCounted(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir, "A=1\nBAD=false\nB=2\n")
	output := filepath.Join(dir, ".env")

	res, err := envfile.Generate(context.Background(), envfile.Options{
		TemplateFile: template,
		OutputFile:   output,
		Resolver:     newTestResolver(envfile.OnErrorSkip),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, "A=1\nB=2\n", readOutput(t, output))
}

func TestGenerate_MissingTemplate(t *testing.T) {
	dir := t.TempDir()

	_, err := envfile.Generate(context.Background(), envfile.Options{
		TemplateFile: filepath.Join(dir, "absent.env"),
		OutputFile:   filepath.Join(dir, ".env"),
		Resolver:     newTestResolver(envfile.OnErrorAbort),
	})
	require.Error(t, err)
}

func TestGenerate_OptionValidation(t *testing.T) {
	resolver := &envfile.Resolver{Shell: "sh", Timeout: time.Second}

	tests := []struct {
		name string
		opts envfile.Options
	}{
		{name: "missing template", opts: envfile.Options{OutputFile: "x", Resolver: resolver}},
		{name: "missing output", opts: envfile.Options{TemplateFile: "x", Resolver: resolver}},
		{name: "missing resolver", opts: envfile.Options{TemplateFile: "x", OutputFile: "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := envfile.Generate(context.Background(), tt.opts)
			assert.Error(t, err)
		})
	}
}
