package config

import (
	"testing"

	"github.com/lwmacct/260831-go-pkg-envgen/pkg/cfgm"
	"github.com/lwmacct/260831-go-pkg-envgen/pkg/envfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var helper = cfgm.ConfigTestHelper[Config]{
	ExamplePath: "config/config.example.yaml",
	ConfigPath:  "config/config.yaml",
}

func TestGenerateExample(t *testing.T) { helper.WriteExampleFile(t, DefaultConfig()) }
func TestConfigKeysValid(t *testing.T) { helper.ValidateKeys(t) }

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ".env.example", cfg.Generate.Template)
	assert.Equal(t, ".env", cfg.Generate.Output)
	assert.Equal(t, []string{"kubectl", "aws"}, cfg.Resolver.Prefixes)
	assert.Equal(t, "abort", cfg.Resolver.OnError)
}

func TestNewResolver(t *testing.T) {
	cfg := DefaultConfig()

	r, err := cfg.NewResolver()
	require.NoError(t, err)
	assert.Equal(t, envfile.OnErrorAbort, r.OnError)
	assert.Equal(t, cfg.Resolver.Timeout, r.Timeout)
	assert.Equal(t, cfg.Resolver.Prefixes, r.Prefixes)
}

func TestNewResolver_InvalidPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolver.OnError = "retry"

	_, err := cfg.NewResolver()
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ENVGEN_GENERATE_OUTPUT", "/tmp/out.env")
	t.Setenv("ENVGEN_RESOLVER_SHELL", "bash")
	t.Setenv("ENVGEN_ON_ERROR", "skip")

	cfg, err := Load(nil, "envgen-test")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/out.env", cfg.Generate.Output)
	assert.Equal(t, "bash", cfg.Resolver.Shell)
	assert.Equal(t, "skip", cfg.Resolver.OnError)
}
