package config

import (
	"testing"

	"github.com/born-ml/cifar/internal/format"
	"github.com/born-ml/cifar/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "https://www.cs.toronto.edu/~kriz/cifar-10-binary.tar.gz", cfg.SourceURI)
	assert.Equal(t, "c32a1d4ab5d03f1284b67883e8d87530", cfg.Checksum)
	assert.Equal(t, format.ChannelsFirst, cfg.ImageLayout())
	assert.Equal(t, stats.None, cfg.ScaleMode())
	assert.False(t, cfg.OneHot)
	assert.Equal(t, 10000, cfg.RecordsPerFile)
	assert.Equal(t, 1, cfg.Parallel().Workers)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("CIFAR_DATA_DIR", "/tmp/cifar")
	t.Setenv("CIFAR_LAYOUT", "last")
	t.Setenv("CIFAR_ONE_HOT", "true")
	t.Setenv("CIFAR_SCALE", "standardize")
	t.Setenv("CIFAR_CHECKSUM", "")
	t.Setenv("CIFAR_WORKERS", "4")
	t.Setenv("CIFAR_S3_ENDPOINT", "http://minio:9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/cifar", cfg.DataDir)
	assert.Equal(t, format.ChannelsLast, cfg.ImageLayout())
	assert.True(t, cfg.OneHot)
	assert.Equal(t, stats.Standardize, cfg.ScaleMode())
	assert.Empty(t, cfg.Checksum)
	assert.Equal(t, 4, cfg.Parallel().Workers)
	assert.Equal(t, "http://minio:9000", cfg.ProviderOptions().S3Endpoint)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		layout    string
		override  string
		want      format.Layout
		wantError error
	}{
		{"valid environment", "last", "", format.ChannelsLast, nil},
		{"invalid environment", "sideways", "", 0, format.ErrUnknownLayout},
		{"flag replaces invalid environment", "sideways", "last", format.ChannelsLast, nil},
		{"invalid flag", "first", "sideways", 0, format.ErrUnknownLayout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CIFAR_LAYOUT", tt.layout)

			cfg, err := Load()
			require.NoError(t, err, "loading alone never validates")
			assert.Equal(t, tt.layout, cfg.Layout)

			cfg, err = Resolve(Overrides{Layout: tt.override})
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.ImageLayout())
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	oneHot := true
	empty := ""
	records := 0
	cfg.ApplyOverrides(Overrides{
		DataDir:        "out",
		Checksum:       &empty,
		OneHot:         &oneHot,
		RecordsPerFile: &records,
		Workers:        8,
	})

	assert.Equal(t, "out", cfg.DataDir)
	assert.Empty(t, cfg.Checksum)
	assert.True(t, cfg.OneHot)
	assert.Equal(t, 0, cfg.LoadOptions().RecordsPerFile)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "first", cfg.Layout, "unset override must not change the value")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{DataDir: "d", SourceURI: "file:///a.tgz", Layout: "first", Scale: "none", Workers: 1}
	}
	require.NoError(t, base().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty dir", func(c *Config) { c.DataDir = "" }},
		{"bad uri", func(c *Config) { c.SourceURI = "ftp://x" }},
		{"bad layout", func(c *Config) { c.Layout = "x" }},
		{"bad scale", func(c *Config) { c.Scale = "x" }},
		{"negative records", func(c *Config) { c.RecordsPerFile = -1 }},
		{"no workers", func(c *Config) { c.Workers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}
