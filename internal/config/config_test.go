package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subburn/internal/config"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("SUBBURN_CACHE_DIR", "")
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaultsExpandPaths(t *testing.T) {
	home := isolateEnv(t)

	cfg, resolved, exists, err := config.Load("")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, filepath.Join(home, ".config", "subburn", "config.toml"), resolved)

	assert.Equal(t, filepath.Join(home, ".cache", "subburn"), cfg.Paths.CacheDir)
	assert.Equal(t, filepath.Join(home, ".local", "share", "subburn", "logs"), cfg.Paths.LogDir)
	assert.Equal(t, "gpt-4o-mini", cfg.Translation.Model)
	assert.InDelta(t, 0.3, cfg.Translation.Temperature, 1e-9)
	assert.Equal(t, "dall-e-3", cfg.Images.Model)
	assert.Equal(t, 7, cfg.Images.RequestsPerMinute)
	assert.Equal(t, 4, cfg.Images.Workers)
	assert.Equal(t, 3, cfg.Images.MaxRetries)
	assert.Equal(t, 28, cfg.Subtitles.OriginalFontSize)
	assert.Equal(t, "00FFFF", cfg.Subtitles.PinyinColor)
	assert.Equal(t, 1024, cfg.Video.Width)
	assert.False(t, cfg.HasAPIKey())
}

func TestLoadUsesEnvFallbacks(t *testing.T) {
	isolateEnv(t)
	cacheDir := t.TempDir()
	t.Setenv("OPENAI_API_KEY", " sk-from-env ")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:9999/v1/")

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[paths]\ncache_dir = \"\"\n"), 0o644))
	t.Setenv("SUBBURN_CACHE_DIR", cacheDir)

	cfg, _, exists, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "sk-from-env", cfg.OpenAI.APIKey)
	assert.Equal(t, "http://localhost:9999/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, cacheDir, cfg.Paths.CacheDir)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	isolateEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[openai]
api_key = "sk-file"

[subtitles]
pinyin_color = "#ff00ff"

[video]
width = 1280
height = 720
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	cfg, _, _, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "sk-file", cfg.OpenAI.APIKey)
	assert.Equal(t, "FF00FF", cfg.Subtitles.PinyinColor)
	assert.Equal(t, 1280, cfg.Video.Width)
	assert.Equal(t, 720, cfg.Video.Height)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"colour":      func(c *config.Config) { c.Subtitles.OriginalColor = "white" },
		"temperature": func(c *config.Config) { c.Translation.Temperature = 3 },
		"language":    func(c *config.Config) { c.Translation.TargetLanguage = "not a language" },
		"size":        func(c *config.Config) { c.Images.Size = "huge" },
		"workers":     func(c *config.Config) { c.Images.Workers = 0 },
		"odd width":   func(c *config.Config) { c.Video.Width = 1025 },
		"crf":         func(c *config.Config) { c.Video.CRF = 60 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSampleConfigParses(t *testing.T) {
	var cfg config.Config
	require.NoError(t, toml.Unmarshal([]byte(config.SampleConfig()), &cfg))
	assert.Equal(t, "gpt-4o-mini", cfg.Translation.Model)
	assert.Equal(t, 4, cfg.Images.Workers)
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, config.CreateSample(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.SampleConfig(), string(data))
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("SUBBURN_TEST_A=from-file\nSUBBURN_TEST_B=from-file\n"), 0o644))
	t.Setenv("SUBBURN_TEST_A", "preset")
	t.Setenv("SUBBURN_TEST_B", "")
	require.NoError(t, os.Unsetenv("SUBBURN_TEST_B"))

	require.NoError(t, config.LoadDotEnv(envPath, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "preset", os.Getenv("SUBBURN_TEST_A"))
	assert.Equal(t, "from-file", os.Getenv("SUBBURN_TEST_B"))
}

func TestEncodeMasksAPIKey(t *testing.T) {
	cfg := config.Default()
	cfg.OpenAI.APIKey = "sk-abcdefghijklmnop"
	data, err := cfg.Encode()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "abcdefghijklmnop")
	assert.Contains(t, string(data), "sk-...mnop")
}
