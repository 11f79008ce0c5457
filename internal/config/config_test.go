package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "datapulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sample.csv", cfg.Input.Path)
	assert.Equal(t, "cleaned_output.csv", cfg.Output.CleanedCSV)
	assert.Equal(t, "top_products.png", cfg.Output.ChartPNG)
	assert.Equal(t, "report.pdf", cfg.Output.ReportPDF)
	assert.Equal(t, 10, cfg.Output.TopN)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.Empty(t, cfg.AI.APIKey)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, filepath.IsAbs(cfg.Output.Dir))
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATAPULSE_INPUT_PATH", "env.csv")
	t.Setenv("DATAPULSE_AI_API_KEY", "secret")
	t.Setenv("DATAPULSE_OUTPUT_TOP_N", "5")
	t.Setenv("DATAPULSE_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env.csv", cfg.Input.Path)
	assert.Equal(t, "secret", cfg.AI.APIKey)
	assert.Equal(t, 5, cfg.Output.TopN)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
input:
  path: file.csv
output:
  top_n: 25
logging:
  level: warn
ai:
  model: gemini-1.5-pro
  timeout: 10s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file.csv", cfg.Input.Path)
	assert.Equal(t, 25, cfg.Output.TopN)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "gemini-1.5-pro", cfg.AI.Model)
	assert.Equal(t, 10*time.Second, cfg.AI.Timeout)
	// untouched fields keep their defaults
	assert.Equal(t, "cleaned_output.csv", cfg.Output.CleanedCSV)
}

func TestLoadEnvBeatsFile(t *testing.T) {
	t.Setenv("DATAPULSE_INPUT_PATH", "env.csv")
	t.Setenv("DATAPULSE_OUTPUT_TOP_N", "3")

	path := writeConfigFile(t, `
input:
  path: file.csv
output:
  top_n: 25
logging:
  level: error
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env.csv", cfg.Input.Path)
	assert.Equal(t, 3, cfg.Output.TopN)
	// no env var for the level, so the file wins over the default
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadMissingFileFallsBackToEnv(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "sample.csv", cfg.Input.Path)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "bad log level", key: "DATAPULSE_LOGGING_LEVEL", val: "verbose"},
		{name: "bad log output", key: "DATAPULSE_LOGGING_OUTPUT", val: "syslog"},
		{name: "top_n too large", key: "DATAPULSE_OUTPUT_TOP_N", val: "1000"},
		{name: "port out of range", key: "DATAPULSE_SERVER_PORT", val: "99999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "input: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestArtifactPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATAPULSE_OUTPUT_DIR", dir)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "cleaned_output.csv"), cfg.CleanedCSVPath())
	assert.Equal(t, filepath.Join(dir, "top_products.png"), cfg.ChartPath())
	assert.Equal(t, filepath.Join(dir, "report.pdf"), cfg.PDFPath())
}

func TestArtifactPathAbsoluteOverride(t *testing.T) {
	t.Setenv("DATAPULSE_OUTPUT_REPORT_PDF", "/tmp/elsewhere/report.pdf")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/elsewhere/report.pdf", cfg.PDFPath())
}

func TestEnsureOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	t.Setenv("DATAPULSE_OUTPUT_DIR", dir)

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.EnsureOutputDir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
