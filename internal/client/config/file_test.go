package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_parseFile(t *testing.T) {
	full := Config{
		APIBaseURL:        "https://portal.example.com",
		DatabasePath:      "/tmp/p.db",
		RequestTimeout:    20 * time.Second,
		DownloadDir:       "out",
		RequestsPerSecond: 2.5,
		RequestBurst:      3,
		LogFile:           "x.log",
		Verbose:           true,
	}

	jsonPath := writeFile(t, "cfg.json", `{
  "api_base_url": "https://portal.example.com",
  "database_path": "/tmp/p.db",
  "request_timeout": "20s",
  "download_dir": "out",
  "requests_per_second": 2.5,
  "request_burst": 3,
  "log_file": "x.log",
  "verbose": true
}`)

	yamlPath := writeFile(t, "cfg.yaml", `
api_base_url: https://portal.example.com
database_path: /tmp/p.db
request_timeout: 20s
download_dir: out
requests_per_second: 2.5
request_burst: 3
log_file: x.log
verbose: true
`)

	for _, tt := range []struct {
		name string
		args []string
	}{
		{"json via -c", []string{"-c", jsonPath}},
		{"yaml via -config", []string{"-config", yamlPath}},
		{"yaml via --config=", []string{"--config=" + yamlPath}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.LoadDefaults()
			require.NoError(t, parseFile(&cfg, tt.args))
			if diff := cmp.Diff(full, cfg); diff != "" {
				t.Fatalf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func Test_parseFile_PartialKeepsOtherFields(t *testing.T) {
	path := writeFile(t, "p.yml", "api_base_url: http://other:9000\n")

	var cfg Config
	cfg.LoadDefaults()
	require.NoError(t, parseFile(&cfg, []string{"-c", path}))

	assert.Equal(t, "http://other:9000", cfg.APIBaseURL)
	assert.Equal(t, "portal.db", cfg.DatabasePath)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func Test_parseFile_NoFlagNoChange(t *testing.T) {
	cfg := Config{APIBaseURL: "keep"}
	require.NoError(t, parseFile(&cfg, []string{"shell"}))
	assert.Equal(t, Config{APIBaseURL: "keep"}, cfg)
}

func Test_parseFile_Errors(t *testing.T) {
	var cfg Config

	err := parseFile(&cfg, []string{"-c", filepath.Join(t.TempDir(), "missing.json")})
	require.ErrorContains(t, err, "read config")

	bad := writeFile(t, "bad.json", `{ this is not valid json`)
	require.ErrorContains(t, parseFile(&cfg, []string{"-c", bad}), "parse config")

	badDur := writeFile(t, "dur.yaml", "request_timeout: soon\n")
	require.ErrorContains(t, parseFile(&cfg, []string{"-c", badDur}), "parse config")
}
