package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file and no env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, SourceDir, cfg.Input.Source)
				assert.Equal(t, DefaultDatasetDir, cfg.Input.Dir)
				assert.Equal(t, ProfileStandard, cfg.Pipeline.Profile)
				assert.Equal(t, DefaultReportPath, cfg.Output.ReportPath)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.True(t, cfg.Server.RateLimit.Enabled)
			},
		},
		{
			name: "file overrides defaults",
			file: `
input:
  dir: data/raw
pipeline:
  profile: legacy
output:
  cleaned_dir: out/cleaned
server:
  port: 9090
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "data/raw", cfg.Input.Dir)
				assert.Equal(t, ProfileLegacy, cfg.Pipeline.Profile)
				assert.Equal(t, "out/cleaned", cfg.Output.CleanedDir)
				assert.Equal(t, 9090, cfg.Server.Port)
				// untouched keys keep their defaults
				assert.Equal(t, DefaultReportPath, cfg.Output.ReportPath)
			},
		},
		{
			name: "env overrides file",
			file: `
pipeline:
  profile: legacy
`,
			env: map[string]string{
				"RETAILPULSE_PIPELINE_PROFILE":     "standard",
				"RETAILPULSE_PIPELINE_STATUS_MODE": "keyword",
				"RETAILPULSE_SERVER_READ_TIMEOUT":  "5s",
				"RETAILPULSE_LOGGING_LEVEL":        "debug",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ProfileStandard, cfg.Pipeline.Profile)
				assert.Equal(t, StatusModeKeyword, cfg.Pipeline.StatusMode)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name:    "unknown profile rejected",
			env:     map[string]string{"RETAILPULSE_PIPELINE_PROFILE": "turbo"},
			wantErr: true,
		},
		{
			name:    "workbook source requires a workbook path",
			env:     map[string]string{"RETAILPULSE_INPUT_SOURCE": "workbook"},
			wantErr: true,
		},
		{
			name:    "object store source requires bucket settings",
			env:     map[string]string{"RETAILPULSE_INPUT_SOURCE": "objectstore"},
			wantErr: true,
		},
		{
			name: "object store source with settings",
			env: map[string]string{
				"RETAILPULSE_INPUT_SOURCE":            "objectstore",
				"RETAILPULSE_OBJECT_STORE_ENDPOINT":   "localhost:9000",
				"RETAILPULSE_OBJECT_STORE_ACCESS_KEY": "minio",
				"RETAILPULSE_OBJECT_STORE_SECRET_KEY": "minio123",
				"RETAILPULSE_OBJECT_STORE_BUCKET":     "datasets",
				"RETAILPULSE_OBJECT_STORE_PREFIX":     "raw/",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "datasets", cfg.ObjectStore.Bucket)
				assert.Equal(t, "raw/", cfg.ObjectStore.Prefix)
				assert.False(t, cfg.ObjectStore.UseSSL)
			},
		},
		{
			name:    "malformed yaml",
			file:    "pipeline: [unterminated",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			// Keep the search path away from any config.yaml in the package dir
			t.Chdir(t.TempDir())

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEffectiveStatusMode(t *testing.T) {
	tests := []struct {
		profile    string
		statusMode string
		want       string
	}{
		{ProfileStandard, "", StatusModeEnum},
		{ProfileLegacy, "", StatusModeKeyword},
		{ProfileStandard, StatusModeKeyword, StatusModeKeyword},
		{ProfileLegacy, StatusModeEnum, StatusModeEnum},
	}

	for _, tt := range tests {
		t.Run(tt.profile+"/"+tt.statusMode, func(t *testing.T) {
			cfg := Default()
			cfg.Pipeline.Profile = tt.profile
			cfg.Pipeline.StatusMode = tt.statusMode
			assert.Equal(t, tt.want, cfg.EffectiveStatusMode())
		})
	}
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
