package config_test

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securesentinels/vuln-search/config"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		want    config.Config
		wantErr string
	}{
		{
			name: "defaults",
			want: config.Config{
				BaseURL:  "http://localhost:5000",
				Timeout:  30 * time.Second,
				PageSize: 5,
			},
		},
		{
			name: "yaml file",
			file: "base_url: https://securesentinels.example.com\ntimeout: 10s\npage_size: 10\ndebug: true\n",
			want: config.Config{
				BaseURL:  "https://securesentinels.example.com",
				Timeout:  10 * time.Second,
				PageSize: 10,
				Debug:    true,
			},
		},
		{
			name: "environment wins over file",
			file: "base_url: https://file.example.com\n",
			env: map[string]string{
				"VULN_SEARCH_BASE_URL":  "https://env.example.com",
				"VULN_SEARCH_TIMEOUT":   "0s",
				"VULN_SEARCH_PAGE_SIZE": "20",
			},
			want: config.Config{
				BaseURL:  "https://env.example.com",
				Timeout:  0,
				PageSize: 20,
			},
		},
		{
			name:    "sad path, unknown key",
			file:    "base_uri: https://typo.example.com\n",
			wantErr: "unable to parse config file",
		},
		{
			name:    "sad path, bad env value",
			env:     map[string]string{"VULN_SEARCH_PAGE_SIZE": "five"},
			wantErr: "invalid VULN_SEARCH_PAGE_SIZE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			fs := afero.NewMemMapFs()
			var path string
			if tt.file != "" {
				path = "/etc/vuln-search.yaml"
				require.NoError(t, afero.WriteFile(fs, path, []byte(tt.file), 0600))
			}

			got, err := config.Load(fs, path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(afero.NewMemMapFs(), "/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to read config file")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*config.Config)
		wantErr string
	}{
		{name: "default is valid", modify: func(*config.Config) {}},
		{name: "relative url", modify: func(c *config.Config) { c.BaseURL = "localhost:5000/api" }, wantErr: "must be absolute"},
		{name: "negative timeout", modify: func(c *config.Config) { c.Timeout = -time.Second }, wantErr: "timeout"},
		{name: "zero page size", modify: func(c *config.Config) { c.PageSize = 0 }, wantErr: "page size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := config.Default()
			tt.modify(&c)
			err := c.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)

			cl, err := c.NewClient()
			require.NoError(t, err)
			assert.Equal(t, c.BaseURL, cl.BaseURL())
		})
	}
}
