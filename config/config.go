// Package config resolves the single backend location and request settings
// shared by every search command.
package config

import (
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"

	"github.com/securesentinels/vuln-search/client"
	"github.com/securesentinels/vuln-search/utils"
)

const (
	DefaultPageSize = 5

	envBaseURL  = "VULN_SEARCH_BASE_URL"
	envTimeout  = "VULN_SEARCH_TIMEOUT"
	envPageSize = "VULN_SEARCH_PAGE_SIZE"
	envDebug    = "VULN_SEARCH_DEBUG"
)

type Config struct {
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	PageSize int           `yaml:"page_size"`
	Debug    bool          `yaml:"debug"`
}

func Default() Config {
	return Config{
		BaseURL:  client.DefaultBaseURL,
		Timeout:  client.DefaultTimeout,
		PageSize: DefaultPageSize,
	}
}

// Load reads the optional YAML file at path and applies environment
// overrides on top of it. An empty path skips the file.
func Load(fs afero.Fs, path string) (Config, error) {
	conf := Default()
	if path != "" {
		b, err := afero.ReadFile(fs, path)
		if err != nil {
			return Config{}, xerrors.Errorf("unable to read config file %s: %w", path, err)
		}
		if err = yaml.UnmarshalStrict(b, &conf); err != nil {
			return Config{}, xerrors.Errorf("unable to parse config file %s: %w", path, err)
		}
	}

	if err := conf.applyEnv(); err != nil {
		return Config{}, err
	}
	return conf, nil
}

func (c *Config) applyEnv() error {
	c.BaseURL = utils.LookupEnv(envBaseURL, c.BaseURL)

	if v, ok := os.LookupEnv(envTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return xerrors.Errorf("invalid %s: %w", envTimeout, err)
		}
		c.Timeout = d
	}
	if v, ok := os.LookupEnv(envPageSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return xerrors.Errorf("invalid %s: %w", envPageSize, err)
		}
		c.PageSize = n
	}
	if v, ok := os.LookupEnv(envDebug); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return xerrors.Errorf("invalid %s: %w", envDebug, err)
		}
		c.Debug = b
	}
	return nil
}

func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return xerrors.Errorf("invalid base URL %q: %w", c.BaseURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return xerrors.Errorf("base URL must be absolute: %q", c.BaseURL)
	}
	if c.Timeout < 0 {
		return xerrors.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	if c.PageSize <= 0 {
		return xerrors.Errorf("page size must be positive: %d", c.PageSize)
	}
	return nil
}

// NewClient builds a backend client from a validated configuration.
func (c Config) NewClient() (*client.Client, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, xerrors.Errorf("invalid base URL: %w", err)
	}
	return client.New(client.WithBaseURL(u), client.WithTimeout(c.Timeout)), nil
}
