// Package config holds the global credscan configuration: the optional YAML
// file and the credentials taken from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// DefaultConfigFile is read when no path is given and the file exists.
const DefaultConfigFile = "config.yml"

// Config is the YAML configuration of credscan.
type Config struct {
	Logger     Logger     `yaml:"logger"`
	HTTPClient HTTPClient `yaml:"http_client"`
	GitHub     GitHub     `yaml:"github"`
	Report     Report     `yaml:"report"`
}

// Logger configures the hclog output.
type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

// HTTPClient configures the resty client that carries GitHub API traffic.
type HTTPClient struct {
	Debug            *bool           `yaml:"debug"`
	RetryCount       int             `yaml:"retry_count"`
	RetryWaitTime    time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration   `yaml:"retry_max_wait_time"`
	Timeout          time.Duration   `yaml:"timeout"`
	TLSClientConfig  TLSClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

// TLSClientConfig holds TLS options.
type TLSClientConfig struct {
	Verify *bool `yaml:"verify"`
}

// Proxy is an optional HTTP proxy.
type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GitHub points the provider at github.com or a GitHub Enterprise instance.
type GitHub struct {
	// APIURL is the REST API base, e.g. https://ghe.example.com/api/v3/.
	APIURL string `yaml:"api_url"`
	// Host is the web host that submodule URLs must point at. Derived from
	// APIURL when empty.
	Host string `yaml:"host"`
}

// Report controls where the findings are written.
type Report struct {
	Path      string `yaml:"path"`
	Sheet     string `yaml:"sheet"`
	SARIFPath string `yaml:"sarif_path"`
}

// ValidateConfigPath checks that path names a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes the YAML file at configPath into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}
	return nil
}

// LoadConfig reads the configuration at path. A missing default config file
// is not an error: the built-in defaults apply.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		path = DefaultConfigFile
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return cfg, nil
		}
	}

	if err := LoadYAML(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", path, err)
	}
	return cfg, nil
}
