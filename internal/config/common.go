package config

import (
	"crypto/tls"
	"fmt"
	"time"
)

// BaseHTTPConfig holds common HTTP client configuration settings.
type BaseHTTPConfig struct {
	RetryCount       int           // Number of retries for failed requests
	RetryWaitTime    time.Duration // Wait time between retries
	RetryMaxWaitTime time.Duration // Maximum wait time for retries
	Timeout          time.Duration // Timeout for requests
	TLSClientConfig  *tls.Config   // TLS configuration
	Proxy            string        // Proxy address
}

// RestyHTTPClientConfig holds additional configuration settings for the Resty HTTP client.
type RestyHTTPClientConfig struct {
	BaseHTTPConfig
	Debug bool // Flag to enable Resty debug mode
}

// DefaultHTTPConfig returns a base configuration for HTTP clients with default values.
func DefaultHTTPConfig() BaseHTTPConfig {
	return BaseHTTPConfig{
		RetryCount:       3,
		RetryWaitTime:    1 * time.Second,
		RetryMaxWaitTime: 5 * time.Second,
		Timeout:          30 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: false,
		},
		Proxy: "",
	}
}

// DefaultRestyConfig returns a default configuration for the Resty HTTP client, extending the base HTTP configuration.
func DefaultRestyConfig() RestyHTTPClientConfig {
	return RestyHTTPClientConfig{
		BaseHTTPConfig: DefaultHTTPConfig(),
		Debug:          false,
	}
}

// ResolveHTTPConfig merges the YAML http_client section over the defaults.
func ResolveHTTPConfig(httpConfig *HTTPClient) RestyHTTPClientConfig {
	cfg := DefaultRestyConfig()
	if httpConfig == nil {
		return cfg
	}

	cfg.Debug = BoolValue(httpConfig.Debug, cfg.Debug)
	cfg.RetryCount = SetThen(httpConfig.RetryCount, cfg.RetryCount)
	cfg.RetryWaitTime = SetThen(httpConfig.RetryWaitTime, cfg.RetryWaitTime)
	cfg.RetryMaxWaitTime = SetThen(httpConfig.RetryMaxWaitTime, cfg.RetryMaxWaitTime)
	cfg.Timeout = SetThen(httpConfig.Timeout, cfg.Timeout)
	cfg.TLSClientConfig.InsecureSkipVerify = !BoolValue(httpConfig.TLSClientConfig.Verify, true)
	if httpConfig.Proxy.Host != "" && httpConfig.Proxy.Port != 0 {
		cfg.Proxy = fmt.Sprintf("%s:%d", httpConfig.Proxy.Host, httpConfig.Proxy.Port)
	}
	return cfg
}

// BoolValue dereferences an optional YAML boolean.
func BoolValue(v *bool, defaultValue bool) bool {
	if v == nil {
		return defaultValue
	}
	return *v
}

// SetThen returns value unless it is the zero value, otherwise defaultValue.
func SetThen[T comparable](value T, defaultValue T) T {
	var zero T
	if value == zero {
		return defaultValue
	}
	return value
}
