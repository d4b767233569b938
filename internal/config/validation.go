package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ValidateConfig checks if the global configurations have valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateHTTPConfig(&cfg.HTTPClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	if err := ValidateGitHubConfig(&cfg.GitHub); err != nil {
		return fmt.Errorf("YAML global config: github directive is invalid: %w", err)
	}
	if err := ValidateSheetName(cfg.Report.Sheet); err != nil {
		return fmt.Errorf("YAML global config: report directive is invalid: %w", err)
	}
	return nil
}

// ValidateHTTPConfig checks if the HTTP configurations have valid values.
func ValidateHTTPConfig(httpConfig *HTTPClient) error {
	if httpConfig == nil {
		return fmt.Errorf("HTTP configuration is nil")
	}
	if httpConfig.RetryCount < 0 || httpConfig.RetryCount > 20 {
		return fmt.Errorf("retry_count must be between 0 and 20: %d", httpConfig.RetryCount)
	}

	durations := map[string]time.Duration{
		"RetryMaxWaitTime": httpConfig.RetryMaxWaitTime,
		"RetryWaitTime":    httpConfig.RetryWaitTime,
		"Timeout":          httpConfig.Timeout,
	}
	for name, duration := range durations {
		if err := validateDuration(duration, name, 100*time.Second); err != nil {
			return err
		}
	}

	return validateProxy(&httpConfig.Proxy)
}

// ValidateGitHubConfig checks that a configured API URL is absolute.
func ValidateGitHubConfig(gh *GitHub) error {
	if gh == nil || gh.APIURL == "" {
		return nil
	}
	u, err := url.Parse(gh.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url must use http or https: %q", gh.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api_url has no host: %q", gh.APIURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		gh.APIURL += "/"
	}
	return nil
}

// ValidateSheetName applies the spreadsheet limits on worksheet names.
// An empty name selects the default sheet.
func ValidateSheetName(name string) error {
	if name == "" {
		return nil
	}
	if len([]rune(name)) > 31 {
		return fmt.Errorf("sheet name %q is longer than 31 characters", name)
	}
	if strings.ContainsAny(name, `[]:*?/\`) {
		return fmt.Errorf("sheet name %q contains one of []:*?/\\", name)
	}
	return nil
}

// validateDuration checks that a time.Duration is valid and within a specified maximum duration.
func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %s: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%s duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}

// validateProxy checks if the given Proxy settings are valid.
func validateProxy(proxy *Proxy) error {
	if proxy == nil {
		return fmt.Errorf("proxy configuration is nil")
	}

	// If host or port is not set, skip further validation
	if proxy.Host == "" || proxy.Port == 0 {
		return nil
	}

	if err := validateHost(&proxy.Host); err != nil {
		return err
	}
	return validatePort(proxy.Port)
}

// validateHost ensures the proxy host includes a scheme; adds "http" if missing.
func validateHost(host *string) error {
	if host == nil {
		return fmt.Errorf("host string pointer is nil")
	}

	if !strings.Contains(*host, "://") {
		*host = "http://" + *host
	}
	*host = strings.TrimRight(*host, "/")

	if _, err := url.Parse(*host); err != nil {
		return fmt.Errorf("invalid host URL: %w", err)
	}
	return nil
}

// validatePort checks if the port part of the proxy configuration is valid.
func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}
