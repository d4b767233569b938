package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names read by credscan.
const (
	EnvToken    = "GITHUB_TOKEN"
	EnvRepo     = "GITHUB_REPO"
	EnvLogLevel = "CREDSCAN_LOG_LEVEL"
	EnvConfig   = "CREDSCAN_CONFIG"
)

// LookupFunc fetches environment variables and defaults to os.Getenv.
type LookupFunc func(string) string

// Credentials are the two mandatory scan inputs.
type Credentials struct {
	Token string
	Repo  string
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given) without overriding variables that are already set. A missing file is
// not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// CredentialsFromEnv reads the token and repository identifier.
func CredentialsFromEnv(lookup LookupFunc) Credentials {
	if lookup == nil {
		lookup = os.Getenv
	}
	return Credentials{
		Token: strings.TrimSpace(lookup(EnvToken)),
		Repo:  strings.TrimSpace(lookup(EnvRepo)),
	}
}
