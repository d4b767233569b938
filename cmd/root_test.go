package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigLoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("report:\n  sheet: Creds\n"), 0644))

	cfgFile = path
	defer func() { cfgFile = "" }()

	require.NoError(t, initConfig(rootCmd, nil))
	assert.Equal(t, "Creds", AppConfig.Report.Sheet)
	assert.NotNil(t, Logger)
}

func TestInitConfigRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("http_client:\n  retry_count: 99\n"), 0644))

	cfgFile = path
	defer func() { cfgFile = "" }()

	assert.Error(t, initConfig(rootCmd, nil))
}
