package httpclient

import (
	"bytes"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"

	"github.com/scan-io-git/credscan/internal/config"
)

func TestNewAppliesConfig(t *testing.T) {
	cfg := &config.Config{HTTPClient: config.HTTPClient{RetryCount: 7, Timeout: 3 * time.Second}}

	client := New(nil, cfg)
	assert.Equal(t, 7, client.RetryCount)
	assert.Equal(t, 3*time.Second, client.GetClient().Timeout)
}

func TestNewDefaults(t *testing.T) {
	client := New(nil, nil)
	assert.Equal(t, config.DefaultHTTPConfig().RetryCount, client.RetryCount)
	assert.Equal(t, config.DefaultHTTPConfig().Timeout, client.GetClient().Timeout)
}

func TestHclogAdapter(t *testing.T) {
	var buf bytes.Buffer
	l := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Debug, DisableTime: true})

	a := NewHclogAdapter(l)
	a.Warnf("retrying %s", "GET /repos")

	assert.Contains(t, buf.String(), "retrying GET /repos")
}
