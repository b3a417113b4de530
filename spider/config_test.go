package spider

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
format: json
network:
site: https://books.example.com
timeout: 1500
proxy:
  - http://127.0.0.1:8888
jobs:
  - name: categories
    operation: attributes
    url: "{{ site }}"
    extract:
      xpath: //a[@class='cat']
      attribute: href
      into: categories
  - name: books
    operation: items
    keys:
      - name: category
        key: categories
    url: "{{ site }}{{ category }}"
    extract:
      into: books
      items:
        title: //h1
  - operation: output
    from: books
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"format", "network", "site", "timeout", "proxy", "jobs"}, cfg.Context.Keys())
	assert.True(t, cfg.Offline())
	assert.False(t, cfg.Debug())
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout())
	assert.Equal(t, []string{"http://127.0.0.1:8888"}, cfg.Proxies())

	require.Len(t, cfg.Jobs, 3)
	assert.Equal(t, "categories", cfg.Jobs[0].Name())
	assert.Equal(t, OpAttributes, cfg.Jobs[0].Operation())
	assert.False(t, cfg.Jobs[0].HasKeys())
	assert.Equal(t, []Level{{Name: "category", Key: "categories"}}, cfg.Jobs[1].Keys())
	assert.Equal(t, "output", cfg.Jobs[2].Name())
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "top level list", yaml: "- a\n- b\n"},
		{name: "jobs not a list", yaml: "jobs: x\n"},
		{name: "job without operation", yaml: "jobs:\n  - name: x\n"},
		{name: "keys not a list", yaml: "jobs:\n  - operation: dump\n    keys: x\n"},
		{name: "level without key", yaml: "jobs:\n  - operation: dump\n    keys:\n      - name: x\n"},
		{name: "data not a mapping", yaml: "jobs:\n  - operation: dump\n    data: [1]\n"},
		{name: "duplicate key", yaml: "a: 1\na: 2\n"},
		{name: "broken yaml", yaml: "a: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			assert.True(t, errors.Is(err, ErrConfig), "got %v", err)
		})
	}
}

func TestValidateFormat(t *testing.T) {
	cfg, err := ParseConfig([]byte("format: xml\n"))
	require.NoError(t, err)
	assert.True(t, errors.Is(cfg.Validate(), ErrConfig))

	cfg.Override(KeyFormat, FormatCSV)
	assert.NoError(t, cfg.Validate())
}

func TestOffline(t *testing.T) {
	cfg, err := ParseConfig([]byte("local: y\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Offline())

	cfg, err = ParseConfig([]byte("local: n\n"))
	require.NoError(t, err)
	assert.False(t, cfg.Offline())
	assert.Equal(t, DefaultTimeout, cfg.Timeout())
}

func TestEmptyConfig(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Context.Len())
	assert.Empty(t, cfg.Jobs)
}
