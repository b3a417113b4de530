package proxy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRobinProxySwitcher(t *testing.T) {
	p, err := RoundRobinProxySwitcher("http://a:1", "http://b:2")
	require.NoError(t, err)

	var hosts []string
	for i := 0; i < 4; i++ {
		u, err := p(nil)
		require.NoError(t, err)
		hosts = append(hosts, u.Host)
	}
	assert.Equal(t, []string{"a:1", "b:2", "a:1", "b:2"}, hosts)
}

func TestRoundRobinProxySwitcherErrors(t *testing.T) {
	_, err := RoundRobinProxySwitcher()
	assert.True(t, errors.Is(err, ErrNoProxy))

	_, err = RoundRobinProxySwitcher("ftp://a:1")
	assert.Error(t, err)

	_, err = RoundRobinProxySwitcher("http://")
	assert.Error(t, err)
}
