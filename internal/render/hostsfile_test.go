package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThomasCrouzet/fleetmon/internal/model"
)

func TestHostsFile(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		prefix   string
		expected string
	}{
		{
			name:     "replaces generated block",
			existing: "127.0.0.1 localhost\n::1 localhost  \n### All Hosts ###\n10.9.9.9 old-host\n",
			expected: "127.0.0.1 localhost\n::1 localhost\n### All Hosts ###\n10.0.0.2 app1\n10.0.0.1 web1\n",
		},
		{
			name:     "appends block when delimiter is missing",
			existing: "127.0.0.1 localhost\n",
			prefix:   "prod-",
			expected: "127.0.0.1 localhost\n### All Hosts ###\n10.0.0.2 prod-app1\n10.0.0.1 prod-web1\n",
		},
		{
			name:     "empty file",
			expected: "### All Hosts ###\n10.0.0.2 app1\n10.0.0.1 web1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &HostsFile{Existing: []byte(tt.existing), Prefix: tt.prefix}
			out, err := RenderString(h, testInventory())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestHostsFileSkipsHostsWithoutAddress(t *testing.T) {
	inv := model.NewInventory()
	inv.Hosts["ghost"] = &model.Host{Hostname: "ghost"}

	out, err := RenderString(&HostsFile{}, inv)
	require.NoError(t, err)
	assert.Equal(t, "### All Hosts ###\n", out)
}

func TestHostsFileStackPrefix(t *testing.T) {
	inv := model.NewInventory()
	inv.Hosts["web1"] = &model.Host{Hostname: "web1", Address: "10.0.0.1", Stack: "production"}
	inv.Hosts["db1"] = &model.Host{Hostname: "db1", Address: "10.0.0.3"}

	out, err := RenderString(&HostsFile{StackPrefix: true}, inv)
	require.NoError(t, err)
	assert.Equal(t, "### All Hosts ###\n10.0.0.3 db1\n10.0.0.1 production-web1\n", out)

	out, err = RenderString(&HostsFile{Prefix: "ops-", StackPrefix: true}, inv)
	require.NoError(t, err)
	assert.Equal(t, "### All Hosts ###\n10.0.0.3 ops-db1\n10.0.0.1 ops-web1\n", out)

	out, err = RenderString(&HostsFile{}, inv)
	require.NoError(t, err)
	assert.Equal(t, "### All Hosts ###\n10.0.0.3 db1\n10.0.0.1 web1\n", out)
}
