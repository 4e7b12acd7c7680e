package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThomasCrouzet/fleetmon/internal/config"
	"github.com/ThomasCrouzet/fleetmon/internal/model"
)

func testInventory() *model.Inventory {
	inv := model.NewInventory()
	inv.Hosts["web1"] = &model.Host{Hostname: "web1", Address: "10.0.0.1", HostGroups: []string{"lb", "us-east-1a"}}
	inv.Hosts["app1"] = &model.Host{Hostname: "app1", Address: "10.0.0.2", HostGroups: []string{"app", "cache", "us-east-1b"}}
	inv.HostGroups["lb"] = "Load Balancer"
	inv.HostGroups["app"] = "App Server"
	inv.HostGroups["cache"] = "Memcached"
	inv.HostGroups["us-east-1a"] = "us-east-1a"
	inv.HostGroups["us-east-1b"] = "us-east-1b"
	return inv
}

func TestNagiosHostGroups(t *testing.T) {
	n, err := NewNagios(config.RenderConfig{HostTemplate: "linux-server"})
	require.NoError(t, err)

	out, err := RenderString(n.HostGroups, testInventory())
	require.NoError(t, err)

	expected := `# Managed by fleetmon. Local changes will be overwritten.

define hostgroup {
  hostgroup_name  app
  alias           App Server
}

define hostgroup {
  hostgroup_name  cache
  alias           Memcached
}

define hostgroup {
  hostgroup_name  lb
  alias           Load Balancer
}

define hostgroup {
  hostgroup_name  us-east-1a
  alias           us-east-1a
}

define hostgroup {
  hostgroup_name  us-east-1b
  alias           us-east-1b
}
`
	assert.Equal(t, expected, out)
}

func TestNagiosHosts(t *testing.T) {
	n, err := NewNagios(config.RenderConfig{HostTemplate: "linux-server"})
	require.NoError(t, err)

	out, err := RenderString(n.Hosts, testInventory())
	require.NoError(t, err)

	expected := `# Managed by fleetmon. Local changes will be overwritten.

define host {
  use             linux-server
  host_name       app1
  alias           app1
  address         10.0.0.2
  hostgroups      app,cache,us-east-1b
}

define host {
  use             linux-server
  host_name       web1
  alias           web1
  address         10.0.0.1
  hostgroups      lb,us-east-1a
}
`
	assert.Equal(t, expected, out)
}

func TestNagiosDefaultHostTemplate(t *testing.T) {
	n, err := NewNagios(config.RenderConfig{})
	require.NoError(t, err)

	out, err := RenderString(n.Hosts, testInventory())
	require.NoError(t, err)
	assert.Contains(t, out, "use             generic-host\n")
}

func TestNagiosSanitizesObjectNames(t *testing.T) {
	inv := model.NewInventory()
	inv.Hosts["db (primary)"] = &model.Host{Hostname: "db (primary)", Address: "10.0.0.9", HostGroups: []string{"db layer"}}
	inv.HostGroups["db layer"] = "DB Layer"

	n, err := NewNagios(config.RenderConfig{})
	require.NoError(t, err)

	hosts, err := RenderString(n.Hosts, inv)
	require.NoError(t, err)
	assert.Contains(t, hosts, "host_name       db_primary_\n")
	assert.Contains(t, hosts, "alias           db (primary)\n")
	assert.Contains(t, hosts, "hostgroups      db_layer\n")

	groups, err := RenderString(n.HostGroups, inv)
	require.NoError(t, err)
	assert.Contains(t, groups, "hostgroup_name  db_layer\n")
}

func TestNagiosEmptyInventory(t *testing.T) {
	n, err := NewNagios(config.RenderConfig{})
	require.NoError(t, err)

	out, err := RenderString(n.Hosts, model.NewInventory())
	require.NoError(t, err)
	assert.Equal(t, "# Managed by fleetmon. Local changes will be overwritten.\n", out)
}

func TestNagiosTemplateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hostgroups.tmpl")
	tmpl := `{{ range .HostGroups }}{{ .ID | upper }}={{ .Name }}
{{ end }}`
	require.NoError(t, os.WriteFile(path, []byte(tmpl), 0600))

	n, err := NewNagios(config.RenderConfig{HostgroupsTemplateFile: path})
	require.NoError(t, err)

	out, err := RenderString(n.HostGroups, testInventory())
	require.NoError(t, err)
	assert.Equal(t, "APP=App Server\nCACHE=Memcached\nLB=Load Balancer\nUS-EAST-1A=us-east-1a\nUS-EAST-1B=us-east-1b\n", out)
}

func TestNagiosTemplateErrors(t *testing.T) {
	_, err := NewNagios(config.RenderConfig{HostsTemplateFile: "/nonexistent/hosts.tmpl"})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("{{ range .Hosts }"), 0600))
	_, err = NewNagios(config.RenderConfig{HostsTemplateFile: path})
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	n, err := NewNagios(config.RenderConfig{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "hosts.cfg")
	inv := testInventory()

	changed, err := WriteFile(path, n.Hosts, inv, 0644)
	require.NoError(t, err)
	assert.True(t, changed)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	changed, err = WriteFile(path, n.Hosts, inv, 0640)
	require.NoError(t, err)
	assert.False(t, changed)

	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())

	inv.Hosts["web1"].Address = "10.0.0.10"
	changed, err = WriteFile(path, n.Hosts, inv, 0640)
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "address         10.0.0.10\n")
}

func TestNagiosObjectNameCollision(t *testing.T) {
	n, err := NewNagios(config.RenderConfig{})
	require.NoError(t, err)

	groups := model.NewInventory()
	groups.Hosts["db1"] = &model.Host{Hostname: "db1", Address: "10.0.0.5", HostGroups: []string{"db layer", "db_layer"}}
	groups.HostGroups["db layer"] = "DB Layer"
	groups.HostGroups["db_layer"] = "DB Replicas"

	_, err = RenderString(n.HostGroups, groups)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both render as")
	assert.Contains(t, err.Error(), `"db_layer"`)

	hosts := model.NewInventory()
	hosts.Hosts["web 1"] = &model.Host{Hostname: "web 1", Address: "10.0.0.1"}
	hosts.Hosts["web_1"] = &model.Host{Hostname: "web_1", Address: "10.0.0.2"}

	_, err = RenderString(n.Hosts, hosts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both render as")
}

func TestWriteFileReplacesAtomically(t *testing.T) {
	n, err := NewNagios(config.RenderConfig{})
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "hosts.cfg")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0600))

	changed, err := WriteFile(path, n.Hosts, testInventory(), 0644)
	require.NoError(t, err)
	assert.True(t, changed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hosts.cfg", entries[0].Name())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.Contains(t, string(data), "host_name       web1\n")

	_, err = WriteFile(filepath.Join(dir, "missing", "hosts.cfg"), n.Hosts, testInventory(), 0644)
	assert.Error(t, err)
}
