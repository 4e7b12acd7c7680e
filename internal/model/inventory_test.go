package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testInventory() *Inventory {
	inv := NewInventory()
	inv.Hosts["web2"] = &Host{Hostname: "web2", Address: "10.0.0.2", HostGroups: []string{"lb", "us-east-1b"}}
	inv.Hosts["app1"] = &Host{Hostname: "app1", Address: "10.0.1.1", HostGroups: []string{"app", "us-east-1a"}}
	inv.Hosts["web1"] = &Host{Hostname: "web1", Address: "10.0.0.1", HostGroups: []string{"lb", "us-east-1a"}}
	inv.HostGroups["lb"] = "Load Balancers"
	inv.HostGroups["app"] = "App Servers"
	inv.HostGroups["us-east-1a"] = "us-east-1a"
	inv.HostGroups["us-east-1b"] = "us-east-1b"
	return inv
}

func TestInventoryOrdering(t *testing.T) {
	inv := testInventory()

	assert.Equal(t, []string{"app1", "web1", "web2"}, inv.Hostnames())
	assert.Equal(t, []string{"app", "lb", "us-east-1a", "us-east-1b"}, inv.GroupIDs())

	hosts := inv.SortedHosts()
	assert.Len(t, hosts, 3)
	assert.Equal(t, "app1", hosts[0].Hostname)
	assert.Equal(t, "web2", hosts[2].Hostname)
}

func TestInventoryMembers(t *testing.T) {
	inv := testInventory()

	assert.Equal(t, []string{"web1", "web2"}, inv.Members("lb"))
	assert.Equal(t, []string{"app1", "web1"}, inv.Members("us-east-1a"))
	assert.Empty(t, inv.Members("missing"))
}

func TestEmptyInventory(t *testing.T) {
	inv := NewInventory()
	assert.Empty(t, inv.Hostnames())
	assert.Empty(t, inv.GroupIDs())
	assert.Empty(t, inv.SortedHosts())
}

func TestInstanceRecordOnline(t *testing.T) {
	assert.True(t, InstanceRecord{Status: StatusOnline}.Online())
	assert.False(t, InstanceRecord{Status: "stopped"}.Online())
	assert.False(t, InstanceRecord{}.Online())
}
