package model

import "sort"

// Host is a monitored host as handed to the renderers.
type Host struct {
	Hostname   string
	Address    string
	HostGroups []string // group ids, sorted
	Stack      string   // last stack observed, may be empty
}

// InGroup reports whether the host is a member of the given hostgroup.
func (h *Host) InGroup(id string) bool {
	i := sort.SearchStrings(h.HostGroups, id)
	return i < len(h.HostGroups) && h.HostGroups[i] == id
}

// Inventory is the result of one aggregation run: every online host and
// every hostgroup (id → display name) they belong to.
type Inventory struct {
	Hosts      map[string]*Host
	HostGroups map[string]string
}

// NewInventory creates an initialized, empty Inventory.
func NewInventory() *Inventory {
	return &Inventory{
		Hosts:      make(map[string]*Host),
		HostGroups: make(map[string]string),
	}
}

// Hostnames returns all hostnames in lexical order.
func (inv *Inventory) Hostnames() []string {
	names := make([]string, 0, len(inv.Hosts))
	for name := range inv.Hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortedHosts returns all hosts ordered by hostname.
func (inv *Inventory) SortedHosts() []*Host {
	hosts := make([]*Host, 0, len(inv.Hosts))
	for _, name := range inv.Hostnames() {
		hosts = append(hosts, inv.Hosts[name])
	}
	return hosts
}

// GroupIDs returns all hostgroup ids in lexical order.
func (inv *Inventory) GroupIDs() []string {
	ids := make([]string, 0, len(inv.HostGroups))
	for id := range inv.HostGroups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Members returns the sorted hostnames that belong to a hostgroup.
func (inv *Inventory) Members(groupID string) []string {
	var members []string
	for _, name := range inv.Hostnames() {
		if inv.Hosts[name].InGroup(groupID) {
			members = append(members, name)
		}
	}
	return members
}
