package inventory

import (
	"sort"

	"github.com/ThomasCrouzet/fleetmon/internal/model"
	"github.com/rs/zerolog/log"
)

// HostRegistry accumulates host observations for a single aggregation run.
// Group memberships only ever grow; the address is the last one observed.
type HostRegistry struct {
	hosts map[string]*hostEntry
}

type hostEntry struct {
	address string
	stack   string
	groups  map[string]struct{}
}

// NewHostRegistry creates an empty HostRegistry.
func NewHostRegistry() *HostRegistry {
	return &HostRegistry{hosts: make(map[string]*hostEntry)}
}

// Upsert records that hostname was seen with the given groups and address.
func (r *HostRegistry) Upsert(hostname string, groups []string, address string) {
	entry, ok := r.hosts[hostname]
	if !ok {
		entry = &hostEntry{groups: make(map[string]struct{}, len(groups))}
		r.hosts[hostname] = entry
	} else if entry.address != address {
		log.Debug().
			Str("host", hostname).
			Str("previous", entry.address).
			Str("address", address).
			Msg("address replaced by later observation")
	}

	entry.address = address
	for _, g := range groups {
		entry.groups[g] = struct{}{}
	}
}

// SetStack records the stack a known host runs in. Last write wins.
func (r *HostRegistry) SetStack(hostname, stack string) {
	if entry, ok := r.hosts[hostname]; ok && stack != "" {
		entry.stack = stack
	}
}

// Len returns the number of distinct hostnames seen so far.
func (r *HostRegistry) Len() int {
	return len(r.hosts)
}

// Snapshot returns a copy of the registry as renderable hosts.
func (r *HostRegistry) Snapshot() map[string]*model.Host {
	out := make(map[string]*model.Host, len(r.hosts))
	for name, entry := range r.hosts {
		groups := make([]string, 0, len(entry.groups))
		for g := range entry.groups {
			groups = append(groups, g)
		}
		sort.Strings(groups)
		out[name] = &model.Host{
			Hostname:   name,
			Address:    entry.address,
			HostGroups: groups,
			Stack:      entry.stack,
		}
	}
	return out
}

// GroupRegistry maps hostgroup ids to display names. A later registration
// with a different name replaces the earlier one.
type GroupRegistry struct {
	names map[string]string
}

// NewGroupRegistry creates an empty GroupRegistry.
func NewGroupRegistry() *GroupRegistry {
	return &GroupRegistry{names: make(map[string]string)}
}

// Register records a hostgroup id and its display name.
func (g *GroupRegistry) Register(id, name string) {
	if prev, ok := g.names[id]; ok && prev != name {
		log.Debug().
			Str("group", id).
			Str("previous", prev).
			Str("name", name).
			Msg("hostgroup name replaced by later observation")
	}
	g.names[id] = name
}

// Len returns the number of registered hostgroups.
func (g *GroupRegistry) Len() int {
	return len(g.names)
}

// Snapshot returns a copy of the id → name mapping.
func (g *GroupRegistry) Snapshot() map[string]string {
	out := make(map[string]string, len(g.names))
	for id, name := range g.names {
		out[id] = name
	}
	return out
}
