// Package inventory folds instance records into the host and hostgroup
// registries the monitoring config is rendered from.
package inventory

import (
	"github.com/ThomasCrouzet/fleetmon/internal/model"
	"github.com/rs/zerolog/log"
)

// Stats counts what an Aggregator has seen.
type Stats struct {
	Observed int // records passed to Add
	Filtered int // records skipped because they were not online
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithZonePrefix namespaces availability-zone group ids so they cannot
// collide with layer ids. The display name stays the bare zone.
func WithZonePrefix(prefix string) Option {
	return func(a *Aggregator) {
		a.zonePrefix = prefix
	}
}

// Aggregator builds an Inventory from instance records. It is owned by a
// single run and is not safe for concurrent use.
type Aggregator struct {
	zonePrefix string
	hosts      *HostRegistry
	groups     *GroupRegistry
	stats      Stats
}

// New creates an Aggregator with empty registries.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		hosts:  NewHostRegistry(),
		groups: NewGroupRegistry(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Add folds one record into the registries. Records that are not online are
// ignored; online records missing a required field return a *RecordError.
func (a *Aggregator) Add(rec model.InstanceRecord) error {
	index := a.stats.Observed
	a.stats.Observed++

	if !rec.Online() {
		a.stats.Filtered++
		return nil
	}

	if err := validate(index, rec); err != nil {
		return err
	}

	groups := make([]string, 0, len(rec.Layers)+1)
	for _, layer := range rec.Layers {
		a.groups.Register(layer.ID, layer.Name)
		groups = append(groups, layer.ID)
	}

	zoneID := a.zonePrefix + rec.AvailabilityZone
	a.groups.Register(zoneID, rec.AvailabilityZone)
	groups = append(groups, zoneID)

	a.hosts.Upsert(rec.Hostname, groups, rec.PrivateIP)
	a.hosts.SetStack(rec.Hostname, rec.Stack)
	return nil
}

// Stats returns the counters accumulated so far.
func (a *Aggregator) Stats() Stats {
	return a.stats
}

// Inventory returns a snapshot of the registries.
func (a *Aggregator) Inventory() *model.Inventory {
	return &model.Inventory{
		Hosts:      a.hosts.Snapshot(),
		HostGroups: a.groups.Snapshot(),
	}
}

// Aggregate runs a fresh Aggregator over records. A malformed record aborts
// the run and no inventory is returned.
func Aggregate(records []model.InstanceRecord, opts ...Option) (*model.Inventory, error) {
	inv, _, err := Run(records, opts...)
	return inv, err
}

// Run is Aggregate that also reports the run's counters.
func Run(records []model.InstanceRecord, opts ...Option) (*model.Inventory, Stats, error) {
	a := New(opts...)
	for _, rec := range records {
		if err := a.Add(rec); err != nil {
			return nil, a.stats, err
		}
	}

	log.Info().
		Int("records", a.stats.Observed).
		Int("filtered", a.stats.Filtered).
		Int("hosts", a.hosts.Len()).
		Int("hostgroups", a.groups.Len()).
		Msg("aggregated fleet inventory")

	return a.Inventory(), a.stats, nil
}

func validate(index int, rec model.InstanceRecord) error {
	field := ""
	switch {
	case rec.Hostname == "":
		field = "hostname"
	case rec.PrivateIP == "":
		field = "private_ip"
	case rec.AvailabilityZone == "":
		field = "availability_zone"
	}
	for _, layer := range rec.Layers {
		if field == "" && layer.ID == "" {
			field = "layer id"
		}
	}
	if field == "" {
		return nil
	}
	return &RecordError{Index: index, Hostname: rec.Hostname, Field: field}
}
