// Package metrics exports per-run inventory gauges in the node_exporter
// textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ThomasCrouzet/fleetmon/internal/model"
)

// Run summarizes one generate run.
type Run struct {
	Inventory *model.Inventory
	Observed  int
	Filtered  int
	Finished  time.Time
}

// Metrics holds a private registry so the textfile only carries fleetmon series.
type Metrics struct {
	Registry *prometheus.Registry

	hosts        prometheus.Gauge
	hostgroups   prometheus.Gauge
	records      prometheus.Gauge
	filtered     prometheus.Gauge
	lastRun      prometheus.Gauge
	groupMembers *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		hosts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleetmon_hosts",
			Help: "Online hosts in the last generated inventory",
		}),
		hostgroups: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleetmon_hostgroups",
			Help: "Hostgroups in the last generated inventory",
		}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleetmon_instance_records",
			Help: "Instance records observed by the collectors",
		}),
		filtered: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleetmon_instance_records_filtered",
			Help: "Instance records skipped because they were not online",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleetmon_last_run_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
		groupMembers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fleetmon_hostgroup_hosts",
			Help: "Hosts per hostgroup",
		}, []string{"hostgroup", "alias"}),
	}
	m.Registry.MustRegister(m.hosts, m.hostgroups, m.records, m.filtered, m.lastRun, m.groupMembers)
	return m
}

// Observe replaces all gauges with the values of run.
func (m *Metrics) Observe(run Run) {
	inv := run.Inventory
	if inv == nil {
		inv = model.NewInventory()
	}
	m.hosts.Set(float64(len(inv.Hosts)))
	m.hostgroups.Set(float64(len(inv.HostGroups)))
	m.records.Set(float64(run.Observed))
	m.filtered.Set(float64(run.Filtered))
	if !run.Finished.IsZero() {
		m.lastRun.Set(float64(run.Finished.Unix()))
	}

	m.groupMembers.Reset()
	for _, id := range inv.GroupIDs() {
		m.groupMembers.WithLabelValues(id, inv.HostGroups[id]).Set(float64(len(inv.Members(id))))
	}
}

// WriteTextfile writes the registry to path for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
