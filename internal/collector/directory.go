package collector

import (
	"sort"

	"github.com/ThomasCrouzet/fleetmon/internal/model"
)

// DirectoryNode is a node as returned by a directory query. Each node already
// carries every layer it belongs to.
type DirectoryNode struct {
	Hostname         string   `json:"hostname"`
	PrivateIP        string   `json:"private_ip"`
	AvailabilityZone string   `json:"availability_zone"`
	Status           string   `json:"status,omitempty"`
	Roles            []string `json:"roles,omitempty"`
	OpsWorks         struct {
		Layers map[string]directoryLayer `json:"layers"`
		Stack  struct {
			Name string `json:"name"`
		} `json:"stack"`
	} `json:"opsworks"`
}

type directoryLayer struct {
	Name string `json:"name"`
}

// HasRole reports whether the node has at least one role assigned.
func (n DirectoryNode) HasRole() bool {
	return len(n.Roles) > 0
}

// FromDirectoryQuery converts directory nodes into instance records, one per
// node. Nodes without a status are registered, running nodes and count as
// online.
func FromDirectoryQuery(nodes []DirectoryNode) []model.InstanceRecord {
	records := make([]model.InstanceRecord, 0, len(nodes))
	for _, n := range nodes {
		status := model.Status(n.Status)
		if status == "" {
			status = model.StatusOnline
		}

		ids := make([]string, 0, len(n.OpsWorks.Layers))
		for id := range n.OpsWorks.Layers {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		layers := make([]model.Layer, 0, len(ids))
		for _, id := range ids {
			layers = append(layers, model.Layer{ID: id, Name: n.OpsWorks.Layers[id].Name})
		}

		records = append(records, model.InstanceRecord{
			Hostname:         n.Hostname,
			PrivateIP:        n.PrivateIP,
			AvailabilityZone: n.AvailabilityZone,
			Status:           status,
			Layers:           layers,
			Stack:            n.OpsWorks.Stack.Name,
		})
	}
	return records
}
