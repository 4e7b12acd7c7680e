package model

// Status is the operational state the fleet inventory reports for an instance.
type Status string

// StatusOnline is the only status that takes part in aggregation.
const StatusOnline Status = "online"

// Layer is a role grouping an instance belongs to.
type Layer struct {
	ID   string
	Name string
}

// InstanceRecord is one normalized observation of a fleet instance.
// The same hostname may be observed more than once in a run.
type InstanceRecord struct {
	Hostname         string
	PrivateIP        string
	AvailabilityZone string
	Status           Status
	Layers           []Layer
	Stack            string // optional, the stack the instance runs in
}

// Online reports whether the instance should be monitored.
func (r InstanceRecord) Online() bool {
	return r.Status == StatusOnline
}
