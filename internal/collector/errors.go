package collector

import "fmt"

// CollectorError wraps an error with the collector that produced it and the
// phase ("configure" or "collect") it failed in.
type CollectorError struct {
	Collector string
	Phase     string
	Err       error
}

func (e *CollectorError) Error() string {
	if e.Phase == "" {
		return fmt.Sprintf("%s: %v", e.Collector, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Collector, e.Phase, e.Err)
}

func (e *CollectorError) Unwrap() error {
	return e.Err
}
