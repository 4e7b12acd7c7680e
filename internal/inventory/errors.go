package inventory

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord is returned (wrapped) when an online instance lacks a
// field the aggregation needs.
var ErrMalformedRecord = errors.New("malformed instance record")

// RecordError identifies the record and field that made a run fail.
type RecordError struct {
	Index    int // position in the input
	Hostname string
	Field    string
}

func (e *RecordError) Error() string {
	if e.Hostname == "" {
		return fmt.Sprintf("record %d: missing %s", e.Index, e.Field)
	}
	return fmt.Sprintf("instance %s: missing %s", e.Hostname, e.Field)
}

func (e *RecordError) Unwrap() error {
	return ErrMalformedRecord
}
