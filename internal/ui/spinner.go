package ui

import (
	"time"

	"github.com/briandowns/spinner"
)

// StartSpinner shows msg with a spinner on Out until the returned stop func
// is called. Nothing is drawn when Out is not a terminal.
func StartSpinner(msg string) (stop func()) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(Out))
	s.Suffix = " " + msg
	s.Start()
	return s.Stop
}
