package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOut(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := Out
	Out = &buf
	t.Cleanup(func() { Out = orig })
	return &buf
}

func TestFormatError(t *testing.T) {
	out := FormatError("Failed to load config", "no such file", "run 'fleetmon init'")
	assert.Contains(t, out, "Failed to load config")
	assert.Contains(t, out, "no such file")
	assert.Contains(t, out, "run 'fleetmon init'")

	bare := FormatError("boom", "", "")
	assert.NotContains(t, bare, "Hint")
}

func TestStatusLines(t *testing.T) {
	buf := captureOut(t)

	CollectorDone("Layer Tree", "(4 records)")
	CollectorSkipped("etcd")
	FileWritten("/etc/nagios/conf.d/hosts.cfg", true)
	FileWritten("/etc/nagios/conf.d/hostgroups.cfg", false)
	ValidationErr("sources.search.url", "unreachable", "check the URL")

	out := buf.String()
	assert.Contains(t, out, "Layer Tree")
	assert.Contains(t, out, "(4 records)")
	assert.Contains(t, out, "etcd (skipped)")
	assert.Contains(t, out, "/etc/nagios/conf.d/hosts.cfg")
	assert.Contains(t, out, "hostgroups.cfg (unchanged)")
	assert.Contains(t, out, "Hint: check the URL")
}

func TestMessageHelpers(t *testing.T) {
	buf := captureOut(t)

	Success("configuration written")
	Warn("no sources enabled")

	out := buf.String()
	assert.Contains(t, out, "configuration written")
	assert.Contains(t, out, "Warning: no sources enabled")
	assert.Contains(t, Bold("fleetmon"), "fleetmon")
	assert.Contains(t, Hint("run fleetmon init"), "run fleetmon init")
}
