package render

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ThomasCrouzet/fleetmon/internal/model"
)

// HostsDelimiter separates hand-maintained /etc/hosts entries from the
// generated block below it.
const HostsDelimiter = "### All Hosts ###"

// HostsFile rewrites the generated block of an /etc/hosts file. Lines above
// the delimiter in Existing are preserved.
//
// Prefix is prepended to every hostname. When it is empty and StackPrefix is
// set, hosts with a known stack get "<stack>-" instead.
type HostsFile struct {
	Existing    []byte
	Prefix      string
	StackPrefix bool
}

func (h *HostsFile) Render(w io.Writer, inv *model.Inventory) error {
	bw := bufio.NewWriter(w)

	sc := bufio.NewScanner(bytes.NewReader(h.Existing))
	for sc.Scan() {
		line := sc.Text()
		if strings.Contains(line, HostsDelimiter) {
			break
		}
		fmt.Fprintln(bw, strings.TrimRight(line, " \t\r"))
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading hosts file: %w", err)
	}

	fmt.Fprintln(bw, HostsDelimiter)
	for _, host := range inv.SortedHosts() {
		if host.Address == "" {
			continue
		}
		fmt.Fprintf(bw, "%s %s%s\n", host.Address, h.prefixFor(host), host.Hostname)
	}
	return bw.Flush()
}

func (h *HostsFile) prefixFor(host *model.Host) string {
	if h.Prefix == "" && h.StackPrefix && host.Stack != "" {
		return host.Stack + "-"
	}
	return h.Prefix
}
