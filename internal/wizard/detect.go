package wizard

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
)

// DetectionResult holds what was auto-detected on the system.
type DetectionResult struct {
	LayerTreeFile  string // node tree path if found
	EtcdAvailable  bool   // etcdctl on PATH
	NagiosConfDir  string // Nagios object directory if found
	HostsFileFound bool
}

// Detector abstracts filesystem and path lookups for testing.
type Detector interface {
	LookPath(name string) (string, error)
	Stat(path string) (os.FileInfo, error)
	Glob(pattern string) ([]string, error)
}

// OSDetector uses the real OS for detection.
type OSDetector struct{}

func (OSDetector) LookPath(name string) (string, error)  { return exec.LookPath(name) }
func (OSDetector) Stat(path string) (os.FileInfo, error) { return os.Stat(path) }
func (OSDetector) Glob(pattern string) ([]string, error) { return filepath.Glob(pattern) }

var layerTreePaths = []string{
	"node.json",
	"/etc/fleetmon/node.json",
}

// The OpsWorks agent drops one JSON node document per Chef run here.
const opsworksNodeGlob = "/var/lib/aws/opsworks/chef/*.json"

var nagiosConfDirs = []string{
	"/etc/nagios/conf.d",
	"/etc/nagios4/conf.d",
	"/usr/local/nagios/etc/conf.d",
}

// Detect scans the environment for instance sources and Nagios paths.
func Detect(d Detector) DetectionResult {
	if d == nil {
		d = OSDetector{}
	}

	result := DetectionResult{}

	for _, p := range layerTreePaths {
		if info, err := d.Stat(p); err == nil && !info.IsDir() {
			result.LayerTreeFile = p
			break
		}
	}
	if result.LayerTreeFile == "" {
		// Chef run files are timestamped, so the last one is the newest.
		if matches, err := d.Glob(opsworksNodeGlob); err == nil && len(matches) > 0 {
			sort.Strings(matches)
			result.LayerTreeFile = matches[len(matches)-1]
		}
	}

	if _, err := d.LookPath("etcdctl"); err == nil {
		result.EtcdAvailable = true
	}

	for _, dir := range nagiosConfDirs {
		if info, err := d.Stat(dir); err == nil && info.IsDir() {
			result.NagiosConfDir = dir
			break
		}
	}

	if _, err := d.Stat("/etc/hosts"); err == nil {
		result.HostsFileFound = true
	}

	return result
}
