package wizard

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// WizardAnswers holds all user responses from the wizard.
type WizardAnswers struct {
	// Sources to enable
	EnableLayerTree bool
	EnableSearch    bool
	EnableEtcd      bool

	LayerTreeFile string
	LayersPath    string

	SearchURL   string
	SearchQuery string

	EtcdEndpoints string // comma separated
	EtcdPrefix    string

	// Output settings
	NagiosConfDir   string
	HostTemplate    string
	ZonePrefix      string
	ManageHosts     bool
	HostsfilePrefix string
}

// Endpoints splits the comma separated etcd endpoints.
func (a WizardAnswers) Endpoints() []string {
	var out []string
	for _, e := range strings.Split(a.EtcdEndpoints, ",") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

const configTemplate = `# fleetmon configuration
# Documentation: https://github.com/ThomasCrouzet/fleetmon

log_level: warn

output:
  hosts_cfg: {{ printf "%s/hosts.cfg" .NagiosConfDir | quote }}
  hostgroups_cfg: {{ printf "%s/hostgroups.cfg" .NagiosConfDir | quote }}
  mode: "0644"
{{- if .ManageHosts }}
  hosts_file: /etc/hosts
{{- end }}

sources:
{{- if .EnableLayerTree }}
  layer_tree:
    file: {{ .LayerTreeFile | quote }}
    layers_path: {{ .LayersPath | default "opsworks.layers" | quote }}
{{- end }}

{{- if .EnableSearch }}
  search:
    url: {{ .SearchURL | quote }}
    query: {{ .SearchQuery | default "role:*" | quote }}
    page_size: 1000
    timeout: 30s
    attempts: 3
{{- end }}

{{- if .EnableEtcd }}
  etcd:
    endpoints:
{{- range .Endpoints }}
      - {{ . | quote }}
{{- end }}
    prefix: {{ .EtcdPrefix | default "/fleet/nodes/" | quote }}
{{- end }}

aggregate:
  zone_prefix: {{ .ZonePrefix | quote }}

render:
  host_template: {{ .HostTemplate | default "linux-server" | quote }}
{{- if .HostsfilePrefix }}
  hostsfile_prefix: {{ .HostsfilePrefix | quote }}
{{- end }}
`

// GenerateConfig renders the YAML config from wizard answers.
func GenerateConfig(answers WizardAnswers) (string, error) {
	answers.NagiosConfDir = strings.TrimRight(answers.NagiosConfDir, "/")
	if answers.NagiosConfDir == "" {
		answers.NagiosConfDir = "/etc/nagios/conf.d"
	}

	tmpl, err := template.New("config").Funcs(sprig.TxtFuncMap()).Parse(configTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, answers); err != nil {
		return "", err
	}

	return buf.String(), nil
}
