package render

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/ThomasCrouzet/fleetmon/internal/config"
	"github.com/ThomasCrouzet/fleetmon/internal/model"
	"github.com/ThomasCrouzet/fleetmon/internal/util"
)

const defaultHostGroupsTemplate = `# Managed by fleetmon. Local changes will be overwritten.
{{- range .HostGroups }}

define hostgroup {
  hostgroup_name  {{ nagiosName .ID }}
  alias           {{ .Name }}
}
{{- end }}
`

const defaultHostsTemplate = `# Managed by fleetmon. Local changes will be overwritten.
{{- range .Hosts }}

define host {
  use             {{ $.HostTemplate | default "generic-host" }}
  host_name       {{ nagiosName .Hostname }}
  alias           {{ .Hostname }}
  address         {{ .Address }}
  hostgroups      {{ nagiosNames .HostGroups | join "," }}
}
{{- end }}
`

// HostGroup is a hostgroup as exposed to templates.
type HostGroup struct {
	ID   string
	Name string
}

// TemplateData is the value templates execute against.
type TemplateData struct {
	HostTemplate string
	Hosts        []*model.Host
	HostGroups   []HostGroup
}

func newTemplateData(inv *model.Inventory, hostTemplate string) (TemplateData, error) {
	data := TemplateData{
		HostTemplate: hostTemplate,
		Hosts:        inv.SortedHosts(),
	}

	hostNames := make(map[string]string, len(data.Hosts))
	for _, h := range data.Hosts {
		if err := claimName(hostNames, "hosts", h.Hostname); err != nil {
			return data, err
		}
	}

	groupNames := make(map[string]string, len(inv.HostGroups))
	for _, id := range inv.GroupIDs() {
		if err := claimName(groupNames, "hostgroups", id); err != nil {
			return data, err
		}
		data.HostGroups = append(data.HostGroups, HostGroup{ID: id, Name: inv.HostGroups[id]})
	}
	return data, nil
}

// claimName fails when two distinct ids sanitize to the same Nagios object
// name, which Nagios would reject as a duplicate definition.
func claimName(seen map[string]string, kind, id string) error {
	name := util.NagiosName(id)
	if prev, ok := seen[name]; ok && prev != id {
		return fmt.Errorf("%s %q and %q both render as object name %q", kind, prev, id, name)
	}
	seen[name] = id
	return nil
}

// FuncMap returns the sprig functions plus the Nagios helpers.
func FuncMap() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["nagiosName"] = util.NagiosName
	funcs["nagiosNames"] = util.NagiosNames
	return funcs
}

// NagiosTemplate renders one Nagios object file.
type NagiosTemplate struct {
	tmpl         *template.Template
	hostTemplate string
}

func (n *NagiosTemplate) Render(w io.Writer, inv *model.Inventory) error {
	data, err := newTemplateData(inv, n.hostTemplate)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", n.tmpl.Name(), err)
	}
	if err := n.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering %s: %w", n.tmpl.Name(), err)
	}
	return nil
}

func parseTemplate(name, text, file string) (*template.Template, error) {
	if file != "" {
		data, err := os.ReadFile(util.ExpandPath(file))
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", file, err)
		}
		text = string(data)
	}
	tmpl, err := template.New(name).Funcs(FuncMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	return tmpl, nil
}

// Nagios holds the renderers for hosts.cfg and hostgroups.cfg.
type Nagios struct {
	Hosts      *NagiosTemplate
	HostGroups *NagiosTemplate
}

// NewNagios builds the Nagios renderers, using template files from the render
// config when set and the built-in templates otherwise.
func NewNagios(cfg config.RenderConfig) (*Nagios, error) {
	hosts, err := parseTemplate("hosts.cfg", defaultHostsTemplate, cfg.HostsTemplateFile)
	if err != nil {
		return nil, err
	}
	groups, err := parseTemplate("hostgroups.cfg", defaultHostGroupsTemplate, cfg.HostgroupsTemplateFile)
	if err != nil {
		return nil, err
	}
	return &Nagios{
		Hosts:      &NagiosTemplate{tmpl: hosts, hostTemplate: cfg.HostTemplate},
		HostGroups: &NagiosTemplate{tmpl: groups, hostTemplate: cfg.HostTemplate},
	}, nil
}
