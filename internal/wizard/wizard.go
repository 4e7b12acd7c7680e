package wizard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"
)

// Run executes the interactive wizard and returns the user's answers.
func Run(detection DetectionResult) (*WizardAnswers, error) {
	answers := &WizardAnswers{
		LayerTreeFile: detection.LayerTreeFile,
		LayersPath:    "opsworks.layers",
		SearchQuery:   "role:*",
		EtcdPrefix:    "/fleet/nodes/",
		NagiosConfDir: detection.NagiosConfDir,
		HostTemplate:  "linux-server",
	}
	if answers.NagiosConfDir == "" {
		answers.NagiosConfDir = "/etc/nagios/conf.d"
	}

	var hints []string
	if detection.LayerTreeFile != "" {
		hints = append(hints, fmt.Sprintf("Node tree found: %s", detection.LayerTreeFile))
	}
	if detection.EtcdAvailable {
		hints = append(hints, "etcdctl detected")
	}
	if detection.NagiosConfDir != "" {
		hints = append(hints, fmt.Sprintf("Nagios config directory: %s", detection.NagiosConfDir))
	}

	var preSelected []string
	if detection.LayerTreeFile != "" {
		preSelected = append(preSelected, "layer_tree")
	}
	if detection.EtcdAvailable {
		preSelected = append(preSelected, "etcd")
	}

	// Step 1: Source selection
	var selectedSources []string

	desc := "Select where fleetmon reads instances, layers and zones from."
	if len(hints) > 0 {
		desc += "\n\nAuto-detected:\n  " + strings.Join(hints, "\n  ")
	}

	sourceForm := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Which sources do you want to enable?").
				Description(desc).
				Options(
					huh.NewOption("Node tree (node.json)", "layer_tree").Selected(slices.Contains(preSelected, "layer_tree")),
					huh.NewOption("Directory search API", "search").Selected(slices.Contains(preSelected, "search")),
					huh.NewOption("etcd node registry", "etcd").Selected(slices.Contains(preSelected, "etcd")),
				).
				Validate(func(s []string) error {
					if len(s) == 0 {
						return fmt.Errorf("select at least one source")
					}
					return nil
				}).
				Value(&selectedSources),
		),
	)

	if err := sourceForm.Run(); err != nil {
		return nil, err
	}

	answers.EnableLayerTree = slices.Contains(selectedSources, "layer_tree")
	answers.EnableSearch = slices.Contains(selectedSources, "search")
	answers.EnableEtcd = slices.Contains(selectedSources, "etcd")

	// Step 2: Source-specific config
	var groups []*huh.Group

	if answers.EnableLayerTree {
		if answers.LayerTreeFile == "" {
			answers.LayerTreeFile = "./node.json"
		}
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("Node tree path").
				Description("JSON or YAML document with layers and their instances").
				Value(&answers.LayerTreeFile),
			huh.NewInput().
				Title("Layers path").
				Description("Dotted path to the layers mapping inside the document").
				Value(&answers.LayersPath),
		))
	}

	if answers.EnableSearch {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("Search API base URL").
				Placeholder("https://chef.example.com/organizations/ops").
				Value(&answers.SearchURL),
			huh.NewInput().
				Title("Search query").
				Value(&answers.SearchQuery),
		))
	}

	if answers.EnableEtcd {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("etcd endpoints").
				Description("Comma separated, e.g. http://10.0.0.5:2379,http://10.0.0.6:2379").
				Value(&answers.EtcdEndpoints),
			huh.NewInput().
				Title("Key prefix").
				Value(&answers.EtcdPrefix),
		))
	}

	// Step 3: Output options
	groups = append(groups, huh.NewGroup(
		huh.NewInput().
			Title("Nagios object directory").
			Description("hosts.cfg and hostgroups.cfg are written here").
			Value(&answers.NagiosConfDir),
		huh.NewInput().
			Title("Nagios host template").
			Description("Value of 'use' in every host definition").
			Value(&answers.HostTemplate),
		huh.NewInput().
			Title("Zone hostgroup prefix (optional)").
			Description("Keeps availability zone ids from colliding with layer ids").
			Value(&answers.ZonePrefix),
		huh.NewConfirm().
			Title("Maintain a generated block in /etc/hosts?").
			Value(&answers.ManageHosts),
	))

	form := huh.NewForm(groups...)
	if err := form.Run(); err != nil {
		return nil, err
	}

	return answers, nil
}
