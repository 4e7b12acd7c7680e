package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ThomasCrouzet/fleetmon/internal/collector"
	"github.com/ThomasCrouzet/fleetmon/internal/config"
	"github.com/ThomasCrouzet/fleetmon/internal/inventory"
	"github.com/ThomasCrouzet/fleetmon/internal/metrics"
	"github.com/ThomasCrouzet/fleetmon/internal/model"
	"github.com/ThomasCrouzet/fleetmon/internal/render"
	"github.com/ThomasCrouzet/fleetmon/internal/ui"
)

var (
	hostsCfg        string
	hostgroupsCfg   string
	hostsFile       string
	layerTreeFile   string
	layersPath      string
	searchURL       string
	searchQuery     string
	zonePrefix      string
	metricsTextfile string
	dryRun          bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate Nagios hosts.cfg and hostgroups.cfg",
	Long: `Collect instance records from every configured source, merge them into
a host and hostgroup inventory, then write the Nagios object files.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&hostsCfg, "hosts-cfg", "", "output path for hosts.cfg")
	generateCmd.Flags().StringVar(&hostgroupsCfg, "hostgroups-cfg", "", "output path for hostgroups.cfg")
	generateCmd.Flags().StringVar(&hostsFile, "hosts-file", "", "rewrite the generated block of this /etc/hosts file")
	generateCmd.Flags().StringVar(&layerTreeFile, "layer-tree", "", "path to a node tree (node.json) with layers and instances")
	generateCmd.Flags().StringVar(&layersPath, "layers-path", "", "dotted path to the layers mapping inside the node tree")
	generateCmd.Flags().StringVar(&searchURL, "search-url", "", "base URL of the directory search API")
	generateCmd.Flags().StringVar(&searchQuery, "search-query", "", "directory search query (default: role:*)")
	generateCmd.Flags().StringVar(&zonePrefix, "zone-prefix", "", "namespace availability zone hostgroup ids with this prefix")
	generateCmd.Flags().StringVar(&metricsTextfile, "metrics-textfile", "", "write Prometheus textfile metrics to this path")
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the rendered files instead of writing them")
}

type output struct {
	path string
	r    render.Renderer
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to load config", err.Error(), "run 'fleetmon init' to create a config file"))
		return err
	}

	applyFlagOverrides(cfg)

	mode, err := cfg.Output.FileMode()
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Invalid output mode", err.Error(), "use an octal string such as \"0644\""))
		return err
	}

	nagios, err := render.NewNagios(cfg.Render)
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to load templates", err.Error(), ""))
		return err
	}

	inv, stats, err := buildInventory(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	if dryRun {
		for _, r := range []render.Renderer{nagios.HostGroups, nagios.Hosts} {
			out, err := render.RenderString(r, inv)
			if err != nil {
				return err
			}
			fmt.Print(out)
		}
		return nil
	}

	outputs := []output{
		{cfg.Output.HostgroupsCfg, nagios.HostGroups},
		{cfg.Output.HostsCfg, nagios.Hosts},
	}
	if cfg.Output.HostsFile != "" {
		existing, err := os.ReadFile(cfg.Output.HostsFile)
		if err != nil && !os.IsNotExist(err) {
			fmt.Fprint(os.Stderr, ui.FormatError("Failed to read hosts file", err.Error(), ""))
			return err
		}
		outputs = append(outputs, output{cfg.Output.HostsFile, &render.HostsFile{
			Existing:    existing,
			Prefix:      cfg.Render.HostsfilePrefix,
			StackPrefix: cfg.Render.HostsfileStackPrefix,
		}})
	}

	for _, o := range outputs {
		changed, err := render.WriteFile(o.path, o.r, inv, mode)
		if err != nil {
			fmt.Fprint(os.Stderr, ui.FormatError("Failed to write output", err.Error(), ""))
			return err
		}
		ui.FileWritten(o.path, changed)
	}

	if cfg.Metrics.Textfile != "" {
		m := metrics.New()
		m.Observe(metrics.Run{
			Inventory: inv,
			Observed:  stats.Observed,
			Filtered:  stats.Filtered,
			Finished:  time.Now(),
		})
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			ui.Warn(fmt.Sprintf("could not write metrics: %v", err))
		}
	}

	ui.Success(fmt.Sprintf("Generated %d hosts in %d hostgroups", len(inv.Hosts), len(inv.HostGroups)))
	return nil
}

// buildInventory runs every enabled collector and aggregates their records.
func buildInventory(ctx context.Context, cfg *config.Config) (*model.Inventory, inventory.Stats, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	stop := ui.StartSpinner("Collecting instances...")
	records, results, err := collector.Collect(ctx, cfg)
	stop()

	for _, r := range results {
		if r.Skipped {
			ui.CollectorSkipped(r.Name)
		} else if r.Err != nil {
			fmt.Fprint(os.Stderr, ui.FormatError(r.Name+" failed", r.Err.Error(), "run 'fleetmon validate' to check the source configuration"))
		} else {
			ui.CollectorDone(r.Name, r.Detail)
		}
	}
	if err != nil {
		return nil, inventory.Stats{}, err
	}

	var opts []inventory.Option
	if cfg.Aggregate.ZonePrefix != "" {
		opts = append(opts, inventory.WithZonePrefix(cfg.Aggregate.ZonePrefix))
	}

	inv, stats, err := inventory.Run(records, opts...)
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Invalid instance record", err.Error(), "fix the source data; no files were written"))
		return nil, stats, err
	}
	return inv, stats, nil
}

func applyFlagOverrides(cfg *config.Config) {
	if hostsCfg != "" {
		cfg.Output.HostsCfg = hostsCfg
	}
	if hostgroupsCfg != "" {
		cfg.Output.HostgroupsCfg = hostgroupsCfg
	}
	if hostsFile != "" {
		cfg.Output.HostsFile = hostsFile
	}
	if layerTreeFile != "" {
		cfg.Sources.LayerTree.File = layerTreeFile
		cfg.SetSourceField("layer_tree", "file", layerTreeFile)
	}
	if layersPath != "" {
		cfg.Sources.LayerTree.LayersPath = layersPath
		cfg.SetSourceField("layer_tree", "layers_path", layersPath)
	}
	if searchURL != "" {
		cfg.Sources.Search.URL = searchURL
		cfg.SetSourceField("search", "url", searchURL)
	}
	if searchQuery != "" {
		cfg.Sources.Search.Query = searchQuery
		cfg.SetSourceField("search", "query", searchQuery)
	}
	if zonePrefix != "" {
		cfg.Aggregate.ZonePrefix = zonePrefix
	}
	if metricsTextfile != "" {
		cfg.Metrics.Textfile = metricsTextfile
	}
}
