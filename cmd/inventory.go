package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ThomasCrouzet/fleetmon/internal/config"
	"github.com/ThomasCrouzet/fleetmon/internal/model"
	"github.com/ThomasCrouzet/fleetmon/internal/ui"
)

var inventoryOutputFormat string

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Show the merged host and hostgroup inventory",
	Long: `Collect and aggregate instances exactly like generate, then print the
resulting hosts and hostgroups instead of writing Nagios files.`,
	RunE: runInventory,
}

func init() {
	rootCmd.AddCommand(inventoryCmd)

	inventoryCmd.Flags().StringVarP(&inventoryOutputFormat, "output", "o", "table", "output format (table, yaml, json)")
	inventoryCmd.Flags().StringVar(&layerTreeFile, "layer-tree", "", "path to a node tree (node.json) with layers and instances")
	inventoryCmd.Flags().StringVar(&searchURL, "search-url", "", "base URL of the directory search API")
	inventoryCmd.Flags().StringVar(&zonePrefix, "zone-prefix", "", "namespace availability zone hostgroup ids with this prefix")
}

func runInventory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to load config", err.Error(), "run 'fleetmon init' to create a config file"))
		return err
	}

	applyFlagOverrides(cfg)

	inv, _, err := buildInventory(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	return writeInventory(cmd.OutOrStdout(), inv, inventoryOutputFormat)
}

type inventoryHost struct {
	Address    string   `json:"address" yaml:"address"`
	HostGroups []string `json:"hostgroups" yaml:"hostgroups"`
}

type inventoryDoc struct {
	Hosts      map[string]inventoryHost `json:"hosts" yaml:"hosts"`
	HostGroups map[string]string        `json:"hostgroups" yaml:"hostgroups"`
}

func newInventoryDoc(inv *model.Inventory) inventoryDoc {
	doc := inventoryDoc{
		Hosts:      make(map[string]inventoryHost, len(inv.Hosts)),
		HostGroups: make(map[string]string, len(inv.HostGroups)),
	}
	for name, h := range inv.Hosts {
		doc.Hosts[name] = inventoryHost{Address: h.Address, HostGroups: h.HostGroups}
	}
	for id, name := range inv.HostGroups {
		doc.HostGroups[id] = name
	}
	return doc
}

func writeInventory(w io.Writer, inv *model.Inventory, format string) error {
	switch format {
	case "yaml":
		data, err := yaml.Marshal(newInventoryDoc(inv))
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		_, err = w.Write(data)
		return err

	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newInventoryDoc(inv))

	case "table", "":
		writeTables(w, inv)
		return nil

	default:
		return fmt.Errorf("unknown output format %q (use table, yaml or json)", format)
	}
}

func writeTables(w io.Writer, inv *model.Inventory) {
	hosts := table.NewWriter()
	hosts.SetOutputMirror(w)
	hosts.SetStyle(table.StyleRounded)
	hosts.SetTitle("Hosts")
	hosts.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("HOSTNAME"),
		text.FgHiCyan.Sprint("ADDRESS"),
		text.FgHiCyan.Sprint("HOSTGROUPS"),
	})
	for _, h := range inv.SortedHosts() {
		hosts.AppendRow(table.Row{h.Hostname, h.Address, strings.Join(h.HostGroups, ", ")})
	}
	hosts.AppendFooter(table.Row{"", "", fmt.Sprintf("%d hosts", len(inv.Hosts))})
	hosts.Render()

	groups := table.NewWriter()
	groups.SetOutputMirror(w)
	groups.SetStyle(table.StyleRounded)
	groups.SetTitle("Hostgroups")
	groups.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("ID"),
		text.FgHiCyan.Sprint("ALIAS"),
		text.FgHiCyan.Sprint("MEMBERS"),
	})
	for _, id := range inv.GroupIDs() {
		groups.AppendRow(table.Row{id, inv.HostGroups[id], len(inv.Members(id))})
	}
	groups.Render()
}
