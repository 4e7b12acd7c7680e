package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ThomasCrouzet/fleetmon/internal/ui"
	"github.com/ThomasCrouzet/fleetmon/internal/wizard"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a fleetmon.yml config file interactively",
	Long: `Scan the machine for a node tree, etcdctl and the Nagios object
directory, then generate a config file through an interactive wizard.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := "fleetmon.yml"

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("%s already exists.\n", configPath)
		fmt.Print("Overwrite? [y/N] ")
		var answer string
		_, _ = fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Fprintln(ui.Out, ui.Bold("Scanning environment..."))
	detection := wizard.Detect(nil)

	answers, err := wizard.Run(detection)
	if err != nil {
		return fmt.Errorf("wizard: %w", err)
	}

	content, err := wizard.GenerateConfig(*answers)
	if err != nil {
		return fmt.Errorf("generating config: %w", err)
	}

	// May hold an etcd password once edited.
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	ui.Success(fmt.Sprintf("Created %s", configPath))
	fmt.Fprintln(ui.Out)
	fmt.Fprintf(ui.Out, "Next step: %s\n", ui.Bold("fleetmon validate && fleetmon generate --dry-run"))
	fmt.Fprintf(ui.Out, "           %s\n", ui.Hint("or edit fleetmon.yml to fine-tune your config"))

	return nil
}
