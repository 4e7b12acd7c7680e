package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ThomasCrouzet/fleetmon/internal/collector"
	"github.com/ThomasCrouzet/fleetmon/internal/config"
	"github.com/ThomasCrouzet/fleetmon/internal/render"
	"github.com/ThomasCrouzet/fleetmon/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate your fleetmon.yml configuration",
	Long: `Check that every configured source is usable (files exist, URLs and
endpoints are set) and that the output settings and templates are valid.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to load config", err.Error(), "run 'fleetmon init' to create a config file"))
		return err
	}

	fmt.Fprintln(ui.Out, ui.Bold("Validating fleetmon.yml..."))

	rawSources := cfg.RawSources
	passed := 0
	failed := 0
	enabled := 0

	for _, c := range collector.All() {
		meta := c.Metadata()

		if !c.Enabled(rawSources) {
			continue
		}
		enabled++

		section, _ := rawSources[meta.ConfigKey].(map[string]any)
		if err := c.Configure(section); err != nil {
			ui.ValidationErr(meta.DisplayName, err.Error(), "")
			failed++
			continue
		}

		errs := c.Validate()
		if len(errs) == 0 {
			ui.ValidationOK(meta.DisplayName, "configuration valid")
			passed++
		} else {
			for _, ve := range errs {
				ui.ValidationErr(ve.Field, ve.Message, ve.Suggestion)
				failed++
			}
		}
	}

	if enabled == 0 {
		ui.ValidationErr("sources", "no source configured", "set sources.layer_tree.file, sources.search.url or sources.etcd.endpoints")
		failed++
	}

	if _, err := cfg.Output.FileMode(); err != nil {
		ui.ValidationErr("output.mode", err.Error(), "use an octal string such as \"0644\"")
		failed++
	} else {
		passed++
	}

	if _, err := render.NewNagios(cfg.Render); err != nil {
		ui.ValidationErr("render", err.Error(), "")
		failed++
	} else {
		ui.ValidationOK("render", "templates parse")
		passed++
	}

	fmt.Fprintln(ui.Out)
	if failed == 0 {
		ui.Success(fmt.Sprintf("%d checks passed, 0 errors", passed))
		return nil
	}
	fmt.Fprintf(ui.Out, "%d checks passed, %d errors\n", passed, failed)
	return fmt.Errorf("%d validation errors", failed)
}
