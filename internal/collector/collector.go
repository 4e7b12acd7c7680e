package collector

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ThomasCrouzet/fleetmon/internal/config"
	"github.com/ThomasCrouzet/fleetmon/internal/model"
)

// CollectResult holds the result of a single collector run.
type CollectResult struct {
	Name    string
	Skipped bool
	Detail  string
	Err     error
}

// Collect configures every enabled collector, runs them concurrently and
// concatenates their records in registry order. Any failure aborts the run
// and cancels the collectors still in flight.
func Collect(ctx context.Context, cfg *config.Config) ([]model.InstanceRecord, []CollectResult, error) {
	rawSources := cfg.RawSources
	collectors := All()

	results := make([]CollectResult, len(collectors))
	enabled := make([]bool, len(collectors))

	for i, c := range collectors {
		meta := c.Metadata()
		results[i].Name = meta.DisplayName

		if !c.Enabled(rawSources) {
			results[i].Skipped = true
			continue
		}

		// Extract this collector's config section
		section, _ := rawSources[meta.ConfigKey].(map[string]any)
		if err := c.Configure(section); err != nil {
			cerr := &CollectorError{Collector: meta.DisplayName, Phase: "configure", Err: err}
			results[i].Err = cerr
			return nil, results[:i+1], cerr
		}
		enabled[i] = true
	}

	batches := make([][]model.InstanceRecord, len(collectors))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range collectors {
		if !enabled[i] {
			continue
		}
		i, c := i, c
		g.Go(func() error {
			meta := c.Metadata()
			recs, err := c.Collect(gctx)
			if err != nil {
				cerr := &CollectorError{Collector: meta.DisplayName, Phase: "collect", Err: err}
				results[i].Err = cerr
				return cerr
			}
			log.Debug().Str("collector", meta.Name).Int("records", len(recs)).Msg("collector finished")
			batches[i] = recs
			results[i].Detail = fmt.Sprintf("(%d records)", len(recs))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, results, err
	}

	var records []model.InstanceRecord
	for _, b := range batches {
		records = append(records, b...)
	}
	return records, results, nil
}
