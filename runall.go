package zonecheck

import "golang.org/x/sync/errgroup"

// AuditZones runs the Pipeline Driver over every configured zone. When
// cfg.Parallel > 1, zones are audited concurrently through an
// errgroup.Group bounded to that width; each zone owns its own Buffer and
// ZoneState, so concurrent zones share nothing but the Sink and the
// serial-number store, both already safe for concurrent use.
func AuditZones(driver *PipelineDriver, cfg *Config, sink *Sink) error {
	if cfg.Parallel <= 1 || len(cfg.Zones) <= 1 {
		for _, zc := range cfg.Zones {
			if err := driver.RunZone(cfg, zc); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(cfg.Parallel)
	for _, zc := range cfg.Zones {
		zc := zc
		g.Go(func() error {
			return driver.RunZone(cfg, zc)
		})
	}
	return g.Wait()
}
