package zonecheck

import (
	"errors"
	"strings"
	"time"

	"github.com/dnssecaudit/zonecheck/dnssec"
	"github.com/miekg/dns"
)

// PipelineDriver orchestrates one zone end-to-end (spec.md §4.9), grounded
// on original Main.py's per-zone loop: build the resolver pool, start the
// zone source, gate on the serial-number store, resolve trust anchors, and
// pump groups through the Verifier until LoadingDone.
type PipelineDriver struct {
	sink *Sink
	now  func() time.Time
}

// NewPipelineDriver builds a driver reporting through sink. now is the live
// clock used for time oracle "now"/"run" modes; pass nil for time.Now.
func NewPipelineDriver(sink *Sink, now func() time.Time) *PipelineDriver {
	if now == nil {
		now = time.Now
	}
	return &PipelineDriver{sink: sink, now: now}
}

// RunZone executes the six-step pipeline for one zone. It never returns an
// error for recoverable per-zone failures (FileError/AxfrError/
// ResolverError/missing-SOA) — those are reported as CRITICAL findings and
// the zone is simply skipped, matching spec.md §4.9 step 2-3's "log CRITICAL
// and proceed to next zone" policy; a serial number that has not advanced
// skips the zone with an INFO finding (step 4). A non-nil return means a
// programmer-facing configuration mistake (bad time literal) that should
// stop the whole run.
func (d *PipelineDriver) RunZone(cfg *Config, zc *ZoneConfig) error {
	if !zc.Enabled {
		return nil
	}

	clock, err := NewTimeOracle(cfg.General.Time, d.now)
	if err != nil {
		return err
	}

	pool := NewResolverPool()
	tsigName, tsigAlg, tsigKey := "", "", ""
	if zc.Key != "" {
		if n, a, k, ok := parseTSIG(zc.Key); ok {
			tsigName, tsigAlg, tsigKey = n, a, k
		} else {
			d.sink.Criticalf("zone %s: malformed key %q, disabling TSIG", zc.Name, zc.Key)
		}
	}
	servers := zc.Resolver
	explicit := len(servers) > 0
	if !explicit {
		servers = hostDefaultResolvers()
	}
	if len(servers) > 0 {
		if err := pool.SetServers(d.sink, servers, tsigName, tsigAlg, tsigKey); err != nil {
			d.sink.Criticalf("zone %s: %v", zc.Name, err)
			if explicit {
				return nil
			}
			// Host resolver config didn't parse into usable servers; DNS-
			// dependent checks (chain of trust, DS, AXFR) will fail per-group
			// rather than aborting a zone that may only need the File source.
		}
	}

	var source Source
	switch zc.Type {
	case "axfr":
		source = NewAxfrSource(NewBuffer(zc.BufferSize, zc.BufferWarn, d.sink))
	default:
		source = NewFileSource(NewBuffer(zc.BufferSize, zc.BufferWarn, d.sink))
	}

	if err := source.Start(zc.Zone, pool); err != nil {
		d.sink.Criticalf("zone %s: %v", zc.Name, err)
		return nil
	}

	first, err := source.NextGroup()
	if err != nil {
		d.sink.Criticalf("zone %s: %v", zc.Name, err)
		return nil
	}
	if source.SOA() == nil {
		d.sink.Criticalf("zone %s: no SOA observed, skipping", zc.Name)
		return nil
	}

	if zc.SNCheck {
		gate := NewSerialGate(cfg.SerialPath)
		isNew, err := gate.IsNew(zc.Name, source.SOA().Serial, true)
		if err != nil {
			d.sink.Criticalf("zone %s: serial-number gate: %v", zc.Name, err)
			return nil
		}
		if !isNew {
			d.sink.Infof("zone %s: serial number unchanged, skipping", zc.Name)
			return nil
		}
	}

	anchors := LoadTrustAnchors(d.sink, cfg.AnchorDir, zc.Trust)
	chain := dnssec.NewChain(pool, d.now)
	keys, hasKeys := ResolveTrustedKeys(chain, source.Apex(), anchors, d.sink)

	state := NewZoneState(source.Apex())
	state.TrustedKeys = keys
	state.HasTrustedKeys = hasKeys
	state.Expected = dnssec.ExpectedAlgorithms(keys)

	verifier := NewVerifier(d.sink, clock, state, pool)
	checks := zc.CheckSetFor()

	group := first
	for {
		isApex := group.Owner == source.Apex()
		verifier.VerifyGroup(group, checks, isApex)

		group, err = source.NextGroup()
		if err != nil {
			if errors.Is(err, LoadingDone) {
				break
			}
			d.sink.Criticalf("zone %s: %v", zc.Name, err)
			break
		}
	}

	verifier.FinishZone()
	printStatistics(d.sink, state)
	return nil
}

// printStatistics emits the two bracketed statistics banners spec.md §6
// describes, on the primary output stream (stdout), independent of
// --level: this is the same print/logging split the original tool draws
// between nsec_log_print/alg_log_print (stdout) and its CRITICAL/ERROR/...
// findings (stderr, via logging).
func printStatistics(sink *Sink, state *ZoneState) {
	printBanner(sink, " Statistics - NSEC usage ", state.NSECStats)
	printBanner(sink, " Statistics - RRSIG signing algorithm usage ", state.AlgorithmStats)
}

func printBanner(sink *Sink, title string, stats *Statistics) {
	sink.Statf("%s", ruledBanner(title))
	for _, e := range stats.Entries() {
		if e.HasPercent() {
			sink.Statf("%s (%dx, %.2f%%)", e.Name, e.Value, e.Percent)
		} else {
			sink.Statf("%s (%dx)", e.Name, e.Value)
		}
	}
}

// ruledBanner centers title in an 80-column line padded with '-', the Go
// equivalent of the original's '{0:-^80}'.format(title). title carries its
// own leading/trailing space, e.g. " Statistics - NSEC usage ". Extra
// padding when the fill doesn't divide evenly goes on the right, matching
// Python's str.format centering.
func ruledBanner(title string) string {
	const width = 80
	pad := width - len(title)
	if pad <= 0 {
		return title
	}
	left := pad / 2
	right := pad - left
	return strings.Repeat("-", left) + title + strings.Repeat("-", right)
}

// hostDefaultResolvers reads the system's /etc/resolv.conf the way a plain
// stub resolver would, for zones with no explicit --resolver/resolver=
// (spec.md §6: "default = host resolver config").
func hostDefaultResolvers() []string {
	cc, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || cc == nil {
		return nil
	}
	return cc.Servers
}
