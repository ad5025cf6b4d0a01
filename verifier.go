package zonecheck

import (
	"github.com/dnssecaudit/zonecheck/dnssec"
	"github.com/miekg/dns"
)

// Check is one of the eight independently-enableable policy checks
// spec.md §6 names as CLI/config tokens.
type Check string

const (
	CheckRRSIG   Check = "RRSIG"
	CheckRRSIGT  Check = "RRSIG_T"
	CheckRRSIGA  Check = "RRSIG_A"
	CheckRRSIGS  Check = "RRSIG_S"
	CheckNSEC    Check = "NSEC"
	CheckNSECS   Check = "NSEC_S"
	CheckTTL     Check = "TTL"
	CheckDS      Check = "DS"
)

// AllChecks is the full token set, used to validate --check/--nocheck.
var AllChecks = []Check{CheckRRSIG, CheckRRSIGT, CheckRRSIGA, CheckRRSIGS, CheckNSEC, CheckNSECS, CheckTTL, CheckDS}

// CheckSet is the enabled-check policy for one zone.
type CheckSet map[Check]bool

func (c CheckSet) has(chk Check) bool { return c[chk] }

// ZoneState is the cross-group state the Per-Group Verifier threads across
// a single zone pass: SOA-derived TTL bounds, the seen-NS/pending-glue
// sets, the NSEC3-presence-disable latch, and the signature-checking
// latch, all from spec.md §3 and §4.8.
type ZoneState struct {
	Apex string
	SOA  *dns.SOA

	MinSOA      uint32
	MaxSOA      uint32
	SOAMinimum  uint32
	soaComputed bool

	SeenNS      map[string]bool
	PendingGlue map[string]bool

	NSEC3PresenceDisabled bool
	HasTrustedKeys        bool

	TrustedKeys []*dns.DNSKEY
	Expected    []dnssec.ExpectedAlgorithm

	AlgorithmStats *Statistics
	NSECStats      *Statistics
}

// NewZoneState initializes cross-group state for a fresh zone pass.
func NewZoneState(apex string) *ZoneState {
	return &ZoneState{
		Apex:           apex,
		SeenNS:         make(map[string]bool),
		PendingGlue:    make(map[string]bool),
		HasTrustedKeys: true,
		AlgorithmStats: NewStatistics(),
		NSECStats:      NewStatistics(),
	}
}

// ComputeSOABounds derives min_soa/max_soa/soa_minimum once, on first SOA
// sighting (spec.md §4.8 TTL checks). Returns a WARNING condition the
// caller should report if min_soa < 600.
func (z *ZoneState) ComputeSOABounds(soa *dns.SOA) (warnLowMinSOA bool) {
	if z.soaComputed {
		return false
	}
	z.soaComputed = true
	z.SOA = soa

	vals := []uint32{soa.Refresh, soa.Retry, soa.Expire, soa.Minttl}
	min, max := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	z.MinSOA = min
	z.MaxSOA = max
	z.SOAMinimum = soa.Minttl
	return min < 600
}

// Verifier drives the Per-Group Verifier's checks against one group.
type Verifier struct {
	sink  *Sink
	clock *TimeOracle
	state *ZoneState
	pool  *ResolverPool
}

// NewVerifier builds a Verifier for one zone pass. pool is used only by
// the DS-at-parent check to query the apex's parent zone directly.
func NewVerifier(sink *Sink, clock *TimeOracle, state *ZoneState, pool *ResolverPool) *Verifier {
	return &Verifier{sink: sink, clock: clock, state: state, pool: pool}
}

// VerifyGroup dispatches every enabled check against g, in the order
// spec.md documents them (§4.8).
func (v *Verifier) VerifyGroup(g *Group, checks CheckSet, isApex bool) {
	if isApex {
		if g.NSECKind() == NSEC3 {
			v.state.NSEC3PresenceDisabled = true
		}
		if checks.has(CheckDS) {
			v.verifyDS(g)
		}
	}

	if checks.has(CheckRRSIG) && v.state.HasTrustedKeys {
		v.verifyRRSIGFull(g, checks.has(CheckRRSIGT))
	} else if checks.has(CheckRRSIGT) {
		v.verifyRRSIGTimeOnly(g)
	}

	if checks.has(CheckRRSIGA) && v.state.HasTrustedKeys {
		v.verifyAlgorithmCoverage(g)
	}

	if checks.has(CheckRRSIGS) {
		v.collectAlgorithmStats(g)
	}

	if checks.has(CheckNSECS) {
		v.state.NSECStats.IncOne(g.NSECKind().String())
	}

	if checks.has(CheckTTL) {
		v.verifyTTL(g)
	}

	if checks.has(CheckNSEC) {
		v.verifyNSEC(g)
	}
}

// FinishZone emits end-of-zone findings: any entry remaining in
// pending-glue is an ERROR (spec.md §4.9 step 6). The statistics banners
// are printed separately by the Pipeline Driver's printStatistics.
func (v *Verifier) FinishZone() {
	for owner := range v.state.PendingGlue {
		if v.sink != nil {
			v.sink.Errorf("%s: NSEC type record not present (unresolved glue)", owner)
		}
	}
}
