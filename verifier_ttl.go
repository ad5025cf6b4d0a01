package zonecheck

import "github.com/miekg/dns"

// verifyTTL implements the TTL checks of spec.md §4.8, grounded on
// ZoneChecker.py's verify_ttls/verify_nsec_min_ttl/verify_rrsigs_remaining/
// verify_rrsigs_ttl. The zone-level min_soa/max_soa bounds are computed
// once, on the first group carrying an SOA record.
func (v *Verifier) verifyTTL(g *Group) {
	v.ensureSOABounds(g)

	if nsec := g.NSEC(); nsec != nil {
		if nsec.Header().Ttl != v.state.SOAMinimum {
			v.sink.Warningf("%s: NSEC record has TTL %d, should be the same as SOA minimum TTL field (%d)",
				g.Owner, nsec.Header().Ttl, v.state.SOAMinimum)
		}
	}

	for _, rtype := range g.CoveredTypes() {
		v.verifyRemaining(g, rtype)
		v.verifyRRSIGTTLConsistency(g, rtype)
	}
}

// ensureSOABounds computes the zone-wide min_soa/max_soa/soa_minimum on
// first sighting of the SOA record, warning once if min_soa < 600.
func (v *Verifier) ensureSOABounds(g *Group) {
	if v.state.soaComputed {
		return
	}
	soaRRs := g.RRs(dns.TypeSOA)
	if len(soaRRs) == 0 {
		return
	}
	soa, ok := soaRRs[0].(*dns.SOA)
	if !ok {
		return
	}
	if v.state.ComputeSOABounds(soa) {
		v.sink.Warningf("minimum TTL from SOA should not be lower than 600s, current value is %d", v.state.MinSOA)
	}
}

// verifyRemaining warns when the longest-remaining-validity RRSIG of a
// type still falls under the zone's max_soa, meaning every signature of
// that type will expire before a cached record at max TTL does.
func (v *Verifier) verifyRemaining(g *Group, rtype uint16) {
	sigs := g.RRSIGs(rtype)
	var maxRemaining int64
	for _, sig := range sigs {
		if r := v.clock.Remaining(int64(sig.Expiration)); r > maxRemaining {
			maxRemaining = r
		}
	}
	if maxRemaining < int64(v.state.MaxSOA) {
		v.sink.Warningf("%s %s: remaining validity time of RRSIG is too low (%d < %d)",
			g.Owner, dns.TypeToString[rtype], maxRemaining, v.state.MaxSOA)
	}
}

// verifyRRSIGTTLConsistency checks that each RRSIG's own TTL does not
// exceed its total validity window, and that at least one covered RR matches both
// the RRSIG's TTL and its original TTL.
func (v *Verifier) verifyRRSIGTTLConsistency(g *Group, rtype uint16) {
	covered := g.RRs(rtype)
	for _, sig := range g.RRSIGs(rtype) {
		if int64(sig.Header().Ttl) > int64(sig.Expiration)-int64(sig.Inception) {
			v.sink.Warningf("%s %s: TTL of the RRSIG record should be lower than the total validity time",
				g.Owner, dns.TypeToString[rtype])
		}

		var validTTL, validOrigTTL int
		for _, rr := range covered {
			if rr.Header().Ttl == sig.Header().Ttl {
				validTTL++
			}
			if rr.Header().Ttl == sig.OrigTtl {
				validOrigTTL++
			}
		}
		if validTTL == 0 {
			v.sink.Warningf("%s %s: TTL of RRSIG does not match TTL of RR it covers", g.Owner, dns.TypeToString[rtype])
		}
		if validOrigTTL == 0 {
			v.sink.Warningf("%s %s: Original TTL of RRSIG does not match TTL of RR it covers", g.Owner, dns.TypeToString[rtype])
		}
	}
}
