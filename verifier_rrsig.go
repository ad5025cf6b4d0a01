package zonecheck

import (
	"github.com/dnssecaudit/zonecheck/dnssec"
	"github.com/miekg/dns"
)

func (v *Verifier) keyByTag(tag uint16) *dns.DNSKEY {
	for _, k := range v.state.TrustedKeys {
		if k.KeyTag() == tag {
			return k
		}
	}
	return nil
}

// verifyRRSIGFull implements the combined RRSIG (+ optional RRSIG_T)
// check of spec.md §4.8.
func (v *Verifier) verifyRRSIGFull(g *Group, withTime bool) {
	for _, rtype := range g.Types() {
		rrset := g.RRs(rtype)
		sigs := g.RRSIGs(rtype)

		if len(sigs) == 0 {
			v.sink.Infof("%s %s: not secured (0 RRSIGs)", g.Owner, dns.TypeToString[rtype])
			continue
		}

		var validTags []uint16
		var invalid int
		for _, sig := range sigs {
			ok := v.verifyOneRRSIG(g.Owner, rrset, sig)
			if ok && withTime {
				class := v.clock.Classify(int64(sig.Inception), int64(sig.Expiration))
				if class != Valid {
					ok = false
				}
			}
			if ok {
				validTags = append(validTags, sig.KeyTag)
			} else {
				invalid++
			}
		}

		switch {
		case invalid == len(sigs):
			v.sink.Errorf("Signatures check - %s %s - %d RRs, %d RRSIGs, 0 valid",
				g.Owner, dns.TypeToString[rtype], len(rrset), len(sigs))
		case invalid == 0:
			v.sink.Infof("Signatures check - %s %s - %d RRs, %d RRSIGs, %d valid",
				g.Owner, dns.TypeToString[rtype], len(rrset), len(sigs), len(sigs))
		default:
			v.sink.Infof("Signatures check - %s %s - %d valid of %d RRSIGs, key tags %v",
				g.Owner, dns.TypeToString[rtype], len(sigs)-invalid, len(sigs), validTags)
		}
	}
}

// verifyOneRRSIG applies the signer-name and cryptographic checks.
func (v *Verifier) verifyOneRRSIG(owner string, rrset []dns.RR, sig *dns.RRSIG) bool {
	if dns.CanonicalName(sig.SignerName) != v.state.Apex {
		v.sink.Errorf("%s: RRSIG signer name %q does not match apex %q", owner, sig.SignerName, v.state.Apex)
		return false
	}
	key := v.keyByTag(sig.KeyTag)
	if key == nil {
		return false
	}
	return sig.Verify(key, rrset) == nil
}

// verifyRRSIGTimeOnly implements RRSIG_T when RRSIG itself is disabled
// (spec.md §4.8 "Time-only check").
func (v *Verifier) verifyRRSIGTimeOnly(g *Group) {
	for _, rtype := range g.CoveredTypes() {
		sigs := g.RRSIGs(rtype)
		var total, valid, old, future int
		for _, sig := range sigs {
			total++
			switch v.clock.Classify(int64(sig.Inception), int64(sig.Expiration)) {
			case Valid:
				valid++
			case Future:
				future++
			default:
				old++
			}
		}
		if valid == 0 {
			v.sink.Errorf("%s %s: 0 valid of %d RRSIGs (valid=%d old=%d future=%d)",
				g.Owner, dns.TypeToString[rtype], total, valid, old, future)
		} else {
			v.sink.Infof("%s %s: %d valid of %d RRSIGs", g.Owner, dns.TypeToString[rtype], valid, total)
		}
	}
}

// verifyAlgorithmCoverage implements RRSIG_A (spec.md §4.8).
func (v *Verifier) verifyAlgorithmCoverage(g *Group) {
	for _, rtype := range g.CoveredTypes() {
		sigs := g.RRSIGs(rtype)
		used := make(map[uint8]bool)
		for _, s := range sigs {
			used[s.Algorithm] = true
		}

		for alg := range used {
			if !v.isExpectedAlgorithm(alg, rtype) {
				v.sink.Warningf("%s %s: algorithm %s not expected", g.Owner, dns.TypeToString[rtype], dns.AlgorithmToString[alg])
			}
		}

		for _, exp := range v.state.Expected {
			if rtype == dns.TypeDNSKEY {
				if !used[exp.Algorithm] {
					if v.loneZSKOnlyUnreported(exp, rtype) {
						continue
					}
					v.sink.Warningf("%s %s: algorithm %s not used", g.Owner, dns.TypeToString[rtype], dns.AlgorithmToString[exp.Algorithm])
				}
				continue
			}
			if exp.Flags != 256 {
				continue
			}
			if !used[exp.Algorithm] {
				if v.loneZSKOnlyUnreported(exp, rtype) {
					continue
				}
				v.sink.Warningf("%s %s: algorithm %s not used", g.Owner, dns.TypeToString[rtype], dns.AlgorithmToString[exp.Algorithm])
			}
		}
	}
}

// loneZSKOnlyUnreported implements the special case: a lone ZSK-only
// expected entry is never reported as "not used" unless the group also
// carries a DNSKEY RRSIG to compare it against.
func (v *Verifier) loneZSKOnlyUnreported(exp dnssec.ExpectedAlgorithm, rtype uint16) bool {
	if exp.Flags != 256 {
		return false
	}
	zskOnly := true
	for _, e := range v.state.Expected {
		if e.Flags == 257 {
			zskOnly = false
			break
		}
	}
	return zskOnly && rtype != dns.TypeDNSKEY
}

func (v *Verifier) isExpectedAlgorithm(alg uint8, rtype uint16) bool {
	for _, e := range v.state.Expected {
		if e.Algorithm != alg {
			continue
		}
		if rtype == dns.TypeDNSKEY {
			return true
		}
		if e.Flags == 256 {
			return true
		}
	}
	return false
}

// collectAlgorithmStats implements RRSIG_S.
func (v *Verifier) collectAlgorithmStats(g *Group) {
	for _, rtype := range g.CoveredTypes() {
		for _, sig := range g.RRSIGs(rtype) {
			v.state.AlgorithmStats.IncOne(dns.AlgorithmToString[sig.Algorithm])
		}
	}
}
