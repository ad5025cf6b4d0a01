package zonecheck

import (
	"github.com/dnssecaudit/zonecheck/dnssec"
	"github.com/miekg/dns"
)

// ResolveTrustedKeys runs the Chain-of-Trust Resolver for domain and
// applies the caller-side rule from spec.md §4.7: local anchors whose
// owner equals domain always count, regardless of the chain's own
// verdict; a non-OK status with at least one surviving key downgrades to
// WARNING, while zero surviving keys is CRITICAL and disables signature
// checking for the remainder of the zone (the returned hasTrustedKeys
// latch).
func ResolveTrustedKeys(chain *dnssec.Chain, domain string, anchors dnssec.AnchorSet, sink *Sink) (keys []*dns.DNSKEY, hasTrustedKeys bool) {
	status, validated := chain.Resolve(domain, anchors)

	keys = append(keys, validated.Keys...)
	seen := make(map[uint16]bool)
	for _, k := range keys {
		seen[k.KeyTag()] = true
	}
	for _, k := range anchors.Keys {
		if dns.CanonicalName(k.Header().Name) != domain {
			continue
		}
		if !seen[k.KeyTag()] {
			seen[k.KeyTag()] = true
			keys = append(keys, k)
		}
	}

	if len(keys) > 0 {
		if status != dnssec.OK && sink != nil {
			sink.Warningf("chain of trust for %s concluded %s but local anchors provide trusted keys", domain, status)
		}
		return keys, true
	}
	if sink != nil {
		sink.Criticalf("no trusted DNSKEY for %s (%s); signature checks disabled for this zone", domain, status)
	}
	return nil, false
}
