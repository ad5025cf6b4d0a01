package zonecheck

import "github.com/miekg/dns"

// verifyNSEC implements the NSEC record checks of spec.md §4.8: bitmap
// coverage, presence (with seen-NS/pending-glue bookkeeping), and the
// NSEC3-presence-never-reported rule.
func (v *Verifier) verifyNSEC(g *Group) {
	v.registerNSTargets(g)
	v.checkBitmap(g)
	v.checkPresence(g)
}

// registerNSTargets maintains the Seen-NS/Pending-Glue sets (spec.md §3):
// NS targets are pushed when a group contains NS records, matching and
// clearing any pending-glue entry already waiting for that name.
func (v *Verifier) registerNSTargets(g *Group) {
	for _, rr := range g.RRs(dns.TypeNS) {
		ns, ok := rr.(*dns.NS)
		if !ok {
			continue
		}
		target := dns.CanonicalName(ns.Ns)
		if v.state.PendingGlue[target] {
			delete(v.state.PendingGlue, target)
		} else {
			v.state.SeenNS[target] = true
		}
	}
}

// checkBitmap implements the bitmap check. NSEC always expects RRSIG in
// the bitmap; NSEC3 expects RRSIG only over a secured delegation (DS or
// SOA present at the owner).
func (v *Verifier) checkBitmap(g *Group) {
	kind := g.NSECKind()
	if kind != NSEC && kind != NSEC3 {
		return
	}

	expected := make(map[uint16]bool)
	for _, t := range g.Types() {
		expected[t] = true
	}
	switch kind {
	case NSEC:
		expected[dns.TypeRRSIG] = true
	case NSEC3:
		if expected[dns.TypeDS] || expected[dns.TypeSOA] {
			expected[dns.TypeRRSIG] = true
		}
	}

	actual := make(map[uint16]bool)
	for _, t := range bitmapTypes(g.NSEC()) {
		actual[t] = true
	}

	ok := true
	for t := range expected {
		if !actual[t] {
			ok = false
			v.sink.Errorf("%s %s type not present in NSEC", g.Owner, dns.TypeToString[t])
		}
	}
	for t := range actual {
		if !expected[t] {
			ok = false
			v.sink.Errorf("%s %s type unexpectedly present in NSEC", g.Owner, dns.TypeToString[t])
		}
	}
	if ok {
		v.sink.Infof("%s: NSEC bitmap OK", g.Owner)
	}
}

func bitmapTypes(rr dns.RR) []uint16 {
	switch t := rr.(type) {
	case *dns.NSEC:
		return t.TypeBitMap
	case *dns.NSEC3:
		return t.TypeBitMap
	default:
		return nil
	}
}

// checkPresence implements the presence check. Once a zone has been
// observed to use NSEC3 at the apex, presence reporting is disabled
// entirely for the rest of the zone (spec.md §4.8: "library limitation").
func (v *Verifier) checkPresence(g *Group) {
	if v.state.NSEC3PresenceDisabled {
		return
	}
	if g.NSECKind() != NotSecured {
		return
	}
	if g.HasNSOnly() {
		return
	}
	if onlyAddressTypes(g) {
		owner := g.Owner
		if v.state.SeenNS[owner] {
			delete(v.state.SeenNS, owner)
		} else {
			v.state.PendingGlue[owner] = true
		}
		return
	}
	v.sink.Errorf("%s: NSEC type record not present", g.Owner)
}

func onlyAddressTypes(g *Group) bool {
	types := g.Types()
	if len(types) == 0 {
		return false
	}
	for _, t := range types {
		if t != dns.TypeA && t != dns.TypeAAAA {
			return false
		}
	}
	return true
}
