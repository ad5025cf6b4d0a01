package zonecheck

import (
	"strings"

	"github.com/miekg/dns"
)

// verifyDS implements the DS-at-parent check of spec.md §4.8: for each
// algorithm the parent's DS RRset declares, the apex must publish a KSK
// DNSKEY whose computed digest matches.
func (v *Verifier) verifyDS(g *Group) {
	if v.pool == nil {
		return
	}

	ds, err := v.lookupApexDS(g.Owner)
	if err != nil {
		v.sink.Errorf("DS check - %s - could not fetch DS records from parent: %v", g.Owner, err)
		return
	}
	if len(ds) == 0 {
		v.sink.Infof("%s: no DS record at parent", g.Owner)
		return
	}

	var ksks []*dns.DNSKEY
	for _, rr := range g.RRs(dns.TypeDNSKEY) {
		if key, ok := rr.(*dns.DNSKEY); ok && key.Flags == 257 {
			ksks = append(ksks, key)
		}
	}

	for _, d := range ds {
		if !dsMatchesAnyKSK(d, ksks) {
			v.sink.Errorf("DS record with algorithm %s found, but no DNSKEY record with the same algorithm present.",
				dns.AlgorithmToString[d.Algorithm])
		}
	}
}

func dsMatchesAnyKSK(d *dns.DS, ksks []*dns.DNSKEY) bool {
	for _, key := range ksks {
		if key.Algorithm != d.Algorithm {
			continue
		}
		computed := key.ToDS(d.DigestType)
		if computed == nil {
			continue
		}
		if strings.EqualFold(computed.Digest, d.Digest) {
			return true
		}
	}
	return false
}

func (v *Verifier) lookupApexDS(apex string) ([]*dns.DS, error) {
	q := new(dns.Msg)
	q.SetQuestion(dns.CanonicalName(apex), dns.TypeDS)
	q.SetEdns0(4096, true)
	q.CheckingDisabled = true

	a, err := v.pool.Resolve(q)
	if err != nil {
		return nil, err
	}
	if a == nil || a.Rcode != dns.RcodeSuccess {
		return nil, nil
	}
	var ds []*dns.DS
	for _, rr := range a.Answer {
		if d, ok := rr.(*dns.DS); ok {
			ds = append(ds, d)
		}
	}
	return ds, nil
}
