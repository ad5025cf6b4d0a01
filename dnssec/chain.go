// Package dnssec implements the Chain-of-Trust Resolver: given a domain and
// a seed trust-anchor set, it climbs toward the root via DS records to
// produce a validated DNSKEY set for that domain, adapted from the
// teacher's dnssec.Validator (buildChainOfTrust) and its root-level
// dnssec-backend.go (AuthenticationChain, NSEC/NSEC3 denial proofs).
package dnssec

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// Status reports how a chain-of-trust resolution concluded.
type Status int

const (
	OK Status = iota
	NoTrustedKey
	NoTrustedDs
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case NoTrustedDs:
		return "NoTrustedDs"
	default:
		return "NoTrustedKey"
	}
}

var (
	ErrNoSignature      = errors.New("dnssec: no RRSIG for RRset")
	ErrNoKey            = errors.New("dnssec: no matching DNSKEY")
	ErrSignatureInvalid = errors.New("dnssec: signature verification failed")
	ErrDSMismatch       = errors.New("dnssec: DNSKEY doesn't match DS")
)

// AnchorSet is the Trust Anchor Set (spec.md §3): an unordered bag of
// DNSKEY and/or DS records used to seed validation at some owner name.
type AnchorSet struct {
	Keys []*dns.DNSKEY
	DS   []*dns.DS
}

// Empty reports whether the anchor set carries no material at all.
func (a AnchorSet) Empty() bool { return len(a.Keys) == 0 && len(a.DS) == 0 }

// queryFunc is the narrow capability the Chain-of-Trust Resolver needs from
// a Resolver Pool: fail-over across configured name servers is already
// implemented by the pool's Resolve method, so the resolver only needs to
// be called, not orchestrated, here.
type queryFunc func(q *dns.Msg) (*dns.Msg, error)

// Resolver mirrors the narrow slice of zonecheck.ResolverPool this package
// needs, letting it stay free of a root-package import.
type Resolver interface {
	Resolve(q *dns.Msg) (*dns.Msg, error)
}

// Chain is the Chain-of-Trust Resolver. One Chain is built per zone pass;
// its trust cache is therefore naturally scoped to a single zone.
type Chain struct {
	resolve queryFunc
	cache   *trustCache
	now     func() time.Time
}

// NewChain builds a Chain-of-Trust Resolver querying through resolver.
func NewChain(resolver Resolver, now func() time.Time) *Chain {
	if now == nil {
		now = time.Now
	}
	return &Chain{resolve: resolver.Resolve, cache: newTrustCache(now), now: now}
}

// Resolve implements the five-step algorithm of spec.md §4.7. seed is the
// currently trusted anchor set for domain's ancestor chain (at the top
// level, the configured root/zone anchors); the returned AnchorSet is the
// validated key set for domain, which may be empty on NoTrustedKey/
// NoTrustedDs.
func (c *Chain) Resolve(domain string, seed AnchorSet) (Status, AnchorSet) {
	domain = dns.CanonicalName(domain)

	// The Trusted-Key Cache (spec.md §3): once a domain's DNSKEY set has
	// validated against some seed, a later Resolve of the same domain on
	// this Chain reuses it instead of re-querying and re-verifying.
	if zsk, ksk := c.cache.lookupDNSKEY(domain); zsk != nil || ksk != nil {
		return OK, AnchorSet{Keys: append(append([]*dns.DNSKEY{}, zsk...), ksk...)}
	}

	zsk, ksk, sigs, err := c.lookupDNSKEY(domain)
	if err == nil {
		allKeys := append(append([]*dns.DNSKEY{}, zsk...), ksk...)
		if validated := c.validateDNSKEYSet(allKeys, sigs, domain, seed); len(validated) > 0 {
			c.cache.rememberDNSKEY(domain, allKeys)
			return OK, AnchorSet{Keys: validated}
		}
	}

	if domain == "." {
		return NoTrustedKey, AnchorSet{}
	}

	parent := parentZone(domain)
	_, parentKeys := c.Resolve(parent, seed)
	if parentKeys.Empty() {
		return NoTrustedKey, AnchorSet{}
	}

	ds := c.cache.lookupDS(domain)
	if ds == nil {
		var dsSigs []*dns.RRSIG
		ds, dsSigs, err = c.lookupDS(domain)
		if err != nil || len(ds) == 0 {
			return NoTrustedDs, AnchorSet{}
		}
		if !c.validateDSSet(ds, dsSigs, domain, parentKeys) {
			return NoTrustedDs, AnchorSet{}
		}
		c.cache.rememberDS(domain, ds...)
	}

	return c.Resolve(domain, AnchorSet{DS: ds})
}

// validateDNSKEYSet checks the DNSKEY RRset at domain against seed: either
// directly (seed holds a DNSKEY matching key tag/algorithm that signed the
// set) or via DS (seed holds a DS whose digest matches a KSK in the set,
// and that KSK's self-signature over the DNSKEY RRset verifies).
func (c *Chain) validateDNSKEYSet(keys []*dns.DNSKEY, sigs []*dns.RRSIG, domain string, seed AnchorSet) []*dns.DNSKEY {
	if len(keys) == 0 {
		return nil
	}
	allRR := make([]dns.RR, len(keys))
	for i, k := range keys {
		allRR[i] = k
	}

	var dnskeySig *dns.RRSIG
	for _, s := range sigs {
		if s.TypeCovered == dns.TypeDNSKEY && dns.CanonicalName(s.SignerName) == domain {
			dnskeySig = s
			break
		}
	}
	if dnskeySig == nil {
		return nil
	}

	if len(seed.Keys) > 0 {
		if verifyRRSIG(dnskeySig, seed.Keys, allRR) == nil {
			return keys
		}
	}
	if len(seed.DS) > 0 {
		var ksks []*dns.DNSKEY
		for _, k := range keys {
			if k.Flags == 257 {
				ksks = append(ksks, k)
			}
		}
		if verifyDNSKEYWithDS(ksks, seed.DS) == nil && verifyRRSIG(dnskeySig, ksks, allRR) == nil {
			return keys
		}
	}
	return nil
}

// validateDSSet checks the DS RRset at domain against the parent's
// validated ZSK/KSK set.
func (c *Chain) validateDSSet(ds []*dns.DS, sigs []*dns.RRSIG, domain string, parentKeys AnchorSet) bool {
	allRR := make([]dns.RR, len(ds))
	for i, d := range ds {
		allRR[i] = d
	}
	for _, sig := range sigs {
		if sig.TypeCovered != dns.TypeDS {
			continue
		}
		if verifyRRSIG(sig, parentKeys.Keys, allRR) == nil {
			return true
		}
	}
	return false
}

func (c *Chain) lookupDNSKEY(name string) (zsk, ksk []*dns.DNSKEY, sigs []*dns.RRSIG, err error) {
	q := new(dns.Msg)
	q.SetQuestion(dns.CanonicalName(name), dns.TypeDNSKEY)
	q.SetEdns0(4096, true)
	q.CheckingDisabled = true
	a, err := c.resolve(q)
	if err != nil {
		return nil, nil, nil, err
	}
	if a == nil || a.Rcode != dns.RcodeSuccess {
		return nil, nil, nil, fmt.Errorf("DNSKEY lookup for %q failed", name)
	}
	for _, rr := range a.Answer {
		switch r := rr.(type) {
		case *dns.DNSKEY:
			if r.Flags == 257 {
				ksk = append(ksk, r)
			} else if r.Flags == 256 {
				zsk = append(zsk, r)
			}
		case *dns.RRSIG:
			sigs = append(sigs, r)
		}
	}
	return zsk, ksk, sigs, nil
}

func (c *Chain) lookupDS(name string) ([]*dns.DS, []*dns.RRSIG, error) {
	q := new(dns.Msg)
	q.SetQuestion(dns.CanonicalName(name), dns.TypeDS)
	q.SetEdns0(4096, true)
	q.CheckingDisabled = true
	a, err := c.resolve(q)
	if err != nil {
		return nil, nil, err
	}
	if a == nil || a.Rcode != dns.RcodeSuccess {
		return nil, nil, nil
	}
	var ds []*dns.DS
	var sigs []*dns.RRSIG
	for _, rr := range a.Answer {
		switch r := rr.(type) {
		case *dns.DS:
			ds = append(ds, r)
		case *dns.RRSIG:
			if r.TypeCovered == dns.TypeDS {
				sigs = append(sigs, r)
			}
		}
	}
	return ds, sigs, nil
}

// parentZone returns the parent of name: "example.com." -> "com.", "com." -> ".".
func parentZone(name string) string {
	name = dns.CanonicalName(name)
	if name == "." {
		return "."
	}
	_, parent, found := strings.Cut(name, ".")
	if !found || parent == "" {
		return "."
	}
	return parent
}

func findKeysByTag(keys []*dns.DNSKEY, tag uint16, alg uint8) []*dns.DNSKEY {
	var out []*dns.DNSKEY
	for _, k := range keys {
		if k.KeyTag() == tag && k.Algorithm == alg {
			out = append(out, k)
		}
	}
	return out
}

func verifyRRSIG(sig *dns.RRSIG, keys []*dns.DNSKEY, rrset []dns.RR) error {
	matching := findKeysByTag(keys, sig.KeyTag, sig.Algorithm)
	if len(matching) == 0 {
		return fmt.Errorf("%w: tag=%d alg=%d", ErrNoKey, sig.KeyTag, sig.Algorithm)
	}
	var lastErr error
	for _, key := range matching {
		if err := sig.Verify(key, rrset); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	return fmt.Errorf("%w: %v", ErrSignatureInvalid, lastErr)
}

func verifyDNSKEYWithDS(ksk []*dns.DNSKEY, ds []*dns.DS) error {
	for _, d := range ds {
		for _, key := range ksk {
			computed := key.ToDS(d.DigestType)
			if computed == nil {
				continue
			}
			if strings.EqualFold(computed.Digest, d.Digest) {
				return nil
			}
		}
	}
	return ErrDSMismatch
}

// ExpectedAlgorithm is one (algorithm, flags) pair declared by an apex
// DNSKEY, used by verifier_rrsig.go's algorithm-coverage check.
type ExpectedAlgorithm struct {
	Algorithm uint8
	Flags     uint16
}

// ExpectedAlgorithms derives the expected algorithm list from a validated
// key set: every (algorithm, flags) pair covering a DNSKEY at the apex
// (spec.md §4.7, last paragraph).
func ExpectedAlgorithms(keys []*dns.DNSKEY) []ExpectedAlgorithm {
	seen := make(map[ExpectedAlgorithm]bool)
	var out []ExpectedAlgorithm
	for _, k := range keys {
		pair := ExpectedAlgorithm{Algorithm: k.Algorithm, Flags: k.Flags}
		if !seen[pair] {
			seen[pair] = true
			out = append(out, pair)
		}
	}
	return out
}
