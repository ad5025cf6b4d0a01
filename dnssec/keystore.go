package dnssec

import (
	"math"
	"sync"
	"time"

	"github.com/miekg/dns"
)

// trustCache is the Trusted-Key Cache spec.md §3 describes: validated
// DNSKEY/DS material for a domain, held only until the shortest TTL among
// the records that produced it expires. One Chain owns exactly one
// trustCache, scoped to a single zone pass, so a domain resolved again on
// the same Chain is served from memory instead of re-queried and
// re-verified.
type trustCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	now     func() time.Time
}

// cacheEntry holds the cached DNSKEY and DS material for one domain name.
type cacheEntry struct {
	mu      sync.RWMutex
	dnskeys *cachedDNSKEYs
	ds      *cachedDS
}

func (e *cacheEntry) storeDS(c *cachedDS) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ds = c
}

func (e *cacheEntry) storeDNSKEY(c *cachedDNSKEYs) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dnskeys = c
}

type cachedDNSKEYs struct {
	expires time.Time
	zsk     []*dns.DNSKEY
	ksk     []*dns.DNSKEY
}

type cachedDS struct {
	expires time.Time
	records []*dns.DS
}

func newTrustCache(now func() time.Time) *trustCache {
	return &trustCache{
		entries: make(map[string]*cacheEntry),
		now:     now,
	}
}

// rememberDS caches a validated DS RRset for domain until the lowest TTL
// among its records expires.
func (c *trustCache) rememberDS(domain string, records ...*dns.DS) {
	rrs := make([]dns.RR, len(records))
	for i, d := range records {
		rrs[i] = d
	}
	entry := c.entryFor(domain)
	entry.storeDS(&cachedDS{
		expires: c.now().Add(time.Duration(ttlFloor(rrs)) * time.Second),
		records: records,
	})
}

// rememberDNSKEY caches a validated DNSKEY RRset for domain, split into its
// ZSK (flags 256) and KSK (flags 257) halves, until the lowest TTL among the
// keys expires.
func (c *trustCache) rememberDNSKEY(domain string, keys []*dns.DNSKEY) {
	var zsk, ksk []*dns.DNSKEY
	rrs := make([]dns.RR, len(keys))
	for i, k := range keys {
		rrs[i] = k
		switch k.Flags {
		case 257:
			ksk = append(ksk, k)
		case 256:
			zsk = append(zsk, k)
		}
	}
	entry := c.entryFor(domain)
	entry.storeDNSKEY(&cachedDNSKEYs{
		expires: c.now().Add(time.Duration(ttlFloor(rrs)) * time.Second),
		zsk:     zsk,
		ksk:     ksk,
	})
}

// lookupDNSKEY returns the cached ZSK/KSK split for domain, or two nil
// slices on a cache miss or expiry.
func (c *trustCache) lookupDNSKEY(domain string) (zsk, ksk []*dns.DNSKEY) {
	entry, ok := c.find(domain)
	if !ok {
		return nil, nil
	}
	entry.mu.RLock()
	defer entry.mu.RUnlock()
	if entry.dnskeys == nil || c.now().After(entry.dnskeys.expires) {
		return nil, nil
	}
	return entry.dnskeys.zsk, entry.dnskeys.ksk
}

// lookupDS returns the cached DS RRset for domain, or nil on a cache miss
// or expiry.
func (c *trustCache) lookupDS(domain string) []*dns.DS {
	entry, ok := c.find(domain)
	if !ok {
		return nil
	}
	entry.mu.RLock()
	defer entry.mu.RUnlock()
	if entry.ds == nil || c.now().After(entry.ds.expires) {
		return nil
	}
	return entry.ds.records
}

func (c *trustCache) find(domain string) (*cacheEntry, bool) {
	key := dns.CanonicalName(domain)
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// entryFor returns the cache entry for domain, creating an empty one if
// this is the first time domain has been seen.
func (c *trustCache) entryFor(domain string) *cacheEntry {
	key := dns.CanonicalName(domain)
	if entry, ok := c.find(key); ok {
		return entry
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[key]; ok {
		return entry
	}
	entry := new(cacheEntry)
	c.entries[key] = entry
	return entry
}

// ttlFloor returns the smallest header TTL among rrs, or math.MaxUint32 if
// rrs is empty (an entry that never expires on its own is harmless: the
// cache is scoped to one zone pass and discarded with the Chain).
func ttlFloor(rrs []dns.RR) uint32 {
	floor := uint32(math.MaxUint32)
	for _, rr := range rrs {
		if ttl := rr.Header().Ttl; ttl < floor {
			floor = ttl
		}
	}
	return floor
}
