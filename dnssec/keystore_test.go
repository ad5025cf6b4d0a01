package dnssec

import (
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

func TestTrustCacheRememberAndLookupDNSKEY(t *testing.T) {
	now := time.Now()
	cache := newTrustCache(func() time.Time { return now })

	zsk := &dns.DNSKEY{Hdr: dns.RR_Header{Name: "example.com.", Ttl: 3600}, Flags: 256}
	ksk := &dns.DNSKEY{Hdr: dns.RR_Header{Name: "example.com.", Ttl: 7200}, Flags: 257}
	cache.rememberDNSKEY("example.com.", []*dns.DNSKEY{zsk, ksk})

	gotZSK, gotKSK := cache.lookupDNSKEY("EXAMPLE.COM.")
	require.Equal(t, []*dns.DNSKEY{zsk}, gotZSK)
	require.Equal(t, []*dns.DNSKEY{ksk}, gotKSK)
}

func TestTrustCacheDNSKEYExpiresAtLowestTTL(t *testing.T) {
	now := time.Now()
	clock := now
	cache := newTrustCache(func() time.Time { return clock })

	short := &dns.DNSKEY{Hdr: dns.RR_Header{Name: "example.com.", Ttl: 1}, Flags: 256}
	long := &dns.DNSKEY{Hdr: dns.RR_Header{Name: "example.com.", Ttl: 3600}, Flags: 257}
	cache.rememberDNSKEY("example.com.", []*dns.DNSKEY{short, long})

	clock = now.Add(2 * time.Second)
	zsk, ksk := cache.lookupDNSKEY("example.com.")
	require.Nil(t, zsk)
	require.Nil(t, ksk)
}

func TestTrustCacheRememberAndLookupDS(t *testing.T) {
	now := time.Now()
	cache := newTrustCache(func() time.Time { return now })

	ds := &dns.DS{Hdr: dns.RR_Header{Name: "example.com.", Ttl: 3600}, KeyTag: 1234}
	cache.rememberDS("example.com.", ds)

	require.Equal(t, []*dns.DS{ds}, cache.lookupDS("example.com."))
	require.Nil(t, cache.lookupDS("other.example."))
}
