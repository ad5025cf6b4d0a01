package dnssec

import (
	"crypto"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

func TestParentZone(t *testing.T) {
	tests := []struct{ input, expected string }{
		{"example.com.", "com."},
		{"com.", "."},
		{".", "."},
		{"sub.example.com.", "example.com."},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			require.Equal(t, tc.expected, parentZone(tc.input))
		})
	}
}

func TestVerifyDNSKEYWithDS(t *testing.T) {
	// The real IANA root KSK (public keying material, safe to embed).
	rootKSKRR, err := dns.NewRR(". 172800 IN DNSKEY 257 3 8 AwEAAaz/tAm8yTn4Mfeh5eyI96WSVexTBAvkMgJzkKTOiW1vkIbzxeF3 +/4RgWOq7HrxRixHlFlExOLAJr5emLvN7SWXgnLh4+B5xQlNVz8Og8kv ArMtNROxVQuCaSnIDdD5LKyWbRd2n9WGe2R8PzgCmr3EgVLrjyBxWezF 0jLHwVN8efS3rCj/EWgvIWgb9tarpVUDK/b58Da+sqqls3eNbuv7pr+e oZG+SrDK6nWeL3c6H5Apxz7LjVc1uTIdsIXxuOLYA4/ilBmSVIzuDWfd RUfhHdY6+cn8HFRm+2hM8AnXGXws9555KrUB5qihylGa8subX2Nn6UwN R1AkUTV74bU=")
	require.NoError(t, err)
	rootKSK := rootKSKRR.(*dns.DNSKEY)

	ds := rootKSK.ToDS(dns.SHA256)
	require.NotNil(t, ds)
	require.NoError(t, verifyDNSKEYWithDS([]*dns.DNSKEY{rootKSK}, []*dns.DS{ds}))

	badDS := *ds
	badDS.Digest = "0000000000000000000000000000000000000000000000000000000000000000"
	require.ErrorIs(t, verifyDNSKEYWithDS([]*dns.DNSKEY{rootKSK}, []*dns.DS{&badDS}), ErrDSMismatch)
}

func TestExpectedAlgorithmsDeduplicates(t *testing.T) {
	k1 := &dns.DNSKEY{Algorithm: 8, Flags: 256}
	k2 := &dns.DNSKEY{Algorithm: 8, Flags: 256}
	k3 := &dns.DNSKEY{Algorithm: 8, Flags: 257}
	got := ExpectedAlgorithms([]*dns.DNSKEY{k1, k2, k3})
	require.ElementsMatch(t, []ExpectedAlgorithm{
		{Algorithm: 8, Flags: 256},
		{Algorithm: 8, Flags: 257},
	}, got)
}

// selfSignedApex builds a single ZSK/KSK pair that self-signs its own
// DNSKEY RRset, the minimal shape spec.md §8's "Chain-of-Trust" testable
// property describes: anchors = {DNSKEY(apex)}, zone self-signs
// consistently, validator returns OK without any DS lookups.
func selfSignedApex(t *testing.T, apex string) (*dns.DNSKEY, *dns.RRSIG) {
	t.Helper()
	ksk := &dns.DNSKEY{
		Hdr:       dns.RR_Header{Name: apex, Rrtype: dns.TypeDNSKEY, Class: dns.ClassINET, Ttl: 3600},
		Flags:     257,
		Protocol:  3,
		Algorithm: dns.ECDSAP256SHA256,
	}
	priv, err := ksk.Generate(256)
	require.NoError(t, err)

	sig := &dns.RRSIG{
		Hdr:         dns.RR_Header{Name: apex, Rrtype: dns.TypeRRSIG, Class: dns.ClassINET, Ttl: 3600},
		TypeCovered: dns.TypeDNSKEY,
		Algorithm:   dns.ECDSAP256SHA256,
		Labels:      uint8(dns.CountLabel(apex)),
		OrigTtl:     3600,
		Expiration:  uint32(time.Now().Add(24 * time.Hour).Unix()),
		Inception:   uint32(time.Now().Add(-time.Hour).Unix()),
		KeyTag:      ksk.KeyTag(),
		SignerName:  apex,
	}
	require.NoError(t, sig.Sign(priv.(crypto.Signer), []dns.RR{ksk}))
	return ksk, sig
}

type stubResolver struct {
	answer *dns.Msg
}

func (s *stubResolver) Resolve(q *dns.Msg) (*dns.Msg, error) { return s.answer, nil }

func TestChainResolveSelfSignedAnchorNoDSLookup(t *testing.T) {
	apex := "example.com."
	ksk, sig := selfSignedApex(t, apex)

	answer := new(dns.Msg)
	answer.Rcode = dns.RcodeSuccess
	answer.Answer = []dns.RR{ksk, sig}

	chain := NewChain(&stubResolver{answer: answer}, func() time.Time { return time.Now() })
	status, keys := chain.Resolve(apex, AnchorSet{Keys: []*dns.DNSKEY{ksk}})

	require.Equal(t, OK, status)
	require.NotEmpty(t, keys.Keys)
}
