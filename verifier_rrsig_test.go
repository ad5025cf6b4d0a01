package zonecheck

import (
	"crypto"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

// selfSignedA builds a single A RRset at owner signed by a freshly
// generated ZSK, mirroring spec.md §8 scenario 1 ("Minimal good zone,
// file source"): one apex RR-set signed by the anchor DNSKEY.
func selfSignedA(t *testing.T, owner string) (*dns.DNSKEY, dns.RR, *dns.RRSIG) {
	t.Helper()
	zsk := &dns.DNSKEY{
		Hdr:       dns.RR_Header{Name: owner, Rrtype: dns.TypeDNSKEY, Class: dns.ClassINET, Ttl: 3600},
		Flags:     256,
		Protocol:  3,
		Algorithm: dns.ECDSAP256SHA256,
	}
	priv, err := zsk.Generate(256)
	require.NoError(t, err)

	a := mustRR(t, owner+" 3600 IN A 192.0.2.1")

	sig := &dns.RRSIG{
		Hdr:         dns.RR_Header{Name: owner, Rrtype: dns.TypeRRSIG, Class: dns.ClassINET, Ttl: 3600},
		TypeCovered: dns.TypeA,
		Algorithm:   dns.ECDSAP256SHA256,
		Labels:      uint8(dns.CountLabel(owner)),
		OrigTtl:     3600,
		Expiration:  uint32(time.Now().Add(24 * time.Hour).Unix()),
		Inception:   uint32(time.Now().Add(-time.Hour).Unix()),
		KeyTag:      zsk.KeyTag(),
		SignerName:  owner,
	}
	require.NoError(t, sig.Sign(priv.(crypto.Signer), []dns.RR{a}))
	return zsk, a, sig
}

func newTestVerifier(messages *[]string, zsk *dns.DNSKEY, apex string) *Verifier {
	sink := NewSink(testLogger(messages))
	clock, _ := NewTimeOracle("run", func() time.Time { return time.Now() })
	state := NewZoneState(apex)
	state.HasTrustedKeys = true
	state.TrustedKeys = []*dns.DNSKEY{zsk}
	return NewVerifier(sink, clock, state, nil)
}

func TestVerifyRRSIGFullAllValid(t *testing.T) {
	owner := "example.com."
	zsk, a, sig := selfSignedA(t, owner)

	g := NewGroup(owner)
	g.Add(a, nil)
	g.Add(sig, nil)

	var messages []string
	v := newTestVerifier(&messages, zsk, owner)
	v.verifyRRSIGFull(g, false)

	found := false
	for _, m := range messages {
		if m == "Signatures check - example.com. A - 1 RRs, 1 RRSIGs, 1 valid" {
			found = true
		}
	}
	require.True(t, found, "expected an all-valid INFO message, got %v", messages)
}

func TestVerifyRRSIGFullTamperedSignatureIsInvalid(t *testing.T) {
	owner := "example.com."
	zsk, a, sig := selfSignedA(t, owner)
	// Corrupt the signature by appending two base64 characters, so it no
	// longer verifies against the RRset.
	sig.Signature = sig.Signature + "AA"

	g := NewGroup(owner)
	g.Add(a, nil)
	g.Add(sig, nil)

	var messages []string
	v := newTestVerifier(&messages, zsk, owner)
	v.verifyRRSIGFull(g, false)

	found := false
	for _, m := range messages {
		if m == "Signatures check - example.com. A - 1 RRs, 1 RRSIGs, 0 valid" {
			found = true
		}
	}
	require.True(t, found, "expected a 0-valid ERROR message, got %v", messages)
}

func TestVerifyRRSIGFullNoSignatureIsInfo(t *testing.T) {
	owner := "example.com."
	zsk, a, _ := selfSignedA(t, owner)

	g := NewGroup(owner)
	g.Add(a, nil)

	var messages []string
	v := newTestVerifier(&messages, zsk, owner)
	v.verifyRRSIGFull(g, false)

	found := false
	for _, m := range messages {
		if m == "example.com. A: not secured (0 RRSIGs)" {
			found = true
		}
	}
	require.True(t, found, "expected a not-secured INFO message, got %v", messages)
}
