package zonecheck

import (
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

func mustRR(t *testing.T, s string) dns.RR {
	t.Helper()
	rr, err := dns.NewRR(s)
	require.NoError(t, err)
	return rr
}

func TestBufferCapacityOneEvictsImmediately(t *testing.T) {
	b := NewBuffer(1, false, nil)
	evicted, ok := b.Push(mustRR(t, "a.example.com. 300 IN A 1.2.3.4"))
	require.False(t, ok)
	require.Nil(t, evicted)

	evicted, ok = b.Push(mustRR(t, "b.example.com. 300 IN A 1.2.3.5"))
	require.True(t, ok)
	require.NotNil(t, evicted)
	require.Equal(t, "a.example.com.", evicted.Owner)
}

func TestBufferAppendNeverEvicts(t *testing.T) {
	b := NewBuffer(1, false, nil)
	_, _ = b.Push(mustRR(t, "a.example.com. 300 IN A 1.2.3.4"))
	evicted, ok := b.Push(mustRR(t, "a.example.com. 300 IN AAAA ::1"))
	require.False(t, ok)
	require.Nil(t, evicted)
}

func TestBufferInterleavingWithLargerCapacity(t *testing.T) {
	b := NewBuffer(3, false, nil)
	_, ok1 := b.Push(mustRR(t, "a.example.com. 300 IN A 1.2.3.4"))
	_, ok2 := b.Push(mustRR(t, "b.example.com. 300 IN A 1.2.3.5"))
	_, ok3 := b.Push(mustRR(t, "a.example.com. 300 IN AAAA ::1"))
	require.False(t, ok1)
	require.False(t, ok2)
	require.False(t, ok3)
	require.Equal(t, 2, b.Len())
}

func TestBufferDrainFIFO(t *testing.T) {
	b := NewBuffer(5, false, nil)
	_, _ = b.Push(mustRR(t, "a.example.com. 300 IN A 1.2.3.4"))
	_, _ = b.Push(mustRR(t, "b.example.com. 300 IN A 1.2.3.5"))

	g1, ok := b.Drain()
	require.True(t, ok)
	require.Equal(t, "a.example.com.", g1.Owner)
	g2, ok := b.Drain()
	require.True(t, ok)
	require.Equal(t, "b.example.com.", g2.Owner)
	_, ok = b.Drain()
	require.False(t, ok)
}

func TestBufferWarnOnRevisit(t *testing.T) {
	var messages []string
	sink := NewSink(testLogger(&messages))
	b := NewBuffer(1, true, sink)
	_, _ = b.Push(mustRR(t, "a.example.com. 300 IN A 1.2.3.4"))
	_, _ = b.Push(mustRR(t, "b.example.com. 300 IN A 1.2.3.5")) // evicts a
	_, _ = b.Push(mustRR(t, "a.example.com. 300 IN AAAA ::1"))  // a revisited
	found := false
	for _, m := range messages {
		if m == "owner name seen more than once, but no longer in memory; verification may fail" {
			found = true
		}
	}
	require.True(t, found)
}

func TestGroupHasNSOnly(t *testing.T) {
	g := NewGroup("delegated.example.com.")
	g.Add(mustRR(t, "delegated.example.com. 300 IN NS ns1.example.com."), nil)
	g.Add(mustRR(t, "delegated.example.com. 300 IN DS 1 8 2 ABCDEF"), nil)
	require.True(t, g.HasNSOnly())

	g.Add(mustRR(t, "delegated.example.com. 300 IN A 1.2.3.4"), nil)
	require.False(t, g.HasNSOnly())
}
