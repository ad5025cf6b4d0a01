package zonecheck

import (
	"errors"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

// countingResolver counts invocations and optionally fails, mirroring the
// teacher's inline test resolver in failrotate_test.go.
type countingResolver struct {
	count int
	fail  bool
}

func (r *countingResolver) Resolve(q *dns.Msg) (*dns.Msg, error) {
	r.count++
	if r.fail {
		return nil, errors.New("failed")
	}
	return q, nil
}

func (r *countingResolver) String() string { return "countingResolver()" }

func TestResolverPoolFailover(t *testing.T) {
	r1 := &countingResolver{}
	r2 := &countingResolver{}
	pool := &ResolverPool{resolvers: []Resolver{r1, r2}}

	q := new(dns.Msg)
	q.SetQuestion("example.com.", dns.TypeDNSKEY)

	_, err := pool.Resolve(q)
	require.NoError(t, err)
	_, err = pool.Resolve(q)
	require.NoError(t, err)
	require.Equal(t, 2, r1.count)
	require.Equal(t, 0, r2.count)

	r1.fail = true
	_, err = pool.Resolve(q)
	require.NoError(t, err)
	require.Equal(t, 3, r1.count)
	require.Equal(t, 1, r2.count)

	r1.fail, r2.fail = true, true
	_, err = pool.Resolve(q)
	require.Error(t, err)
}

func TestResolverPoolSetServersRejectsInvalid(t *testing.T) {
	pool := NewResolverPool()
	err := pool.SetServers(nil, []string{"not-an-ip"}, "", "", "")
	require.Error(t, err)
}

func TestResolverPoolSetServersPartialTSIGDisables(t *testing.T) {
	pool := NewResolverPool()
	err := pool.SetServers(nil, []string{"127.0.0.1"}, "key.", "hmac-sha256", "")
	require.NoError(t, err)
	require.Nil(t, pool.TSIG())
}

func TestResolverPoolSetServersFullTSIGEnables(t *testing.T) {
	pool := NewResolverPool()
	err := pool.SetServers(nil, []string{"127.0.0.1"}, "key.", "hmac-sha256", "c2VjcmV0")
	require.NoError(t, err)
	require.NotNil(t, pool.TSIG())
}
