package zonecheck

import (
	"fmt"
	"time"

	"github.com/miekg/dns"
)

// singleResolver queries one name-server over UDP, falling back to TCP on
// truncation, the way a plain stub resolver would. DNSSEC OK is always set
// and recursion is always disabled: the pool only ever talks to
// authoritative servers for the zone under audit (spec.md §4.6).
type singleResolver struct {
	addr    string
	client  *dns.Client
	tsig    *tsigConfig
	timeout time.Duration
}

// tsigConfig carries a complete TSIG key triple; a nil *tsigConfig means
// TSIG is disabled for this resolver.
type tsigConfig struct {
	name      string
	algorithm string
	secret    string
}

func newSingleResolver(addr string, tsig *tsigConfig, timeout time.Duration) *singleResolver {
	if timeout == 0 {
		timeout = dialTimeout
	}
	return &singleResolver{
		addr:    addr,
		client:  &dns.Client{Net: "udp", Timeout: timeout},
		tsig:    tsig,
		timeout: timeout,
	}
}

func (r *singleResolver) prepare(q *dns.Msg) *dns.Msg {
	q = q.Copy()
	q.RecursionDesired = false
	opt := q.IsEdns0()
	if opt == nil {
		q.SetEdns0(4096, true)
	} else {
		opt.SetDo()
	}
	if r.tsig != nil {
		q.SetTsig(dns.Fqdn(r.tsig.name), r.tsig.algorithm, 300, time.Now().Unix())
	}
	return q
}

func (r *singleResolver) Resolve(q *dns.Msg) (*dns.Msg, error) {
	q = r.prepare(q)
	client := *r.client
	client.Net = "udp"
	if r.tsig != nil {
		client.TsigSecret = map[string]string{dns.Fqdn(r.tsig.name): r.tsig.secret}
	}
	a, _, err := client.Exchange(q, r.addr)
	if err != nil {
		return nil, fmt.Errorf("query to %s failed: %w", r.addr, err)
	}
	if a != nil && a.Truncated {
		client.Net = "tcp"
		a, _, err = client.Exchange(q, r.addr)
		if err != nil {
			return nil, fmt.Errorf("tcp retry to %s failed: %w", r.addr, err)
		}
	}
	return a, nil
}

func (r *singleResolver) String() string {
	return fmt.Sprintf("SingleResolver(%s)", r.addr)
}
