package zonecheck

import (
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
)

// ResolverPool holds an ordered list of name-server addresses and fails
// over to the next one on a query error, the way the teacher's FailRotate
// resolver group does for live DNS proxying (failrotate.go). Unlike
// FailRotate it also owns the TSIG key used to sign AXFR requests and
// exposes the pool size, which bounds the fail-over-N-times policy that
// Resolve and AxfrSource.Start apply (spec.md §4.7).
type ResolverPool struct {
	mu        sync.RWMutex
	resolvers []Resolver
	addrs     []string // addr:port form, parallel to resolvers; used for AXFR dialing
	active    int
	tsig      *tsigConfig
}

// NewResolverPool builds an empty pool; call SetServers to populate it.
func NewResolverPool() *ResolverPool {
	return &ResolverPool{}
}

// SetServers replaces the active server list. ips is a list of bare IP
// addresses (port 53 is assumed). Returns a ResolverError if none parse.
// A partial TSIG triple (some but not all of name/algorithm/keydata given)
// logs CRITICAL and disables TSIG rather than failing the call, matching
// spec.md §4.6.
func (p *ResolverPool) SetServers(sink *Sink, ips []string, tsigName, tsigAlg, tsigKey string) error {
	var resolvers []Resolver
	var addrs []string
	for _, ip := range ips {
		host := ip
		if net.ParseIP(strings.Trim(ip, "[]")) == nil {
			continue
		}
		if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
			host = "[" + host + "]"
		}
		addrs = append(addrs, host+":53")
		resolvers = append(resolvers, newSingleResolver(host+":53", nil, dialTimeout))
	}
	if len(resolvers) == 0 {
		return newError(ResolverError, "", fmt.Errorf("no valid resolver address configured"))
	}

	var tsig *tsigConfig
	partsGiven := countNonEmpty(tsigName, tsigAlg, tsigKey)
	switch partsGiven {
	case 0:
		tsig = nil
	case 3:
		tsig = &tsigConfig{name: tsigName, algorithm: dns.Fqdn(tsigAlg), secret: tsigKey}
	default:
		if sink != nil {
			sink.Criticalf("incomplete TSIG key configuration, disabling TSIG")
		}
		tsig = nil
	}
	if tsig != nil {
		for i, addr := range addrs {
			resolvers[i] = newSingleResolver(addr, tsig, dialTimeout)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.resolvers = resolvers
	p.addrs = addrs
	p.active = 0
	p.tsig = tsig
	return nil
}

// CurrentAddr returns the network address ("host:port") of the currently
// active server and its index, for callers (AxfrSource) that need to dial
// directly rather than through the Resolver interface.
func (p *ResolverPool) CurrentAddr() (string, int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.addrs[p.active], p.active
}

// ErrorFrom advances the pool past index i after an external caller
// (AxfrSource) observed a failure talking to the server at that index.
func (p *ResolverPool) ErrorFrom(i int) { p.errorFrom(i) }

// Resolve issues q against the currently-active server, failing over to
// the next on error for up to Count() attempts.
func (p *ResolverPool) Resolve(q *dns.Msg) (*dns.Msg, error) {
	var gErr error
	n := p.Count()
	for i := 0; i < n; i++ {
		resolver, active := p.current()
		a, err := resolver.Resolve(q)
		if err == nil {
			return a, nil
		}
		gErr = err
		p.errorFrom(active)
	}
	return nil, newError(ResolverError, "", gErr)
}

// TSIG returns the configured TSIG triple, or nil if TSIG is disabled.
func (p *ResolverPool) TSIG() *tsigConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tsig
}

// Count returns the number of configured name servers.
func (p *ResolverPool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.resolvers)
}

func (p *ResolverPool) String() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var s []string
	for _, r := range p.resolvers {
		s = append(s, r.String())
	}
	return fmt.Sprintf("ResolverPool(%s)", strings.Join(s, ";"))
}

func (p *ResolverPool) current() (Resolver, int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.resolvers[p.active], p.active
}

// Fail over to the next server after an error from i, the active index at
// query time. Ignored if another caller already advanced past i.
func (p *ResolverPool) errorFrom(i int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i != p.active || len(p.resolvers) == 0 {
		return
	}
	p.active = (p.active + 1) % len(p.resolvers)
}

func countNonEmpty(ss ...string) int {
	n := 0
	for _, s := range ss {
		if s != "" {
			n++
		}
	}
	return n
}

// dialTimeout bounds how long AXFR and single queries wait for an
// authoritative server to respond before the pool advances.
const dialTimeout = 10 * time.Second
