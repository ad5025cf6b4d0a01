package zonecheck

import (
	"fmt"

	"github.com/miekg/dns"
)

// AxfrSource reads a zone via a full zone transfer against the Resolver
// Pool, grounded on the dns.Transfer usage pattern seen across the
// retrieval pack's rfc2136/dnsupdate clients (TsigSecret map, In()).
type AxfrSource struct {
	buffer *Buffer
	loop   *drainLoop

	pool   *ResolverPool
	zone   string
	env    <-chan *dns.Envelope
	soa    *dns.SOA
	apex   string
	ended  bool
}

// NewAxfrSource builds an AXFR variant backed by buf for group reassembly.
func NewAxfrSource(buf *Buffer) *AxfrSource {
	return &AxfrSource{buffer: buf, loop: newDrainLoop(buf)}
}

func (s *AxfrSource) Start(locator string, pool *ResolverPool) error {
	if err := validHostname(locator); err != nil {
		return newError(AxfrError, locator, err)
	}
	s.pool = pool
	s.zone = dns.Fqdn(locator)

	m := new(dns.Msg)
	m.SetAxfr(s.zone)

	tr := &dns.Transfer{DialTimeout: dialTimeout, ReadTimeout: dialTimeout, WriteTimeout: dialTimeout}
	if tsig := pool.TSIG(); tsig != nil {
		tr.TsigSecret = map[string]string{dns.Fqdn(tsig.name): tsig.secret}
		m.SetTsig(dns.Fqdn(tsig.name), tsig.algorithm, 300, 0)
	}

	n := pool.Count()
	if n == 0 {
		return newError(ResolverError, locator, fmt.Errorf("no name servers configured for AXFR"))
	}

	var lastErr error
	for i := 0; i < n; i++ {
		addr, active := s.pool.CurrentAddr()
		env, err := tr.In(m, addr)
		if err == nil {
			s.env = env
			return nil
		}
		lastErr = err
		s.pool.ErrorFrom(active)
	}
	return newError(AxfrError, locator, fmt.Errorf("all name servers rejected AXFR: %w", lastErr))
}

func (s *AxfrSource) SOA() *dns.SOA { return s.soa }
func (s *AxfrSource) Apex() string  { return s.apex }

func (s *AxfrSource) NextGroup() (*Group, error) {
	if s.loop.draining {
		g, ok := s.loop.finish()
		if !ok {
			return nil, LoadingDone
		}
		return g, nil
	}

	for {
		if s.ended {
			g, ok := s.loop.finish()
			if !ok {
				return nil, LoadingDone
			}
			return g, nil
		}

		envelope, ok := <-s.env
		if !ok {
			return nil, newError(AxfrError, s.zone, fmt.Errorf("transfer not fully completed"))
		}
		if envelope.Error != nil {
			return nil, newError(AxfrError, s.zone, envelope.Error)
		}

		for _, rr := range envelope.RR {
			if soa, isSOA := rr.(*dns.SOA); isSOA {
				if s.soa == nil {
					s.soa = soa
					s.apex = dns.CanonicalName(soa.Header().Name)
				} else {
					// Second SOA bookends a completed AXFR transfer.
					s.ended = true
				}
			}
			if g, evicted := s.loop.feed(rr); evicted {
				return g, nil
			}
		}
	}
}

var _ Source = (*AxfrSource)(nil)
