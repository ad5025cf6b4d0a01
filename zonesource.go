package zonecheck

import "github.com/miekg/dns"

// Source is the capability set both Zone Source variants implement (File
// and AXFR), per spec.md §9's "two variants behind one capability set"
// design note: a small interface rather than a deep type hierarchy.
type Source interface {
	// Start begins reading the zone from locator. pool is ignored by the
	// File variant and required for AXFR.
	Start(locator string, pool *ResolverPool) error
	// NextGroup pulls decoded RRs into the Buffer and returns the first
	// evicted group. Returns LoadingDone when the stream and the buffer are
	// both exhausted.
	NextGroup() (*Group, error)
	// SOA returns the first SOA observed, or nil before one arrives.
	SOA() *dns.SOA
	// Apex returns the zone apex name (the SOA owner), or "" before SOA.
	Apex() string
}

// drainLoop implements the "pull from codec, push to buffer, return first
// eviction; on EOF, drain remainder then fail LoadingDone" control flow
// shared by both source variants (spec.md §4.4).
type drainLoop struct {
	buf      *Buffer
	draining bool
}

func newDrainLoop(buf *Buffer) *drainLoop {
	return &drainLoop{buf: buf}
}

// feed pushes one decoded rr and returns an eviction if one occurred.
func (d *drainLoop) feed(rr dns.RR) (*Group, bool) {
	return d.buf.Push(rr)
}

// finish switches the loop into draining mode and returns the buffer's
// remaining groups one at a time; once empty it reports false so the
// caller can fail LoadingDone.
func (d *drainLoop) finish() (*Group, bool) {
	d.draining = true
	g, ok := d.buf.Drain()
	return g, ok
}
