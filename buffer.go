package zonecheck

import (
	"container/list"

	"github.com/miekg/dns"
)

// Buffer is the Owner-Group Buffer: a bounded FIFO that reassembles
// streamed RRs sharing one owner into a Group, evicting the oldest group
// when a new owner arrives at capacity. Grounded on original
// ZoneProvider.match_rrs's __buff/__buff_ptr pair (ZoneChecker.py).
type Buffer struct {
	capacity int
	warn     bool
	sink     *Sink

	order *list.List               // FIFO of owner keys, oldest first
	elems map[string]*list.Element // owner -> its node in order
	open  map[string]*Group        // owner -> in-progress group
	seen  map[string]bool          // every owner key ever created, for warn_on_revisit
}

// NewBuffer returns an empty buffer. capacity must be >= 1 (spec.md §4.3);
// callers are expected to validate this at config time (--bs).
func NewBuffer(capacity int, warnOnRevisit bool, sink *Sink) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		capacity: capacity,
		warn:     warnOnRevisit,
		sink:     sink,
		order:    list.New(),
		elems:    make(map[string]*list.Element),
		open:     make(map[string]*Group),
		seen:     make(map[string]bool),
	}
}

// Push routes rr into the group keyed by its canonical owner name. It
// returns the evicted group when a brand new owner arrives while the
// buffer is at capacity; otherwise it returns (nil, false). Appending to an
// existing group never evicts.
func (b *Buffer) Push(rr dns.RR) (*Group, bool) {
	owner := dns.CanonicalName(rr.Header().Name)

	if g, ok := b.open[owner]; ok {
		g.Add(rr, b.sink)
		return nil, false
	}

	if b.warn && b.seen[owner] {
		if b.sink != nil {
			b.sink.Warningf("owner name seen more than once, but no longer in memory; verification may fail")
		}
	}
	b.seen[owner] = true

	var evicted *Group
	var didEvict bool
	if len(b.open) >= b.capacity {
		evicted, didEvict = b.evictOldest()
	}

	g := NewGroup(owner)
	g.Add(rr, b.sink)
	b.open[owner] = g
	b.elems[owner] = b.order.PushBack(owner)

	return evicted, didEvict
}

// Drain pops the oldest still-open group, or returns (nil, false) when the
// buffer is empty. Used to flush remaining groups at end-of-zone.
func (b *Buffer) Drain() (*Group, bool) {
	return b.evictOldest()
}

// Len reports the number of groups currently buffered.
func (b *Buffer) Len() int { return b.order.Len() }

func (b *Buffer) evictOldest() (*Group, bool) {
	front := b.order.Front()
	if front == nil {
		return nil, false
	}
	owner := front.Value.(string)
	b.order.Remove(front)
	delete(b.elems, owner)
	g := b.open[owner]
	delete(b.open, owner)
	return g, true
}
