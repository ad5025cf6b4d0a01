package zonecheck

import "github.com/miekg/dns"

// NSECKind classifies which denial-of-existence mechanism (if any) secures
// a group's owner, derived from the single NSEC-family record it may hold.
type NSECKind int

const (
	NotSecured NSECKind = iota
	NSEC
	NSEC3
	OtherNSEC
)

func (k NSECKind) String() string {
	switch k {
	case NSEC:
		return "NSEC"
	case NSEC3:
		return "NSEC3"
	case OtherNSEC:
		return "Other"
	default:
		return "NotSecured"
	}
}

// glueExcludedTypes are ignored when deciding HasNSOnly (spec.md §3): a
// group containing only these, plus NS, is a pure delegation point.
var glueExcludedTypes = map[uint16]bool{
	dns.TypeDS:    true,
	dns.TypeNS:    true,
	dns.TypeNSEC:  true,
	dns.TypeNSEC3: true,
}

// Group is the Owner-Group: every RR sharing one owner name, reassembled
// by the Buffer, grounded on original ZoneChecker.py's RRCollection.
type Group struct {
	Owner     string
	regular   map[uint16][]dns.RR
	rrsigs    map[uint16][]*dns.RRSIG
	nsec      dns.RR
	hasNSOnly bool
	nsecSeen  bool
}

// NewGroup returns an empty group owned by the given canonical name.
func NewGroup(owner string) *Group {
	return &Group{
		Owner:     owner,
		regular:   make(map[uint16][]dns.RR),
		rrsigs:    make(map[uint16][]*dns.RRSIG),
		hasNSOnly: true,
	}
}

// Add routes one RR into the group. RRSIGs are filed by TypeCovered;
// NSEC/NSEC3 records are filed into the single nsec slot (duplicates emit a
// WARNING through sink rather than replacing the first one seen), and the
// first one is also filed by its type under regular; everything else is
// filed by its own type under regular. Filing under regular latches
// HasNSOnly false the first time a non-glue-excluded type arrives.
func (g *Group) Add(rr dns.RR, sink *Sink) {
	switch t := rr.(type) {
	case *dns.RRSIG:
		g.rrsigs[t.TypeCovered] = append(g.rrsigs[t.TypeCovered], t)
		return
	case *dns.NSEC, *dns.NSEC3:
		if g.nsecSeen {
			if sink != nil {
				sink.Warningf("duplicate NSEC/NSEC3 record at owner %s ignored", g.Owner)
			}
			return
		}
		g.nsec = rr
		g.nsecSeen = true
	}
	rtype := rr.Header().Rrtype
	g.regular[rtype] = append(g.regular[rtype], rr)
	if !glueExcludedTypes[rtype] {
		g.hasNSOnly = false
	}
}

// HasNSOnly reports whether every regular type in the group is one of
// {DS, NS, NSEC, NSEC3} (spec.md §3). True for an empty group.
func (g *Group) HasNSOnly() bool { return g.hasNSOnly }

// NSECKind derives the group's denial-of-existence mechanism from its
// single NSEC-family slot.
func (g *Group) NSECKind() NSECKind {
	switch g.nsec.(type) {
	case *dns.NSEC:
		return NSEC
	case *dns.NSEC3:
		return NSEC3
	case nil:
		return NotSecured
	default:
		return OtherNSEC
	}
}

// NSEC returns the group's single NSEC/NSEC3 record, or nil.
func (g *Group) NSEC() dns.RR { return g.nsec }

// Types returns the regular RR types present in the group.
func (g *Group) Types() []uint16 {
	out := make([]uint16, 0, len(g.regular))
	for t := range g.regular {
		out = append(out, t)
	}
	return out
}

// RRs returns the ordered regular RRs of the given type.
func (g *Group) RRs(rtype uint16) []dns.RR { return g.regular[rtype] }

// RRSIGs returns the ordered RRSIGs covering the given type.
func (g *Group) RRSIGs(typeCovered uint16) []*dns.RRSIG { return g.rrsigs[typeCovered] }

// CoveredTypes returns the RR types that have at least one RRSIG.
func (g *Group) CoveredTypes() []uint16 {
	out := make([]uint16, 0, len(g.rrsigs))
	for t := range g.rrsigs {
		out = append(out, t)
	}
	return out
}
