package zonecheck

import (
	"fmt"

	"github.com/miekg/dns"
)

// Resolver sends a DNS query and returns the response. Implementations
// include a single name-server resolver and the fail-over ResolverPool.
type Resolver interface {
	Resolve(q *dns.Msg) (*dns.Msg, error)
	fmt.Stringer
}
