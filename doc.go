/*
Package zonecheck audits the DNSSEC configuration of a zone read from a
master file or from a full zone transfer (AXFR). It reassembles resource
records into owner-groups, builds a chain of trust from configured trust
anchors up to the zone apex, and runs a set of policy checks against each
group: RRSIG signature and time validity, DNSKEY algorithm coverage,
NSEC/NSEC3 denial-of-existence, TTL policy, and DS-at-parent consistency.
Findings are emitted through a Report Sink at increasing severity, from
DEBUG progress messages to CRITICAL chain-of-trust failures.

Pipeline

A Pipeline Driver ties the other components together for one zone: it
builds a Resolver Pool from the configured name servers, starts a Zone
Source (file or AXFR), checks the zone's serial number against the
Serial-Number Gate when requested, resolves trust anchors through the
dnssec subpackage's Chain-of-Trust Resolver, and then pumps owner-groups
out of the source into a Verifier until the source signals LoadingDone.

	driver := zonecheck.NewPipelineDriver(sink, nil)
	if err := zonecheck.AuditZones(driver, cfg, sink); err != nil {
		log.Fatal(err)
	}

Buffering

RRs for the same owner are not guaranteed to arrive contiguously,
especially over AXFR. The Owner-Group Buffer reassembles them into groups
behind a small bounded FIFO, evicting the oldest group only when a new
owner is seen at capacity.

Chain of trust

The dnssec subpackage resolves a validated DNSKEY set for a domain by
climbing toward the root through DS records, fetching DNSKEY/DS pairs
through the Resolver Pool's fail-over as needed.
*/
package zonecheck
